// Package session owns the authenticated session of the client: sign-in,
// OAuth callbacks, persistence of the refresh token and change
// notifications.
package session

import (
	"context"

	"github.com/dmitrijs2005/orbit/internal/client/events"
	"github.com/dmitrijs2005/orbit/internal/client/models"
)

// Store is the session source consumed by the root controller.
type Store interface {
	// GetSession returns the current session or nil when signed out.
	GetSession(ctx context.Context) (*models.Session, error)
	// OnSessionChange registers fn for every session change (sign-in,
	// sign-out, token refresh, metadata update), delivered in order.
	OnSessionChange(fn func(*models.Session)) events.Subscription
	SignOut(ctx context.Context) error
	// UpdateUserMetadata merges patch into the user metadata. On failure the
	// current session is left untouched.
	UpdateUserMetadata(ctx context.Context, patch map[string]any) (*models.Session, error)
}

// KV is the part of the local metadata store used for persistence.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

const RefreshTokenKey = "session.refresh_token"
