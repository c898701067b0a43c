// Package refreshtokens stores the refresh tokens handed out with every
// session. A token is consumed exactly once: rotation deletes it and issues
// a new one.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/orbit/internal/server/models"
)

type Repository interface {
	// Issue stores token for userID, valid until expiresAt.
	Issue(ctx context.Context, userID, token string, expiresAt time.Time) (*models.RefreshToken, error)

	// Consume deletes token and returns the deleted row, or
	// common.ErrorNotFound when no such token exists. Two concurrent
	// consumers of the same token cannot both succeed.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteByUser revokes every refresh token of userID and reports how
	// many were removed.
	DeleteByUser(ctx context.Context, userID string) (int64, error)

	// PurgeExpired drops the expired tokens of userID.
	PurgeExpired(ctx context.Context, userID string, now time.Time) error
}
