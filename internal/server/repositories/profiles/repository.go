// Package profiles stores the public part of user accounts, used to list
// the members of an organization.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/orbit/internal/server/models"
)

type Repository interface {
	// Upsert writes the mirrored account fields. The push token and
	// created_at of an existing row are kept.
	Upsert(ctx context.Context, p *models.Profile) error
	Get(ctx context.Context, id string) (*models.Profile, error)
	// ListByOrganization returns the profiles of organization, oldest first.
	ListByOrganization(ctx context.Context, organization string) ([]*models.Profile, error)
	SetPushToken(ctx context.Context, id, token string) error
}
