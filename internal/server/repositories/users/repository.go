// Package users stores accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/orbit/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills ID and timestamps. A taken e-mail yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// UpdateMetadata replaces the metadata document of the user.
	UpdateMetadata(ctx context.Context, id string, metadata map[string]any) (*models.User, error)
}
