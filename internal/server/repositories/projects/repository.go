// Package projects stores projects. Every statement is scoped to the
// owner, so a project of another user reads as missing.
package projects

import (
	"context"

	"github.com/dmitrijs2005/orbit/internal/server/models"
)

type Repository interface {
	// List returns the projects of userID, most recently updated first.
	// An empty status matches all.
	List(ctx context.Context, userID, status string) ([]*models.Project, error)
	Get(ctx context.Context, userID, id string) (*models.Project, error)
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	Update(ctx context.Context, userID, id string, patch models.ProjectPatch) (*models.Project, error)
	Delete(ctx context.Context, userID, id string) error
}
