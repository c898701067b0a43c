// Package tasks stores tasks. A task is visible to its owner and to its
// assignee; only the owner may edit or delete it, the assignee may change
// its status.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/orbit/internal/server/models"
)

type Repository interface {
	// ListVisible returns tasks created by or assigned to userID, newest first.
	ListVisible(ctx context.Context, userID string) ([]*models.Task, error)
	GetVisible(ctx context.Context, userID, id string) (*models.Task, error)
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	// Update applies patch to a task owned by userID.
	Update(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error)
	// SetStatus changes the status of a task owned by or assigned to userID.
	SetStatus(ctx context.Context, userID, id, status string) (*models.Task, error)
	// Delete removes a task owned by userID.
	Delete(ctx context.Context, userID, id string) error
}
