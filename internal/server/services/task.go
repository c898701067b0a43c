package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/orbit/internal/common"
	"github.com/dmitrijs2005/orbit/internal/logging"
	"github.com/dmitrijs2005/orbit/internal/server/models"
	"github.com/dmitrijs2005/orbit/internal/server/realtime"
	"github.com/dmitrijs2005/orbit/internal/server/repositories/repomanager"
)

type taskInput struct {
	Title    string `validate:"required,max=200"`
	Status   string `validate:"oneof=todo in_progress completed cancelled"`
	Priority string `validate:"oneof=low medium high urgent"`
}

// TaskService manages tasks. The owner may change everything, the assignee
// only the status.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	events      publisher
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, broker realtime.Broker, logger logging.Logger) *TaskService {
	return &TaskService{db: db, repomanager: m, events: publisher{broker: broker, logger: logger}}
}

// List returns tasks created by or assigned to the user, newest first.
func (s *TaskService) List(ctx context.Context, userID string) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).ListVisible(ctx, userID)
}

func (s *TaskService) Create(ctx context.Context, userID string, t *models.Task) (*models.Task, error) {
	in := *t
	in.UserID = userID
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = models.TaskTodo
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if err := check(taskInput{Title: in.Title, Status: in.Status, Priority: in.Priority}); err != nil {
		return nil, err
	}

	out, err := s.repomanager.Tasks(s.db).Create(ctx, &in)
	if err != nil {
		return nil, err
	}
	s.events.publish(ctx, common.TableTasks, models.ChangeInsert, out.ID, []string{out.UserID, out.AssigneeID}, "")
	return out, nil
}

func (s *TaskService) Update(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	in := taskInput{Title: "-", Status: models.TaskTodo, Priority: models.PriorityMedium}
	if patch.Title != nil {
		in.Title = *patch.Title
	}
	if patch.Status != nil {
		in.Status = *patch.Status
	}
	if patch.Priority != nil {
		in.Priority = *patch.Priority
	}
	if err := check(in); err != nil {
		return nil, err
	}

	repo := s.repomanager.Tasks(s.db)
	prev, err := repo.GetVisible(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	var out *models.Task
	switch {
	case patch.OnlyStatus() && patch.Status == nil:
		return prev, nil
	case patch.OnlyStatus():
		out, err = repo.SetStatus(ctx, userID, id, *patch.Status)
	case prev.UserID != userID:
		return nil, forbidden("Only the task owner can update this task")
	default:
		out, err = repo.Update(ctx, userID, id, patch)
	}
	if err != nil {
		return nil, err
	}

	s.events.publish(ctx, common.TableTasks, models.ChangeUpdate, out.ID, []string{out.UserID, out.AssigneeID, prev.AssigneeID}, "")
	return out, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	repo := s.repomanager.Tasks(s.db)

	err := repo.Delete(ctx, userID, id)
	if errors.Is(err, common.ErrorNotFound) {
		// the assignee sees the task but may not delete it
		if _, gerr := repo.GetVisible(ctx, userID, id); gerr == nil {
			return forbidden("Only the task owner can delete this task")
		}
		return err
	}
	if err != nil {
		return err
	}

	s.events.publish(ctx, common.TableTasks, models.ChangeDelete, id, []string{userID}, "")
	return nil
}
