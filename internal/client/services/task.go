package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/orbit/internal/client/client"
	"github.com/dmitrijs2005/orbit/internal/client/models"
	"github.com/dmitrijs2005/orbit/internal/client/session"
	"github.com/dmitrijs2005/orbit/internal/common"
)

type TaskInput struct {
	Title       string              `validate:"required,max=200"`
	Description string              `validate:"max=2000"`
	Status      models.TaskStatus   `validate:"omitempty,oneof=todo in_progress completed cancelled"`
	Priority    models.TaskPriority `validate:"omitempty,oneof=low medium high urgent"`
	DueDate     *time.Time
	ProjectID   string `validate:"omitempty,uuid"`
	AssigneeID  string `validate:"omitempty,uuid"`
}

var taskMessages = messages{
	"Title.required":  "Please enter a task name",
	"Title.max":       "Task name is too long",
	"Description.max": "Description is too long",
	"Status.oneof":    "Unknown task status",
	"Priority.oneof":  "Unknown task priority",
	"ProjectID.uuid":  "Project id is not valid",
	"AssigneeID.uuid": "Assignee id is not valid",
}

type TaskService interface {
	List(ctx context.Context) ([]*models.Task, error)
	Create(ctx context.Context, in TaskInput) (*models.Task, error)
	Update(ctx context.Context, id string, in TaskInput) (*models.Task, error)
	SetStatus(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error)
	Delete(ctx context.Context, id string) error
}

type taskService struct {
	client   client.Client
	store    session.Store
	validate *inputValidator
}

func NewTaskService(c client.Client, store session.Store) TaskService {
	return &taskService{client: c, store: store, validate: newInputValidator()}
}

// List returns tasks created by or assigned to the caller, newest first.
func (s *taskService) List(ctx context.Context) ([]*models.Task, error) {
	items, err := s.client.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (s *taskService) Create(ctx context.Context, in TaskInput) (*models.Task, error) {
	in = trimTask(in)
	if err := s.validate.check(&in, taskMessages); err != nil {
		return nil, err
	}
	me, err := currentUser(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.TaskTodo
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	t, err := s.client.CreateTask(ctx, &models.Task{
		UserID:      me.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		ProjectID:   in.ProjectID,
		AssigneeID:  in.AssigneeID,
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// Update rewrites the editable fields of a task the caller owns. Empty
// status and priority keep the stored values.
func (s *taskService) Update(ctx context.Context, id string, in TaskInput) (*models.Task, error) {
	in = trimTask(in)
	if err := s.validate.check(&in, taskMessages); err != nil {
		return nil, err
	}
	me, err := currentUser(ctx, s.store)
	if err != nil {
		return nil, err
	}
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != me.ID {
		return nil, forbidden("Only the task owner can update this task")
	}

	u := models.TaskUpdate{
		Title:       &in.Title,
		Description: &in.Description,
		DueDate:     in.DueDate,
		ProjectID:   &in.ProjectID,
		AssigneeID:  &in.AssigneeID,
	}
	if in.Status != "" {
		u.Status = &in.Status
	}
	if in.Priority != "" {
		u.Priority = &in.Priority
	}
	updated, err := s.client.UpdateTask(ctx, id, u)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return updated, nil
}

// SetStatus is allowed to the owner and the assignee.
func (s *taskService) SetStatus(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error) {
	if _, err := models.ParseTaskStatus(string(status)); err != nil {
		return nil, &ValidationError{Fields: map[string]string{"Status": err.Error()}}
	}
	me, err := currentUser(ctx, s.store)
	if err != nil {
		return nil, err
	}
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != me.ID && t.AssigneeID != me.ID {
		return nil, forbidden("Only the task owner or assignee can change the status")
	}
	updated, err := s.client.UpdateTask(ctx, id, models.TaskUpdate{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	return updated, nil
}

func (s *taskService) Delete(ctx context.Context, id string) error {
	me, err := currentUser(ctx, s.store)
	if err != nil {
		return err
	}
	t, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if t.UserID != me.ID {
		return forbidden("Only the task owner can delete this task")
	}
	if err := s.client.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *taskService) find(ctx context.Context, id string) (*models.Task, error) {
	items, err := s.client.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	for _, t := range items {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("task %s: %w", id, common.ErrorNotFound)
}

func trimTask(in TaskInput) TaskInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.AssigneeID = strings.TrimSpace(in.AssigneeID)
	return in
}
