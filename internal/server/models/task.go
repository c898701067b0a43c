package models

import "time"

const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskCancelled  = "cancelled"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
	ProjectID   string
	AssigneeID  string
	CreatedAt   time.Time
}

// TaskPatch holds the fields to change; nil leaves a field unchanged and an
// empty ProjectID or AssigneeID clears the reference.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	ProjectID   *string
	AssigneeID  *string
}

// OnlyStatus reports whether the patch changes nothing but the status.
func (p TaskPatch) OnlyStatus() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.DueDate == nil && p.ProjectID == nil && p.AssigneeID == nil
}
