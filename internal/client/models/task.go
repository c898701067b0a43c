package models

import (
	"fmt"
	"time"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch st := TaskStatus(s); st {
	case TaskTodo, TaskInProgress, TaskCompleted, TaskCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func ParseTaskPriority(s string) (TaskPriority, error) {
	switch p := TaskPriority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", fmt.Errorf("unknown task priority %q", s)
}

type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     *time.Time
	ProjectID   string
	AssigneeID  string
	CreatedAt   time.Time
}

// Pending reports whether the task still needs work.
func (t *Task) Pending() bool {
	return t.Status != TaskCompleted && t.Status != TaskCancelled
}

// TaskUpdate holds the fields to change; nil leaves a field unchanged and
// an empty ProjectID or AssigneeID clears the reference.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	DueDate     *time.Time
	ProjectID   *string
	AssigneeID  *string
}
