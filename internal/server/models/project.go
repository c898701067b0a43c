package models

import "time"

const (
	ProjectActive    = "active"
	ProjectCompleted = "completed"
	ProjectArchived  = "archived"
)

type Project struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Color       string
	Icon        string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectPatch holds the fields to change; nil leaves a field unchanged.
type ProjectPatch struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	Status      *string
}
