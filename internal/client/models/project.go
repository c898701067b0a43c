package models

import (
	"fmt"
	"time"
)

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch st := ProjectStatus(s); st {
	case ProjectActive, ProjectCompleted, ProjectArchived:
		return st, nil
	}
	return "", fmt.Errorf("unknown project status %q", s)
}

type Project struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Color       string
	Icon        string
	Status      ProjectStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectUpdate holds the fields to change; nil leaves a field unchanged.
type ProjectUpdate struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	Status      *ProjectStatus
}
