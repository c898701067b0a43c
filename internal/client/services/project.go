package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/orbit/internal/client/client"
	"github.com/dmitrijs2005/orbit/internal/client/models"
	"github.com/dmitrijs2005/orbit/internal/client/session"
)

// ProjectColors is the palette offered when creating a project.
var ProjectColors = []string{
	"#FF3B30", "#FF9500", "#FFCC00", "#34C759", "#00C7BE", "#30B0C7",
	"#32ADE6", "#007AFF", "#5856D6", "#AF52DE", "#FF2D55", "#A2845E",
}

type ProjectInput struct {
	Name        string `validate:"required,max=120"`
	Description string `validate:"max=2000"`
	Color       string `validate:"omitempty,hexcolor"`
	Icon        string
}

var projectMessages = messages{
	"Name.required":   "Please enter a project name",
	"Name.max":        "Project name is too long",
	"Color.hexcolor":  "Color must be a hex value like #007AFF",
	"Description.max": "Description is too long",
}

// Dashboard aggregates the home screen numbers.
type Dashboard struct {
	TotalProjects  int
	ActiveProjects int
	TotalTasks     int
	CompletedTasks int
	PendingTasks   int
	RecentProjects []*models.Project
	UpcomingTasks  []*models.Task
}

const (
	dashboardRecentProjects = 3
	dashboardUpcomingTasks  = 5
)

type ProjectService interface {
	List(ctx context.Context, status models.ProjectStatus) ([]*models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	Create(ctx context.Context, in ProjectInput) (*models.Project, error)
	Update(ctx context.Context, id string, in ProjectInput) (*models.Project, error)
	SetStatus(ctx context.Context, id string, status models.ProjectStatus) (*models.Project, error)
	Delete(ctx context.Context, id string) error
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type projectService struct {
	client   client.Client
	store    session.Store
	validate *inputValidator
}

func NewProjectService(c client.Client, store session.Store) ProjectService {
	return &projectService{client: c, store: store, validate: newInputValidator()}
}

// List returns the caller's projects, most recently updated first. An empty
// status means all statuses.
func (s *projectService) List(ctx context.Context, status models.ProjectStatus) ([]*models.Project, error) {
	items, err := s.client.ListProjects(ctx, string(status))
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].UpdatedAt.After(items[j].UpdatedAt) })
	return items, nil
}

func (s *projectService) Get(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.client.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	return p, nil
}

func (s *projectService) Create(ctx context.Context, in ProjectInput) (*models.Project, error) {
	in = trimProject(in)
	if err := s.validate.check(&in, projectMessages); err != nil {
		return nil, err
	}
	me, err := currentUser(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if in.Color == "" {
		in.Color = ProjectColors[0]
	}
	p, err := s.client.CreateProject(ctx, &models.Project{
		UserID:      me.ID,
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		Icon:        in.Icon,
		Status:      models.ProjectActive,
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// Update replaces name and description. Color and icon change only when set.
func (s *projectService) Update(ctx context.Context, id string, in ProjectInput) (*models.Project, error) {
	in = trimProject(in)
	if err := s.validate.check(&in, projectMessages); err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, id, "Only the project owner can edit this project"); err != nil {
		return nil, err
	}
	u := models.ProjectUpdate{Name: &in.Name, Description: &in.Description}
	if in.Color != "" {
		u.Color = &in.Color
	}
	if in.Icon != "" {
		u.Icon = &in.Icon
	}
	p, err := s.client.UpdateProject(ctx, id, u)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (s *projectService) SetStatus(ctx context.Context, id string, status models.ProjectStatus) (*models.Project, error) {
	if _, err := models.ParseProjectStatus(string(status)); err != nil {
		return nil, &ValidationError{Fields: map[string]string{"Status": err.Error()}}
	}
	if err := s.requireOwner(ctx, id, "Only the project owner can change the status"); err != nil {
		return nil, err
	}
	p, err := s.client.UpdateProject(ctx, id, models.ProjectUpdate{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	return p, nil
}

func (s *projectService) Delete(ctx context.Context, id string) error {
	if err := s.requireOwner(ctx, id, "Only the project owner can delete this project"); err != nil {
		return err
	}
	if err := s.client.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func (s *projectService) requireOwner(ctx context.Context, id, msg string) error {
	me, err := currentUser(ctx, s.store)
	if err != nil {
		return err
	}
	p, err := s.client.GetProject(ctx, id)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if p.UserID != me.ID {
		return forbidden(msg)
	}
	return nil
}

// Dashboard counts the caller's own projects and tasks. Upcoming tasks are
// pending ones ordered by due date; tasks without a due date come last.
func (s *projectService) Dashboard(ctx context.Context) (*Dashboard, error) {
	me, err := currentUser(ctx, s.store)
	if err != nil {
		return nil, err
	}
	projects, err := s.client.ListProjects(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	tasks, err := s.client.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	d := &Dashboard{}
	own := make([]*models.Project, 0, len(projects))
	for _, p := range projects {
		if p.UserID != me.ID {
			continue
		}
		own = append(own, p)
		if p.Status == models.ProjectActive {
			d.ActiveProjects++
		}
	}
	d.TotalProjects = len(own)
	sort.SliceStable(own, func(i, j int) bool { return own[i].UpdatedAt.After(own[j].UpdatedAt) })
	d.RecentProjects = own[:min(len(own), dashboardRecentProjects)]

	var pending []*models.Task
	for _, t := range tasks {
		if t.UserID != me.ID {
			continue
		}
		d.TotalTasks++
		if t.Status == models.TaskCompleted {
			d.CompletedTasks++
		}
		if t.Pending() {
			pending = append(pending, t)
		}
	}
	d.PendingTasks = len(pending)
	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i].DueDate, pending[j].DueDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Before(*b)
	})
	d.UpcomingTasks = pending[:min(len(pending), dashboardUpcomingTasks)]
	return d, nil
}

func trimProject(in ProjectInput) ProjectInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Color = strings.TrimSpace(in.Color)
	in.Icon = strings.TrimSpace(in.Icon)
	return in
}
