package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/orbit/internal/common"
	"github.com/dmitrijs2005/orbit/internal/logging"
	"github.com/dmitrijs2005/orbit/internal/server/models"
	"github.com/dmitrijs2005/orbit/internal/server/realtime"
	"github.com/dmitrijs2005/orbit/internal/server/repositories/repomanager"
)

type projectInput struct {
	Name   string `validate:"required,max=100"`
	Color  string `validate:"omitempty,hexcolor"`
	Status string `validate:"oneof=active completed archived"`
}

type projectFilter struct {
	Status string `validate:"omitempty,oneof=active completed archived"`
}

// ProjectService manages the caller's own projects.
type ProjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	events      publisher
}

func NewProjectService(db *sql.DB, m repomanager.RepositoryManager, broker realtime.Broker, logger logging.Logger) *ProjectService {
	return &ProjectService{db: db, repomanager: m, events: publisher{broker: broker, logger: logger}}
}

func (s *ProjectService) List(ctx context.Context, userID, status string) ([]*models.Project, error) {
	if err := check(projectFilter{Status: status}); err != nil {
		return nil, err
	}
	return s.repomanager.Projects(s.db).List(ctx, userID, status)
}

func (s *ProjectService) Get(ctx context.Context, userID, id string) (*models.Project, error) {
	return s.repomanager.Projects(s.db).Get(ctx, userID, id)
}

func (s *ProjectService) Create(ctx context.Context, userID string, p *models.Project) (*models.Project, error) {
	in := *p
	in.UserID = userID
	in.Name = strings.TrimSpace(in.Name)
	if in.Status == "" {
		in.Status = models.ProjectActive
	}
	if err := check(projectInput{Name: in.Name, Color: in.Color, Status: in.Status}); err != nil {
		return nil, err
	}

	out, err := s.repomanager.Projects(s.db).Create(ctx, &in)
	if err != nil {
		return nil, err
	}
	s.events.publish(ctx, common.TableProjects, models.ChangeInsert, out.ID, []string{userID}, "")
	return out, nil
}

func (s *ProjectService) Update(ctx context.Context, userID, id string, patch models.ProjectPatch) (*models.Project, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	in := projectInput{Name: "-", Status: models.ProjectActive}
	if patch.Name != nil {
		in.Name = *patch.Name
	}
	if patch.Color != nil {
		in.Color = *patch.Color
	}
	if patch.Status != nil {
		in.Status = *patch.Status
	}
	if err := check(in); err != nil {
		return nil, err
	}

	out, err := s.repomanager.Projects(s.db).Update(ctx, userID, id, patch)
	if err != nil {
		return nil, err
	}
	s.events.publish(ctx, common.TableProjects, models.ChangeUpdate, out.ID, []string{userID}, "")
	return out, nil
}

// Delete removes the project; its tasks stay and lose the reference.
func (s *ProjectService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repomanager.Projects(s.db).Delete(ctx, userID, id); err != nil {
		return err
	}
	s.events.publish(ctx, common.TableProjects, models.ChangeDelete, id, []string{userID}, "")
	return nil
}
