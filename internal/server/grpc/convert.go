package grpc

import (
	"time"

	"github.com/dmitrijs2005/orbit/internal/rpc"
	"github.com/dmitrijs2005/orbit/internal/server/models"
	"github.com/dmitrijs2005/orbit/internal/server/services"
)

func toUser(u *models.User) rpc.User {
	meta := u.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return rpc.User{ID: u.ID, Email: u.Email, Metadata: meta, CreatedAt: u.CreatedAt}
}

func toSession(res *services.AuthResult) *rpc.Session {
	return &rpc.Session{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    int(time.Until(res.ExpiresAt).Seconds()),
		ExpiresAt:    res.ExpiresAt,
		User:         toUser(res.User),
	}
}

func toProject(p *models.Project) rpc.Project {
	return rpc.Project{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		Icon:        p.Icon,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func fromProject(p *rpc.Project) *models.Project {
	return &models.Project{
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		Icon:        p.Icon,
		Status:      p.Status,
	}
}

func toTask(t *models.Task) rpc.Task {
	return rpc.Task{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		ProjectID:   t.ProjectID,
		AssigneeID:  t.AssigneeID,
		CreatedAt:   t.CreatedAt,
	}
}

func fromTask(t *rpc.Task) *models.Task {
	return &models.Task{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		ProjectID:   t.ProjectID,
		AssigneeID:  t.AssigneeID,
	}
}

func toMember(p *models.Profile) rpc.Member {
	return rpc.Member{
		ID:          p.ID,
		Email:       p.Email,
		FullName:    p.FullName,
		Role:        p.Role,
		PhoneNumber: p.PhoneNumber,
		CreatedAt:   p.CreatedAt,
	}
}
