package client

import (
	"github.com/dmitrijs2005/orbit/internal/client/models"
	"github.com/dmitrijs2005/orbit/internal/rpc"
)

func sessionFromRPC(s *rpc.Session) *models.Session {
	return &models.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.ExpiresAt,
		User:         *userFromRPC(&s.User),
	}
}

func userFromRPC(u *rpc.User) *models.User {
	md := models.UserMetadata(u.Metadata)
	if md == nil {
		md = models.UserMetadata{}
	}
	return &models.User{ID: u.ID, Email: u.Email, Metadata: md, CreatedAt: u.CreatedAt}
}

func projectFromRPC(p *rpc.Project) *models.Project {
	return &models.Project{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		Icon:        p.Icon,
		Status:      models.ProjectStatus(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func projectToRPC(p *models.Project) *rpc.Project {
	return &rpc.Project{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		Icon:        p.Icon,
		Status:      string(p.Status),
	}
}

func projectPatchToRPC(id string, u models.ProjectUpdate) *rpc.ProjectPatch {
	patch := &rpc.ProjectPatch{
		ID:          id,
		Name:        u.Name,
		Description: u.Description,
		Color:       u.Color,
		Icon:        u.Icon,
	}
	if u.Status != nil {
		s := string(*u.Status)
		patch.Status = &s
	}
	return patch
}

func taskFromRPC(t *rpc.Task) *models.Task {
	return &models.Task{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      models.TaskStatus(t.Status),
		Priority:    models.TaskPriority(t.Priority),
		DueDate:     t.DueDate,
		ProjectID:   t.ProjectID,
		AssigneeID:  t.AssigneeID,
		CreatedAt:   t.CreatedAt,
	}
}

func taskToRPC(t *models.Task) *rpc.Task {
	return &rpc.Task{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		ProjectID:   t.ProjectID,
		AssigneeID:  t.AssigneeID,
	}
}

func taskPatchToRPC(id string, u models.TaskUpdate) *rpc.TaskPatch {
	patch := &rpc.TaskPatch{
		ID:          id,
		Title:       u.Title,
		Description: u.Description,
		DueDate:     u.DueDate,
		ProjectID:   u.ProjectID,
		AssigneeID:  u.AssigneeID,
	}
	if u.Status != nil {
		s := string(*u.Status)
		patch.Status = &s
	}
	if u.Priority != nil {
		p := string(*u.Priority)
		patch.Priority = &p
	}
	return patch
}

func memberFromRPC(m *rpc.Member) *models.Member {
	return &models.Member{
		ID:          m.ID,
		Email:       m.Email,
		FullName:    m.FullName,
		Role:        m.Role,
		PhoneNumber: m.PhoneNumber,
		CreatedAt:   m.CreatedAt,
	}
}

func changeFromRPC(ev *rpc.ChangeEvent) models.ChangeEvent {
	return models.ChangeEvent{
		Table:    ev.Table,
		Type:     models.ChangeType(ev.Type),
		RecordID: ev.RecordID,
		At:       ev.At,
	}
}
