package models

import (
	"time"

	"github.com/dmitrijs2005/orbit/internal/common"
)

// Member is a profile of someone in the caller's organization.
type Member struct {
	ID          string
	Email       string
	FullName    string
	Role        string
	PhoneNumber string
	CreatedAt   time.Time
}

func (m *Member) DisplayName() string {
	if m.FullName != "" {
		return m.FullName
	}
	if local := common.EmailLocalPart(m.Email); local != "" {
		return local
	}
	return "Unknown"
}

func (m *Member) DisplayRole() string {
	if m.Role != "" {
		return m.Role
	}
	return "Not set"
}
