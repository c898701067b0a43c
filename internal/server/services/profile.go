package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/orbit/internal/server/models"
	"github.com/dmitrijs2005/orbit/internal/server/repositories/repomanager"
)

// ProfileService exposes the team view of the caller's organization.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m}
}

// ListMembers returns the profiles sharing the caller's organization,
// oldest first. A caller without an organization has no members.
func (s *ProfileService) ListMembers(ctx context.Context, userID string) ([]*models.Profile, error) {
	me, err := s.repomanager.Profiles(s.db).Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if me.Organization == "" {
		return nil, nil
	}
	return s.repomanager.Profiles(s.db).ListByOrganization(ctx, me.Organization)
}

func (s *ProfileService) SetPushToken(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return invalid("token is required")
	}
	return s.repomanager.Profiles(s.db).SetPushToken(ctx, userID, token)
}
