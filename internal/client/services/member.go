package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/orbit/internal/client/client"
	"github.com/dmitrijs2005/orbit/internal/client/models"
	"github.com/dmitrijs2005/orbit/internal/client/session"
)

type MemberService interface {
	List(ctx context.Context) ([]*models.Member, error)
}

type memberService struct {
	client client.Client
	store  session.Store
}

func NewMemberService(c client.Client, store session.Store) MemberService {
	return &memberService{client: c, store: store}
}

// List returns the members of the caller's organization, oldest first.
// Without an organization there is no team and the result is empty.
func (s *memberService) List(ctx context.Context) ([]*models.Member, error) {
	me, err := currentUser(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if me.Metadata.Organization() == "" {
		return []*models.Member{}, nil
	}
	items, err := s.client.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load team members: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}
