package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/orbit/internal/client/client"
	"github.com/dmitrijs2005/orbit/internal/client/models"
	"github.com/dmitrijs2005/orbit/internal/client/session"
)

// Roles offered during onboarding. Any other non-empty role is accepted.
var Roles = []string{
	"Developer", "Designer", "Manager", "Product Owner",
	"Team Lead", "Freelancer", "Student", "Other",
}

type OnboardingInput struct {
	Role         string `validate:"required"`
	Organization string
	PhoneNumber  string
}

type ProfileInput struct {
	FullName string `validate:"required"`
	Bio      string
}

type AccountInput struct {
	Role         string `validate:"required"`
	Organization string
	PhoneNumber  string
}

var profileMessages = messages{
	"Role.required":     "Please select your role",
	"FullName.required": "Name cannot be empty",
}

// ProfileService edits the user metadata of the signed-in user. Every
// change goes through the session store so listeners see the new session.
type ProfileService interface {
	CompleteOnboarding(ctx context.Context, in OnboardingInput) (*models.Session, error)
	UpdateProfile(ctx context.Context, in ProfileInput) (*models.Session, error)
	UpdateAccountInfo(ctx context.Context, in AccountInput) (*models.Session, error)
	SavePushToken(ctx context.Context, token string) error
}

type profileService struct {
	store    session.Store
	client   client.Client
	validate *inputValidator
}

func NewProfileService(store session.Store, c client.Client) ProfileService {
	return &profileService{store: store, client: c, validate: newInputValidator()}
}

func (s *profileService) CompleteOnboarding(ctx context.Context, in OnboardingInput) (*models.Session, error) {
	in.Role = strings.TrimSpace(in.Role)
	if err := s.validate.check(&in, profileMessages); err != nil {
		return nil, err
	}
	patch := map[string]any{
		models.MetaRole:                in.Role,
		models.MetaOrganization:        optional(in.Organization),
		models.MetaPhoneNumber:         optional(in.PhoneNumber),
		models.MetaOnboardingCompleted: true,
	}
	sess, err := s.store.UpdateUserMetadata(ctx, patch)
	if err != nil {
		return nil, fmt.Errorf("complete onboarding: %w", err)
	}
	return sess, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, in ProfileInput) (*models.Session, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	if err := s.validate.check(&in, profileMessages); err != nil {
		return nil, err
	}
	patch := map[string]any{
		models.MetaFullName: in.FullName,
		models.MetaBio:      optional(in.Bio),
	}
	sess, err := s.store.UpdateUserMetadata(ctx, patch)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return sess, nil
}

func (s *profileService) UpdateAccountInfo(ctx context.Context, in AccountInput) (*models.Session, error) {
	in.Role = strings.TrimSpace(in.Role)
	if err := s.validate.check(&in, messages{"Role.required": "Role is required"}); err != nil {
		return nil, err
	}
	patch := map[string]any{
		models.MetaRole:         in.Role,
		models.MetaOrganization: optional(in.Organization),
		models.MetaPhoneNumber:  optional(in.PhoneNumber),
	}
	sess, err := s.store.UpdateUserMetadata(ctx, patch)
	if err != nil {
		return nil, fmt.Errorf("update account information: %w", err)
	}
	return sess, nil
}

// SavePushToken registers the device push token on the profile row.
func (s *profileService) SavePushToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return &ValidationError{Fields: map[string]string{"Token": "push token is empty"}}
	}
	if err := s.client.UpdatePushToken(ctx, token); err != nil {
		return fmt.Errorf("save push token: %w", err)
	}
	return nil
}
