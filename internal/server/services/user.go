// Package services contains server-side business logic. This file implements
// UserService: accounts, password and provider sign-in, token issue and
// rotation, and user metadata kept in sync with the profile row.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/orbit/internal/common"
	"github.com/dmitrijs2005/orbit/internal/dbx"
	"github.com/dmitrijs2005/orbit/internal/logging"
	"github.com/dmitrijs2005/orbit/internal/server/auth"
	"github.com/dmitrijs2005/orbit/internal/server/config"
	"github.com/dmitrijs2005/orbit/internal/server/models"
	"github.com/dmitrijs2005/orbit/internal/server/realtime"
	"github.com/dmitrijs2005/orbit/internal/server/repositories/repomanager"
)

// AuthResult is a freshly issued token pair together with the account.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         *models.User
}

// ProviderIdentity is what an OAuth provider tells us about the user.
type ProviderIdentity struct {
	Provider string
	Email    string
	Name     string
}

type signUpInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	events                       publisher
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, broker realtime.Broker, logger logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		events:                       publisher{broker: broker, logger: logger},
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// SignUp creates a password account with initial metadata and signs it in.
func (s *UserService) SignUp(ctx context.Context, email, password string, data map[string]any) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if err := check(signUpInput{Email: email, Password: password}); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var res *AuthResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, &models.User{Email: email, PasswordHash: hash, Metadata: data})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return &Error{Kind: common.ErrorAlreadyExists, Msg: "User already registered"}
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		if err := s.repomanager.Profiles(tx).Upsert(ctx, u.Profile()); err != nil {
			return fmt.Errorf("error creating profile: %w", err)
		}
		res, err = s.issue(ctx, tx, u)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.events.publish(ctx, common.TableProfiles, models.ChangeInsert, res.User.ID, []string{res.User.ID}, res.User.MetaString(models.MetaOrganization))
	return res, nil
}

// SignIn checks the password. Unknown e-mail and wrong password are not
// told apart.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	return s.issue(ctx, s.db, user)
}

// SignInWithProvider signs in the account with the provider's e-mail,
// creating it on first use.
func (s *UserService) SignInWithProvider(ctx context.Context, id ProviderIdentity) (*AuthResult, error) {
	if id.Email == "" {
		return nil, invalid(id.Provider + " did not share an e-mail address")
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, id.Email)
	if err == nil {
		return s.issue(ctx, s.db, user)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	meta := map[string]any{"provider": id.Provider}
	if id.Name != "" {
		meta[models.MetaFullName] = id.Name
		meta[models.MetaName] = id.Name
	}

	var res *AuthResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, &models.User{Email: id.Email, Metadata: meta})
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		if err := s.repomanager.Profiles(tx).Upsert(ctx, u.Profile()); err != nil {
			return fmt.Errorf("error creating profile: %w", err)
		}
		res, err = s.issue(ctx, tx, u)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.events.publish(ctx, common.TableProfiles, models.ChangeInsert, res.User.ID, []string{res.User.ID}, "")
	return res, nil
}

// RefreshToken consumes a refresh token and returns a fresh pair. The old
// token is gone afterwards whether or not it had expired; expired tokens
// yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	var res *AuthResult
	expired := false

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error consuming refresh token: %w", err)
		}
		if token.Expired(time.Now()) {
			expired = true
			return nil
		}

		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			return fmt.Errorf("error loading user: %w", err)
		}
		res, err = s.issue(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, common.ErrRefreshTokenExpired
	}
	return res, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// UpdateUser merges patch into the user's metadata and mirrors the known
// keys onto the profile row. Either both writes happen or neither.
func (s *UserService) UpdateUser(ctx context.Context, userID string, patch map[string]any) (*models.User, error) {
	var before, after *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		u, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		before = u

		after, err = users.UpdateMetadata(ctx, userID, u.MergeMetadata(patch))
		if err != nil {
			return fmt.Errorf("error updating user: %w", err)
		}
		if err := s.repomanager.Profiles(tx).Upsert(ctx, after.Profile()); err != nil {
			return fmt.Errorf("error updating profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	org := after.MetaString(models.MetaOrganization)
	s.events.publish(ctx, common.TableProfiles, models.ChangeUpdate, userID, []string{userID}, org)
	if prev := before.MetaString(models.MetaOrganization); prev != "" && prev != org {
		s.events.publish(ctx, common.TableProfiles, models.ChangeUpdate, userID, nil, prev)
	}
	return after, nil
}

// SignOut revokes every refresh token of the user. Access tokens already
// issued stay valid until they expire.
func (s *UserService) SignOut(ctx context.Context, userID string) error {
	n, err := s.repomanager.RefreshTokens(s.db).DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("error revoking refresh tokens: %w", err)
	}
	s.events.logger.Debug(ctx, "signed out", "user_id", userID, "revoked", n)
	return nil
}

// --- helpers below ---

func (s *UserService) issue(ctx context.Context, tx dbx.DBTX, user *models.User) (*AuthResult, error) {
	access, expiresAt, err := auth.GenerateToken(user, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	tokens := s.repomanager.RefreshTokens(tx)
	now := time.Now()
	if err := tokens.PurgeExpired(ctx, user.ID, now); err != nil {
		return nil, common.ErrorInternal
	}
	if _, err := tokens.Issue(ctx, user.ID, refresh, now.Add(s.refreshTokenValidityDuration)); err != nil {
		return nil, common.ErrorInternal
	}
	return &AuthResult{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt, User: user}, nil
}
