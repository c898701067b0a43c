package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/orbit/internal/client/client"
	"github.com/dmitrijs2005/orbit/internal/client/events"
	"github.com/dmitrijs2005/orbit/internal/client/models"
	"github.com/dmitrijs2005/orbit/internal/common"
	"github.com/dmitrijs2005/orbit/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingTokens = errors.New("callback URL carries no tokens")

// Manager implements Store on top of the backend client.
type Manager struct {
	client client.Client
	kv     KV
	logger logging.Logger

	mu       sync.RWMutex
	current  *models.Session
	restored bool

	stream *events.Stream[*models.Session]
}

func NewManager(c client.Client, kv KV, logger logging.Logger) *Manager {
	m := &Manager{
		client: c,
		kv:     kv,
		logger: logger,
		stream: events.NewStream[*models.Session](),
	}
	c.OnTokensRefreshed(m.onTokensRefreshed)
	return m
}

// GetSession returns the cached session. The first call restores a
// persisted session by exchanging the stored refresh token.
func (m *Manager) GetSession(ctx context.Context) (*models.Session, error) {
	m.mu.RLock()
	if m.restored {
		s := m.current
		m.mu.RUnlock()
		return s, nil
	}
	m.mu.RUnlock()

	if err := m.restore(ctx); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, nil
}

func (m *Manager) restore(ctx context.Context) error {
	token, err := m.kv.Get(ctx, RefreshTokenKey)
	if err != nil {
		m.logger.Warn(ctx, "cannot read persisted session", "error", err)
		m.markRestored()
		return nil
	}
	if len(token) == 0 {
		m.markRestored()
		return nil
	}

	s, err := m.client.Refresh(ctx, string(token))
	switch {
	case err == nil:
		m.set(ctx, s)
		return nil
	case errors.Is(err, client.ErrUnavailable):
		// keep the token for the next attempt
		return fmt.Errorf("restore session: %w", err)
	default:
		m.logger.Info(ctx, "persisted session rejected", "error", err)
		if derr := m.kv.Delete(ctx, RefreshTokenKey); derr != nil {
			m.logger.Warn(ctx, "cannot drop persisted session", "error", derr)
		}
		m.markRestored()
		return nil
	}
}

func (m *Manager) markRestored() {
	m.mu.Lock()
	m.restored = true
	m.mu.Unlock()
}

func (m *Manager) OnSessionChange(fn func(*models.Session)) events.Subscription {
	return m.stream.Subscribe(fn)
}

func (m *Manager) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	s, err := m.client.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}
	m.set(ctx, s)
	return s, nil
}

func (m *Manager) SignUp(ctx context.Context, email, password, fullName string) (*models.Session, error) {
	var data map[string]any
	if name := strings.TrimSpace(fullName); name != "" {
		data = map[string]any{models.MetaFullName: name}
	}
	s, err := m.client.SignUp(ctx, strings.TrimSpace(email), password, data)
	if err != nil {
		return nil, err
	}
	m.set(ctx, s)
	return s, nil
}

// SetSession adopts a token pair obtained outside the client, e.g. from an
// OAuth redirect, and loads the matching user.
func (m *Manager) SetSession(ctx context.Context, accessToken, refreshToken string) (*models.Session, error) {
	m.client.SetTokens(accessToken, refreshToken)

	user, err := m.client.GetUser(ctx)
	if err != nil {
		m.mu.RLock()
		prev := m.current
		m.mu.RUnlock()
		if prev != nil {
			m.client.SetTokens(prev.AccessToken, prev.RefreshToken)
		} else {
			m.client.SetTokens("", "")
		}
		return nil, err
	}

	s := &models.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    tokenExpiry(accessToken),
		User:         *user,
	}
	m.set(ctx, s)
	return s, nil
}

// ExchangeCallbackURL extracts access_token and refresh_token from an OAuth
// redirect URL (fragment first, then query) and adopts them.
func (m *Manager) ExchangeCallbackURL(ctx context.Context, rawURL string) (*models.Session, error) {
	access, refresh, err := ParseCallbackURL(rawURL)
	if err != nil {
		return nil, err
	}
	return m.SetSession(ctx, access, refresh)
}

// ParseCallbackURL returns the decoded token pair carried by an OAuth
// redirect URL.
func ParseCallbackURL(rawURL string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", fmt.Errorf("invalid callback URL: %w", err)
	}

	for _, raw := range []string{u.Fragment, u.RawQuery} {
		if raw == "" {
			continue
		}
		values, err := url.ParseQuery(raw)
		if err != nil {
			continue
		}
		if desc := values.Get("error_description"); desc != "" {
			return "", "", fmt.Errorf("%w: %s", common.ErrorUnauthorized, desc)
		}
		access, refresh := values.Get("access_token"), values.Get("refresh_token")
		if access != "" && refresh != "" {
			return access, refresh, nil
		}
	}
	return "", "", ErrMissingTokens
}

// SignOut ends the session locally. A failure to revoke the session on the
// server is logged and does not keep the user signed in.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.client.SignOut(ctx); err != nil {
		m.logger.Warn(ctx, "server sign-out failed", "error", err)
	}
	m.set(ctx, nil)
	return nil
}

func (m *Manager) UpdateUserMetadata(ctx context.Context, patch map[string]any) (*models.Session, error) {
	m.mu.RLock()
	cur := m.current
	m.mu.RUnlock()
	if cur == nil {
		return nil, client.ErrNoSession
	}

	user, err := m.client.UpdateUser(ctx, patch)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	latest := m.current
	m.mu.RUnlock()
	if latest == nil {
		return nil, client.ErrNoSession
	}

	s := latest.WithUser(*user)
	m.set(ctx, s)
	return s, nil
}

func (m *Manager) onTokensRefreshed(s *models.Session) {
	ctx := context.Background()
	if s == nil {
		m.logger.Info(ctx, "session expired")
		m.set(ctx, nil)
		return
	}
	m.logger.Debug(ctx, "access token refreshed")
	m.set(ctx, s)
}

func (m *Manager) set(ctx context.Context, s *models.Session) {
	m.mu.Lock()
	m.current = s
	m.restored = true
	m.mu.Unlock()

	m.persist(ctx, s)
	m.stream.Publish(s)
}

func (m *Manager) persist(ctx context.Context, s *models.Session) {
	var err error
	if s == nil || s.RefreshToken == "" {
		err = m.kv.Delete(ctx, RefreshTokenKey)
	} else {
		err = m.kv.Set(ctx, RefreshTokenKey, []byte(s.RefreshToken))
	}
	if err != nil {
		m.logger.Warn(ctx, "cannot persist session", "error", err)
	}
}

// Flush waits until all pending change notifications have been delivered.
func (m *Manager) Flush() { m.stream.Flush() }

func (m *Manager) Close() { m.stream.Close() }

// tokenExpiry reads the exp claim without verifying the signature; the
// server verifies the token on every call.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
