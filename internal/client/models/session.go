// Package models defines the client-side data model: the authenticated
// session and the records shown by the app screens.
package models

import "time"

// Session is an authenticated session. Values are treated as immutable:
// every change replaces the whole Session.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// Expired reports whether the access token has expired at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// WithUser returns a copy of s carrying u.
func (s *Session) WithUser(u User) *Session {
	c := *s
	c.User = u
	return &c
}

// WithTokens returns a copy of s carrying the new token pair.
func (s *Session) WithTokens(access, refresh string, expiresAt time.Time) *Session {
	c := *s
	c.AccessToken = access
	c.RefreshToken = refresh
	c.ExpiresAt = expiresAt
	return &c
}

type User struct {
	ID        string
	Email     string
	Metadata  UserMetadata
	CreatedAt time.Time
}
