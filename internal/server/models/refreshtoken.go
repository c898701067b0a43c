package models

import "time"

// RefreshToken is a single-use opaque token that can be exchanged for a new
// session until Expires.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.Expires)
}
