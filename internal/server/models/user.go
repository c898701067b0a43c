// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account. PasswordHash is empty for accounts created through an
// OAuth provider.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Metadata     map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Well-known metadata keys mirrored onto the profile row.
const (
	MetaFullName     = "full_name"
	MetaName         = "name"
	MetaRole         = "role"
	MetaOrganization = "organization"
	MetaPhoneNumber  = "phone_number"
)

// MetaString returns the string stored under key, or "".
func (u *User) MetaString(key string) string {
	s, _ := u.Metadata[key].(string)
	return s
}

// FullName falls back to the "name" key set by OAuth providers.
func (u *User) FullName() string {
	if n := u.MetaString(MetaFullName); n != "" {
		return n
	}
	return u.MetaString(MetaName)
}

// MergeMetadata applies patch on top of the current metadata. Keys set to
// nil are kept with a null value.
func (u *User) MergeMetadata(patch map[string]any) map[string]any {
	out := make(map[string]any, len(u.Metadata)+len(patch))
	for k, v := range u.Metadata {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Profile returns the public profile row derived from the account.
func (u *User) Profile() *Profile {
	return &Profile{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName(),
		Role:         u.MetaString(MetaRole),
		Organization: u.MetaString(MetaOrganization),
		PhoneNumber:  u.MetaString(MetaPhoneNumber),
	}
}
