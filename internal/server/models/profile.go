package models

import "time"

// Profile is the part of a user visible to the rest of the organization.
type Profile struct {
	ID           string
	Email        string
	FullName     string
	Role         string
	Organization string
	PhoneNumber  string
	PushToken    string
	CreatedAt    time.Time
}
