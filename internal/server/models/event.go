package models

import (
	"slices"
	"time"
)

const (
	ChangeInsert = "INSERT"
	ChangeUpdate = "UPDATE"
	ChangeDelete = "DELETE"
)

// ChangeEvent tells subscribers that a row changed. Users lists who may see
// the row; Organization makes a profile change visible to its members.
type ChangeEvent struct {
	Table        string    `json:"table"`
	Type         string    `json:"type"`
	RecordID     string    `json:"record_id"`
	At           time.Time `json:"at"`
	Users        []string  `json:"users,omitempty"`
	Organization string    `json:"organization,omitempty"`
}

// VisibleTo reports whether the user with userID and organization may
// receive the event.
func (e ChangeEvent) VisibleTo(userID, organization string) bool {
	if slices.Contains(e.Users, userID) {
		return true
	}
	return e.Organization != "" && e.Organization == organization
}
