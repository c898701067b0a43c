package models

import "time"

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeEvent notifies that a row of Table changed.
type ChangeEvent struct {
	Table    string
	Type     ChangeType
	RecordID string
	At       time.Time
}
