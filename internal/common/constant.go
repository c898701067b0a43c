// Package common contains shared constants and sentinel errors used across
// Orbit components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Table names exposed by the data service. They double as realtime channel
// names.
const (
	TableProfiles = "profiles"
	TableProjects = "projects"
	TableTasks    = "tasks"
)
