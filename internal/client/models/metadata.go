package models

// Well-known user metadata keys.
const (
	MetaOnboardingCompleted = "onboarding_completed"
	MetaRole                = "role"
	MetaOrganization        = "organization"
	MetaPhoneNumber         = "phone_number"
	MetaFullName            = "full_name"
	MetaName                = "name"
	MetaBio                 = "bio"
	MetaPushToken           = "push_token"
)

// UserMetadata is the free-form metadata attached to a user account.
type UserMetadata map[string]any

// OnboardingCompleted is true only for a stored boolean true. Missing, null
// and non-boolean values count as not completed.
func (m UserMetadata) OnboardingCompleted() bool {
	v, ok := m[MetaOnboardingCompleted].(bool)
	return ok && v
}

func (m UserMetadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

func (m UserMetadata) Role() string         { return m.String(MetaRole) }
func (m UserMetadata) Organization() string { return m.String(MetaOrganization) }
func (m UserMetadata) PhoneNumber() string  { return m.String(MetaPhoneNumber) }
func (m UserMetadata) Bio() string          { return m.String(MetaBio) }

// FullName falls back to the "name" key set by OAuth providers.
func (m UserMetadata) FullName() string {
	if n := m.String(MetaFullName); n != "" {
		return n
	}
	return m.String(MetaName)
}

// Merge returns a new map with patch applied on top of m. Keys whose patch
// value is nil are kept with a nil value.
func (m UserMetadata) Merge(patch map[string]any) UserMetadata {
	out := make(UserMetadata, len(m)+len(patch))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
