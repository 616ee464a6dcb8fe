package identity

import "time"

// Identity describes who the session belongs to, as reported by the
// authentication backend. Immutable; "last activity" updates produce a new
// value.
type Identity struct {
	ID             string     `json:"id"`
	DisplayName    string     `json:"display_name"`
	Contact        string     `json:"contact"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
}

// CanAccess reports whether the account is permitted to use the system.
func (i Identity) CanAccess() bool {
	return i.Active
}

// WithLastActivity returns a copy of the identity stamped with the given
// activity time.
func (i Identity) WithLastActivity(at time.Time) Identity {
	i.LastActivityAt = &at
	return i
}
