package credentials

import (
	"strings"
	"time"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Credentials holds a login identity and secret for the duration of a login
// attempt. It is never persisted; the repository does not retain it beyond
// the login call.
type Credentials struct {
	Identity  string
	Secret    string
	CreatedAt time.Time
}

// New builds a normalized Credentials value. The identity is trimmed and
// lower-cased so that "  John@Example.COM " and "john@example.com" compare
// equal.
func New(identity, secret string) Credentials {
	return Credentials{
		Identity:  strings.ToLower(strings.TrimSpace(identity)),
		Secret:    secret,
		CreatedAt: NowTimeFunc(),
	}
}

// IsEmpty reports whether either field is missing after normalization.
func (c Credentials) IsEmpty() bool {
	return c.Identity == "" || c.Secret == ""
}
