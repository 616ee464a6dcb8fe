// Package sessions defines the Session value: the unit of truth for
// "is the user logged in".
package sessions

import (
	"time"

	"github.com/jrsteele09/go-auth-client/identity"
	"github.com/jrsteele09/go-auth-client/token"
)

// Session combines identity, token and a last-activity timestamp. Sessions
// handed to callers are read-only snapshots copied out of the repository;
// mutating one never affects repository state.
//
// Identity is nil when the session was reconstructed from storage and no
// identity envelope was cached alongside the token. A nil identity does not
// invalidate the session: the token governs validity in that case.
type Session struct {
	Identity     *identity.Identity
	Token        token.Token
	LastActivity time.Time
}

// New builds a session stamped with the current token issue time as its
// initial activity.
func New(id *identity.Identity, tok token.Token) Session {
	return Session{
		Identity:     id,
		Token:        tok,
		LastActivity: tok.IssuedAt,
	}
}

// IsValid reports whether the session can be used for authenticated calls:
// the token must not be expired and the identity, when known, must be
// permitted access.
func (s Session) IsValid() bool {
	if s.Token.IsExpired() {
		return false
	}
	if s.Identity != nil && !s.Identity.CanAccess() {
		return false
	}
	return true
}

// NeedsRefresh reports whether the token is inside the proactive-renewal
// window.
func (s Session) NeedsRefresh() bool {
	return s.Token.WillExpireSoon()
}

// Snapshot returns a deep copy of the session. Handing snapshots to callers
// keeps repository-internal state safe from mutation.
func (s Session) Snapshot() Session {
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	return s
}

// WithToken returns a copy of the session carrying a renewed token. The
// identity is retained and the activity timestamp moves to the new token's
// issue time.
func (s Session) WithToken(tok token.Token) Session {
	s.Token = tok
	s.LastActivity = tok.IssuedAt
	return s
}
