package token

import (
	"time"

	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ExpirySkew is the lead time before actual expiry at which proactive
// refresh is triggered.
const ExpirySkew = 5 * time.Minute

// DefaultKind is the token kind used when the server does not state one.
const DefaultKind = "Bearer"

// Token is an immutable proof-of-identity pair: a short-lived access secret
// presented on each authenticated request and a longer-lived refresh secret
// used solely to obtain a new access secret. Renewal produces a new Token
// value, never a mutation.
type Token struct {
	AccessSecret  string    `json:"access_secret"`
	RefreshSecret string    `json:"refresh_secret"`
	IssuedAt      time.Time `json:"issued_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	Kind          string    `json:"kind"`
}

// New builds a Token, enforcing the ExpiresAt > IssuedAt invariant.
func New(accessSecret, refreshSecret string, issuedAt, expiresAt time.Time, kind string) (Token, error) {
	if accessSecret == "" {
		return Token{}, errors.New("[token.New] access secret is required")
	}
	if !expiresAt.After(issuedAt) {
		return Token{}, errors.New("[token.New] expiresAt must be after issuedAt")
	}
	if kind == "" {
		kind = DefaultKind
	}
	return Token{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		IssuedAt:      issuedAt,
		ExpiresAt:     expiresAt,
		Kind:          kind,
	}, nil
}

// IsZero reports whether the token carries no secrets.
func (t Token) IsZero() bool {
	return t.AccessSecret == "" && t.RefreshSecret == ""
}

// IsExpired reports whether the access secret is no longer usable.
func (t Token) IsExpired() bool {
	return !NowTimeFunc().Before(t.ExpiresAt)
}

// WillExpireSoon reports whether the token is inside the skew window and a
// proactive refresh should be triggered.
func (t Token) WillExpireSoon() bool {
	return !NowTimeFunc().Before(t.ExpiresAt.Add(-ExpirySkew))
}

// TimeUntilExpiry returns the remaining lifetime of the access secret.
// Negative once expired.
func (t Token) TimeUntilExpiry() time.Duration {
	return t.ExpiresAt.Sub(NowTimeFunc())
}

// WithRefreshSecret returns a copy of the token carrying the given refresh
// secret. Used when the server rotates access secrets without reissuing the
// refresh secret.
func (t Token) WithRefreshSecret(refreshSecret string) Token {
	t.RefreshSecret = refreshSecret
	return t
}
