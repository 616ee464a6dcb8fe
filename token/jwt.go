package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// ExpiryFromJWT recovers the expiry time from the exp claim of a JWT access
// secret. Used when a token response carries no explicit lifetime. The
// signature is deliberately not verified: the client has no key material and
// only needs the scheduling hint, the server remains the authority on
// whether the secret is accepted.
func ExpiryFromJWT(accessSecret string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessSecret, &claims); err != nil {
		return time.Time{}, errors.Wrap(err, "[token.ExpiryFromJWT] ParseUnverified")
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("[token.ExpiryFromJWT] no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}

// SubjectFromJWT returns the sub claim of a JWT access secret, or an empty
// string when the secret is not a JWT or carries no subject.
func SubjectFromJWT(accessSecret string) string {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessSecret, &claims); err != nil {
		return ""
	}
	return claims.Subject
}
