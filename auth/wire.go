package auth

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-auth-client/identity"
	"github.com/jrsteele09/go-auth-client/token"
)

// Backend endpoints, relative to the transport base URL.
const (
	loginPath   = "auth/login"
	refreshPath = "auth/refresh"
	logoutPath  = "auth/logout"
)

type loginRequest struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// tokenEnvelope is the token object inside login and refresh responses.
// expiresIn is seconds from receipt; when absent the expiry is recovered from
// the access secret's exp claim if it is a JWT.
type tokenEnvelope struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	ExpiresIn int64  `json:"expiresIn"`
	Kind      string `json:"kind"`
}

type identityEnvelope struct {
	ID             string     `json:"id"`
	DisplayName    string     `json:"displayName"`
	Contact        string     `json:"contact"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastActivityAt *time.Time `json:"lastActivityAt,omitempty"`
}

type sessionResponse struct {
	Token    *tokenEnvelope    `json:"token"`
	Identity *identityEnvelope `json:"identity,omitempty"`
}

// decodeSessionResponse turns a 2xx login/refresh body into a Token and an
// optional Identity. previousRefresh fills the refresh secret when the server
// rotated only the access secret.
func decodeSessionResponse(body []byte, previousRefresh string, now time.Time) (token.Token, *identity.Identity, error) {
	var resp sessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return token.Token{}, nil, errors.Wrap(ErrDecodingFailure, err.Error())
	}
	if resp.Token == nil || resp.Token.Access == "" {
		return token.Token{}, nil, errors.Wrap(ErrDecodingFailure, "response carries no token")
	}

	expiresAt, err := tokenExpiry(resp.Token, now)
	if err != nil {
		return token.Token{}, nil, err
	}

	refreshSecret := resp.Token.Refresh
	if refreshSecret == "" {
		refreshSecret = previousRefresh
	}

	tok, err := token.New(resp.Token.Access, refreshSecret, now, expiresAt, resp.Token.Kind)
	if err != nil {
		return token.Token{}, nil, errors.Wrap(ErrDecodingFailure, err.Error())
	}

	var id *identity.Identity
	if resp.Identity != nil && resp.Identity.ID != "" {
		id = &identity.Identity{
			ID:             resp.Identity.ID,
			DisplayName:    resp.Identity.DisplayName,
			Contact:        resp.Identity.Contact,
			Active:         resp.Identity.Active,
			CreatedAt:      resp.Identity.CreatedAt,
			LastActivityAt: resp.Identity.LastActivityAt,
		}
	}
	return tok, id, nil
}

func tokenExpiry(env *tokenEnvelope, now time.Time) (time.Time, error) {
	if env.ExpiresIn > 0 {
		return now.Add(time.Duration(env.ExpiresIn) * time.Second), nil
	}
	expiresAt, err := token.ExpiryFromJWT(env.Access)
	if err != nil {
		return time.Time{}, errors.Wrap(ErrDecodingFailure, "response carries no token lifetime")
	}
	return expiresAt, nil
}
