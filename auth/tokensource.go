package auth

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// tokenSource adapts the managed session to golang.org/x/oauth2, so the
// session manager can back any oauth2-aware HTTP client:
//
//	client := oauth2.NewClient(ctx, service.TokenSource(ctx))
type tokenSource struct {
	ctx context.Context
	svc *Service
}

// TokenSource returns an oauth2.TokenSource backed by the managed session.
// Each Token call goes through AccessSecret, so transparent refresh and the
// single-flight guarantee apply unchanged.
func (s *Service) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, svc: s}
}

// Token implements oauth2.TokenSource.
func (ts *tokenSource) Token() (*oauth2.Token, error) {
	secret, err := ts.svc.AccessSecret(ts.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[tokenSource.Token] AccessSecret")
	}

	session, err := ts.svc.CurrentSession(ts.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[tokenSource.Token] CurrentSession")
	}
	if session == nil {
		return nil, ErrNoActiveSession
	}

	return &oauth2.Token{
		AccessToken:  secret,
		TokenType:    session.Token.Kind,
		RefreshToken: session.Token.RefreshSecret,
		Expiry:       session.Token.ExpiresAt,
	}, nil
}
