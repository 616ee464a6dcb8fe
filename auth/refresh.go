package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/token"
)

// TokenStatus is a diagnostic snapshot of the current token.
type TokenStatus struct {
	IsAuthenticated bool
	Subject         string
	ExpiresAt       time.Time
	TimeUntilExpiry time.Duration
	NeedsRefresh    bool
}

// RefreshUseCase renews the token. The fetch (Repository.RefreshToken) and
// the persist (Repository.PersistToken) are deliberately separate steps so
// the store sees exactly one write per successful refresh, and only after the
// new token has been validated.
type RefreshUseCase struct {
	repo   *Repository
	logger zerolog.Logger
}

// NewRefreshUseCase initializes a RefreshUseCase.
func NewRefreshUseCase(repo *Repository, logger zerolog.Logger) (*RefreshUseCase, error) {
	if repo == nil {
		return nil, errors.New("[NewRefreshUseCase] repository is required")
	}
	return &RefreshUseCase{repo: repo, logger: logger}, nil
}

// Execute refreshes the token when it is inside the skew window. Returns nil
// without error when no refresh is needed.
func (uc *RefreshUseCase) Execute(ctx context.Context) (*token.Token, error) {
	if !uc.repo.NeedsTokenRefresh(ctx) {
		return nil, nil
	}
	return uc.refresh(ctx)
}

// ForceRefresh refreshes regardless of the skew window.
func (uc *RefreshUseCase) ForceRefresh(ctx context.Context) (*token.Token, error) {
	return uc.refresh(ctx)
}

// Status reports on the current token, failing with ErrNoActiveSession when
// none exists.
func (uc *RefreshUseCase) Status(ctx context.Context) (TokenStatus, error) {
	session, err := uc.repo.CurrentSession(ctx)
	if err != nil {
		return TokenStatus{}, errors.Wrap(err, "[RefreshUseCase.Status] repo.CurrentSession")
	}
	if session == nil {
		return TokenStatus{}, ErrNoActiveSession
	}

	subject := token.SubjectFromJWT(session.Token.AccessSecret)
	if subject == "" && session.Identity != nil {
		subject = session.Identity.ID
	}

	return TokenStatus{
		IsAuthenticated: session.IsValid(),
		Subject:         subject,
		ExpiresAt:       session.Token.ExpiresAt,
		TimeUntilExpiry: session.Token.TimeUntilExpiry(),
		NeedsRefresh:    session.NeedsRefresh(),
	}, nil
}

func (uc *RefreshUseCase) refresh(ctx context.Context) (*token.Token, error) {
	session, err := uc.repo.CurrentSession(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[RefreshUseCase.refresh] repo.CurrentSession")
	}
	if session == nil {
		return nil, ErrNoActiveSession
	}

	refreshSecret := session.Token.RefreshSecret
	if refreshSecret == "" {
		return nil, ErrRefreshTokenExpired
	}
	// When the refresh secret is itself a JWT, reject a dead one locally
	// instead of burning a network round trip.
	if expiry, err := token.ExpiryFromJWT(refreshSecret); err == nil && !token.NowTimeFunc().Before(expiry) {
		return nil, ErrRefreshTokenExpired
	}

	renewed, err := uc.repo.RefreshToken(ctx, refreshSecret)
	if err != nil {
		return nil, errors.Wrap(err, "[RefreshUseCase.refresh] repo.RefreshToken")
	}
	if renewed.IsExpired() {
		return nil, errors.Wrap(ErrTokenInvalid, "server returned an already-expired token")
	}

	if err := uc.repo.PersistToken(ctx, renewed); err != nil {
		return nil, errors.Wrap(err, "[RefreshUseCase.refresh] repo.PersistToken")
	}

	uc.logger.Info().Time("expires_at", renewed.ExpiresAt).Msg("token refresh succeeded")
	return utils.Ptr(renewed), nil
}
