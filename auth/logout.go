package auth

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// LogoutReason records why a session ended. Carried into the logout audit
// log; never sent to the server.
type LogoutReason string

const (
	LogoutUserInitiated      LogoutReason = "user_initiated"
	LogoutTokenExpired       LogoutReason = "token_expired"
	LogoutServerError        LogoutReason = "server_error"
	LogoutSecurityViolation  LogoutReason = "security_violation"
	LogoutAccountDeactivated LogoutReason = "account_deactivated"
	LogoutSessionTimeout     LogoutReason = "session_timeout"
	LogoutForced             LogoutReason = "forced"
)

// LogoutUseCase ends the session. Server notification is best-effort: a
// failure there is a warning, not an error, because local cleanup must
// always proceed.
type LogoutUseCase struct {
	repo   *Repository
	logger zerolog.Logger
}

// NewLogoutUseCase initializes a LogoutUseCase.
func NewLogoutUseCase(repo *Repository, logger zerolog.Logger) (*LogoutUseCase, error) {
	if repo == nil {
		return nil, errors.New("[NewLogoutUseCase] repository is required")
	}
	return &LogoutUseCase{repo: repo, logger: logger}, nil
}

// Execute notifies the server (best effort) and clears local state. Success
// is reported once local state is cleared, independent of server
// reachability.
func (uc *LogoutUseCase) Execute(ctx context.Context, reason LogoutReason) error {
	uc.logDeparture(ctx, reason)
	if err := uc.repo.Logout(ctx); err != nil {
		return errors.Wrap(err, "[LogoutUseCase.Execute] repo.Logout")
	}
	uc.logger.Info().Str("reason", string(reason)).Msg("logout complete")
	return nil
}

// ExecuteSilent clears local state without contacting the server. Used by
// emergency and forced paths where waiting on the network is unacceptable.
func (uc *LogoutUseCase) ExecuteSilent(ctx context.Context, reason LogoutReason) error {
	uc.logDeparture(ctx, reason)
	if err := uc.repo.ClearSession(ctx); err != nil {
		return errors.Wrap(err, "[LogoutUseCase.ExecuteSilent] repo.ClearSession")
	}
	uc.logger.Info().Str("reason", string(reason)).Msg("silent logout complete")
	return nil
}

// logDeparture records session diagnostics before state is torn down.
func (uc *LogoutUseCase) logDeparture(ctx context.Context, reason LogoutReason) {
	event := uc.logger.Info().Str("reason", string(reason))
	if session, err := uc.repo.CurrentSession(ctx); err == nil && session != nil {
		event = event.Time("token_expires_at", session.Token.ExpiresAt).Bool("session_valid", session.IsValid())
		if session.Identity != nil {
			event = event.Str("identity", session.Identity.ID)
		}
	}
	event.Msg("logging out")
}
