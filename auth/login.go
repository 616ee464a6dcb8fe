package auth

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/sessions"
)

// LoginUseCase gates login behind the injected credential validator. Invalid
// input fails with ValidationError before any network call is made.
type LoginUseCase struct {
	repo      *Repository
	validator credentials.Validator
	logger    zerolog.Logger
}

// NewLoginUseCase initializes a LoginUseCase with required dependencies.
func NewLoginUseCase(repo *Repository, validator credentials.Validator, logger zerolog.Logger) (*LoginUseCase, error) {
	if repo == nil {
		return nil, errors.New("[NewLoginUseCase] repository is required")
	}
	if validator == nil {
		return nil, errors.New("[NewLoginUseCase] validator is required")
	}
	return &LoginUseCase{repo: repo, validator: validator, logger: logger}, nil
}

// Execute validates the credentials and delegates to the repository.
func (uc *LoginUseCase) Execute(ctx context.Context, creds credentials.Credentials) (sessions.Session, error) {
	if result := uc.validator.Validate(creds); !result.IsValid {
		uc.logger.Debug().Strs("errors", result.Errors).Msg("login rejected by validator")
		return sessions.Session{}, &ValidationError{Errors: result.Errors}
	}

	session, err := uc.repo.Login(ctx, creds)
	if err != nil {
		return sessions.Session{}, errors.Wrap(err, "[LoginUseCase.Execute] repo.Login")
	}
	return session, nil
}
