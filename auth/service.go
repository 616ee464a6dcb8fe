package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-auth-client/auth/refresher"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/securestore"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/transport"
)

// Service is the single public entry point: it composes the repository, the
// use cases and the auto-refresh coordinator behind the minimal API
// application code needs. Construct one per process and hand it around by
// reference; there is no package-level instance.
type Service struct {
	repo      *Repository
	login     *LoginUseCase
	logout    *LogoutUseCase
	refresh   *RefreshUseCase
	refresher *refresher.Coordinator
	logger    zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	logger          zerolog.Logger
	validator       credentials.Validator
	refreshInterval time.Duration
	storeKey        string
}

// WithLogger sets the logger used across the service.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(c *serviceConfig) { c.logger = logger }
}

// WithValidator selects the credential validator. Defaults to
// credentials.NewBasicValidator.
func WithValidator(v credentials.Validator) ServiceOption {
	return func(c *serviceConfig) { c.validator = v }
}

// WithRefreshInterval overrides the auto-refresh check interval.
func WithRefreshInterval(interval time.Duration) ServiceOption {
	return func(c *serviceConfig) { c.refreshInterval = interval }
}

// WithServiceStoreKey overrides the secure-store entry key.
func WithServiceStoreKey(key string) ServiceOption {
	return func(c *serviceConfig) { c.storeKey = key }
}

// NewService wires the full session manager from its two external
// collaborators.
func NewService(tr transport.Transport, store securestore.Store, options ...ServiceOption) (*Service, error) {
	cfg := serviceConfig{
		logger:          zerolog.Nop(),
		validator:       credentials.NewBasicValidator(),
		refreshInterval: refresher.DefaultInterval,
		storeKey:        defaultStoreKey,
	}
	for _, opt := range options {
		opt(&cfg)
	}

	repo, err := NewRepository(tr, store, cfg.logger, WithStoreKey(cfg.storeKey))
	if err != nil {
		return nil, errors.Wrap(err, "[NewService] NewRepository")
	}

	loginUC, err := NewLoginUseCase(repo, cfg.validator, cfg.logger)
	if err != nil {
		return nil, errors.Wrap(err, "[NewService] NewLoginUseCase")
	}
	logoutUC, err := NewLogoutUseCase(repo, cfg.logger)
	if err != nil {
		return nil, errors.Wrap(err, "[NewService] NewLogoutUseCase")
	}
	refreshUC, err := NewRefreshUseCase(repo, cfg.logger)
	if err != nil {
		return nil, errors.Wrap(err, "[NewService] NewRefreshUseCase")
	}

	coordinator, err := refresher.New(func(ctx context.Context) error {
		_, err := refreshUC.Execute(ctx)
		return err
	}, cfg.logger, refresher.WithInterval(cfg.refreshInterval))
	if err != nil {
		return nil, errors.Wrap(err, "[NewService] refresher.New")
	}

	return &Service{
		repo:      repo,
		login:     loginUC,
		logout:    logoutUC,
		refresh:   refreshUC,
		refresher: coordinator,
		logger:    cfg.logger,
	}, nil
}

// Login authenticates with the given credentials and returns the new
// session.
func (s *Service) Login(ctx context.Context, creds credentials.Credentials) (sessions.Session, error) {
	return s.login.Execute(ctx, creds)
}

// Logout ends the session: best-effort server notify, unconditional local
// cleanup.
func (s *Service) Logout(ctx context.Context, reason LogoutReason) error {
	return s.logout.Execute(ctx, reason)
}

// SilentLogout clears local session state without contacting the server.
func (s *Service) SilentLogout(ctx context.Context, reason LogoutReason) error {
	return s.logout.ExecuteSilent(ctx, reason)
}

// IsAuthenticated reports whether a non-expired token is held.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	return s.repo.IsAuthenticated(ctx)
}

// CurrentSession returns a snapshot of the current session, or nil.
func (s *Service) CurrentSession(ctx context.Context) (*sessions.Session, error) {
	return s.repo.CurrentSession(ctx)
}

// AccessSecret returns a usable access secret, refreshing transparently when
// the token is inside the skew window.
func (s *Service) AccessSecret(ctx context.Context) (string, error) {
	return s.repo.AccessSecret(ctx)
}

// RefreshTokenIfNeeded refreshes when the skew window has been entered.
// Returns nil when no refresh was needed.
func (s *Service) RefreshTokenIfNeeded(ctx context.Context) (*token.Token, error) {
	return s.refresh.Execute(ctx)
}

// ForceRefreshToken refreshes regardless of the skew window.
func (s *Service) ForceRefreshToken(ctx context.Context) (token.Token, error) {
	renewed, err := s.refresh.ForceRefresh(ctx)
	if err != nil {
		return token.Token{}, err
	}
	return *renewed, nil
}

// TokenStatus reports on the current token, failing with ErrNoActiveSession
// when none exists.
func (s *Service) TokenStatus(ctx context.Context) (TokenStatus, error) {
	return s.refresh.Status(ctx)
}

// StartAutoRefresh arms the background refresh timer. Idempotent.
func (s *Service) StartAutoRefresh() {
	s.refresher.Start()
}

// StopAutoRefresh disarms the background refresh timer.
func (s *Service) StopAutoRefresh() {
	s.refresher.Stop()
}

// ForceCheckAndRefresh runs one refresh check synchronously, independent of
// the timer.
func (s *Service) ForceCheckAndRefresh(ctx context.Context) error {
	return s.refresher.ForceCheckAndRefresh(ctx)
}
