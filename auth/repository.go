package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/identity"
	"github.com/jrsteele09/go-auth-client/securestore"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/transport"
)

// defaultStoreKey is the single namespaced entry the repository persists.
const defaultStoreKey = "session"

// persistedSession is the store payload: the token plus the identity envelope
// cached alongside it when the server returned one.
type persistedSession struct {
	Token        token.Token        `json:"token"`
	Identity     *identity.Identity `json:"identity,omitempty"`
	LastActivity time.Time          `json:"lastActivity"`
}

// Repository is the only component authorized to mutate persisted
// authentication state. All session reads and writes are serialized through
// its mutex; in-flight refreshes are deduplicated so concurrent callers share
// the outcome of a single transport call.
type Repository struct {
	transport transport.Transport
	store     securestore.Store
	logger    zerolog.Logger
	storeKey  string

	mu     sync.Mutex
	cached *sessions.Session

	refreshGroup singleflight.Group
}

// RepositoryOption defines a function type to modify the Repository instance.
type RepositoryOption func(*Repository)

// WithStoreKey overrides the store entry key.
func WithStoreKey(key string) RepositoryOption {
	return func(r *Repository) {
		r.storeKey = key
	}
}

// NewRepository initializes a Repository with its required collaborators.
func NewRepository(tr transport.Transport, store securestore.Store, logger zerolog.Logger, options ...RepositoryOption) (*Repository, error) {
	if tr == nil {
		return nil, errors.New("[NewRepository] transport is required")
	}
	if store == nil {
		return nil, errors.New("[NewRepository] secure store is required")
	}

	repo := &Repository{
		transport: tr,
		store:     store,
		logger:    logger,
		storeKey:  defaultStoreKey,
	}
	for _, opt := range options {
		opt(repo)
	}
	return repo, nil
}

// Login exchanges credentials for a session and persists its token. On any
// failure no store mutation occurs. The credentials are not retained beyond
// this call.
func (r *Repository) Login(ctx context.Context, creds credentials.Credentials) (sessions.Session, error) {
	body, err := json.Marshal(loginRequest{Identity: creds.Identity, Secret: creds.Secret})
	if err != nil {
		return sessions.Session{}, errors.Wrap(ErrUnknown, err.Error())
	}

	resp, err := r.transport.Send(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   loginPath,
		Body:   body,
	})
	if err != nil {
		return sessions.Session{}, errors.Wrap(mapTransportFailure(err), "[Repository.Login] transport.Send")
	}
	if !resp.Success() {
		return sessions.Session{}, mapResponseFailure(opLogin, resp.StatusCode)
	}

	tok, id, err := decodeSessionResponse(resp.Body, "", token.NowTimeFunc())
	if err != nil {
		return sessions.Session{}, errors.Wrap(err, "[Repository.Login] decode response")
	}
	if id != nil && !id.CanAccess() {
		return sessions.Session{}, errors.Wrap(ErrUserInactive, "[Repository.Login] account deactivated")
	}

	session := sessions.New(id, tok)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.persistLocked(ctx, session); err != nil {
		return sessions.Session{}, errors.Wrap(err, "[Repository.Login] persist session")
	}

	r.logger.Info().Str("identity", creds.Identity).Time("expires_at", tok.ExpiresAt).Msg("login succeeded")
	return session.Snapshot(), nil
}

// RefreshToken exchanges a refresh secret for a new token. It deliberately
// does not persist the result: persistence stays with the caller so the
// repository's write path remains singular and auditable.
func (r *Repository) RefreshToken(ctx context.Context, refreshSecret string) (token.Token, error) {
	tok, _, err := r.sendRefresh(ctx, refreshSecret)
	return tok, err
}

// Logout notifies the server on a best-effort basis and unconditionally
// clears local state. A server-side failure is logged, never propagated;
// local cleanup is the user-visible contract. The notify runs outside the
// mutex so session reads never wait on the logout endpoint.
func (r *Repository) Logout(ctx context.Context) error {
	r.mu.Lock()
	session, err := r.currentLocked(ctx)
	r.mu.Unlock()
	if err != nil {
		r.logger.Warn().Err(err).Msg("logout: could not read session for server notify")
	}
	if session != nil {
		r.notifyServerLogout(ctx, session.Token)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearLocked(ctx)
}

// ClearSession removes local session state without contacting the server.
// Used by forced and emergency logout paths.
func (r *Repository) ClearSession(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearLocked(ctx)
}

// CurrentSession returns a snapshot of the persisted session, or nil when
// none exists. The snapshot is a copy; mutating it does not affect
// repository state.
func (r *Repository) CurrentSession(ctx context.Context) (*sessions.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.currentLocked(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	snapshot := session.Snapshot()
	return &snapshot, nil
}

// IsAuthenticated reports whether the store holds a non-expired token.
// Absence is answered by a plain existence check; only a present entry is
// read and decrypted.
func (r *Repository) IsAuthenticated(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached == nil {
		ok, err := r.store.Has(ctx, r.storeKey)
		if err != nil || !ok {
			return false
		}
	}

	session, err := r.currentLocked(ctx)
	return err == nil && session != nil && !session.Token.IsExpired()
}

// AccessSecret returns the current access secret, transparently refreshing
// first when the token is inside the skew window. A failed refresh clears
// the store and fails with ErrTokenExpired rather than returning a stale
// secret.
func (r *Repository) AccessSecret(ctx context.Context) (string, error) {
	r.mu.Lock()
	session, err := r.currentLocked(ctx)
	if err != nil {
		r.mu.Unlock()
		return "", err
	}
	if session == nil {
		r.mu.Unlock()
		return "", ErrNoActiveSession
	}
	if !session.Token.WillExpireSoon() {
		secret := session.Token.AccessSecret
		r.mu.Unlock()
		return secret, nil
	}
	r.mu.Unlock()

	tok, err := r.refreshAndPersist(ctx)
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			return "", ErrNoActiveSession
		}
		r.logger.Warn().Err(err).Msg("transparent refresh failed, clearing session")
		if clearErr := r.ClearSession(ctx); clearErr != nil {
			r.logger.Error().Err(clearErr).Msg("failed to clear session after refresh failure")
		}
		return "", errors.Wrap(ErrTokenExpired, err.Error())
	}
	return tok.AccessSecret, nil
}

// NeedsTokenRefresh reports whether a session exists whose token is inside
// the skew window.
func (r *Repository) NeedsTokenRefresh(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.currentLocked(ctx)
	return err == nil && session != nil && session.NeedsRefresh()
}

// RefreshTokenIfNeeded refreshes and persists when the token is inside the
// skew window. Returns true when a refresh happened.
func (r *Repository) RefreshTokenIfNeeded(ctx context.Context) (bool, error) {
	if !r.NeedsTokenRefresh(ctx) {
		return false, nil
	}
	if _, err := r.refreshAndPersist(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// PersistToken writes a renewed token to the store, retaining the cached
// identity of the existing session. This is the single write path used by the
// refresh use case after it has validated the new token. Renewal presupposes
// a session: when none exists anymore the write is refused with
// ErrNoActiveSession, so a logout that raced the renewal sticks.
func (r *Repository) PersistToken(ctx context.Context, tok token.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.currentLocked(ctx)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrNoActiveSession
	}
	return r.persistLocked(ctx, current.WithToken(tok))
}

// refreshAndPersist performs a single-flight refresh: concurrent callers
// share the outcome of one transport call instead of triggering a second
// request.
func (r *Repository) refreshAndPersist(ctx context.Context) (token.Token, error) {
	result, err, _ := r.refreshGroup.Do("refresh", func() (interface{}, error) {
		r.mu.Lock()
		session, err := r.currentLocked(ctx)
		if err != nil {
			r.mu.Unlock()
			return token.Token{}, err
		}
		if session == nil {
			r.mu.Unlock()
			return token.Token{}, ErrNoActiveSession
		}
		// Another caller may have completed a refresh while this one waited.
		if !session.Token.WillExpireSoon() {
			tok := session.Token
			r.mu.Unlock()
			return tok, nil
		}
		refreshSecret := session.Token.RefreshSecret
		r.mu.Unlock()

		if refreshSecret == "" {
			return token.Token{}, ErrRefreshTokenExpired
		}

		tok, id, err := r.sendRefresh(ctx, refreshSecret)
		if err != nil {
			return token.Token{}, err
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		current, err := r.currentLocked(ctx)
		if err != nil {
			return token.Token{}, err
		}
		// A logout that completed while the request was in flight wins;
		// never recreate a session from a refresh result.
		if current == nil {
			return token.Token{}, ErrNoActiveSession
		}
		renewed := current.WithToken(tok)
		if id != nil {
			renewed = sessions.New(id, tok)
		}
		if err := r.persistLocked(ctx, renewed); err != nil {
			return token.Token{}, err
		}
		r.logger.Debug().Time("expires_at", tok.ExpiresAt).Msg("token refreshed")
		return tok, nil
	})
	if err != nil {
		return token.Token{}, err
	}
	return result.(token.Token), nil
}

// sendRefresh performs the refresh exchange without persisting.
func (r *Repository) sendRefresh(ctx context.Context, refreshSecret string) (token.Token, *identity.Identity, error) {
	body, err := json.Marshal(refreshRequest{RefreshToken: refreshSecret})
	if err != nil {
		return token.Token{}, nil, errors.Wrap(ErrUnknown, err.Error())
	}

	resp, err := r.transport.Send(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   refreshPath,
		Body:   body,
	})
	if err != nil {
		return token.Token{}, nil, errors.Wrap(mapTransportFailure(err), "[Repository.sendRefresh] transport.Send")
	}
	if !resp.Success() {
		return token.Token{}, nil, mapResponseFailure(opRefresh, resp.StatusCode)
	}

	tok, id, err := decodeSessionResponse(resp.Body, refreshSecret, token.NowTimeFunc())
	if err != nil {
		return token.Token{}, nil, errors.Wrap(err, "[Repository.sendRefresh] decode response")
	}
	return tok, id, nil
}

func (r *Repository) notifyServerLogout(ctx context.Context, tok token.Token) {
	resp, err := r.transport.Send(ctx, transport.Request{
		Method:  http.MethodPost,
		Path:    logoutPath,
		Headers: map[string]string{"Authorization": tok.Kind + " " + tok.AccessSecret},
	})
	switch {
	case err != nil:
		r.logger.Warn().Err(mapTransportFailure(err)).Msg("server logout notify failed")
	case !resp.Success():
		r.logger.Warn().Err(mapResponseFailure(opLogout, resp.StatusCode)).Msg("server rejected logout notify")
	}
}

// currentLocked returns the in-memory session, loading it from the store on
// first access. Callers must hold r.mu.
func (r *Repository) currentLocked(ctx context.Context) (*sessions.Session, error) {
	if r.cached != nil {
		return r.cached, nil
	}

	data, err := r.store.Get(ctx, r.storeKey)
	if err != nil {
		if errors.Is(err, securestore.ErrNotFound) {
			return nil, nil
		}
		return nil, mapStoreFailure(err)
	}

	var persisted persistedSession
	if err := json.Unmarshal(data, &persisted); err != nil {
		return nil, errors.Wrap(ErrStorageFailure, err.Error())
	}

	r.cached = &sessions.Session{
		Identity:     persisted.Identity,
		Token:        persisted.Token,
		LastActivity: persisted.LastActivity,
	}
	return r.cached, nil
}

// persistLocked writes the session to the store and updates the in-memory
// snapshot. Callers must hold r.mu.
func (r *Repository) persistLocked(ctx context.Context, session sessions.Session) error {
	data, err := json.Marshal(persistedSession{
		Token:        session.Token,
		Identity:     session.Identity,
		LastActivity: session.LastActivity,
	})
	if err != nil {
		return errors.Wrap(ErrStorageFailure, err.Error())
	}
	if err := r.store.Put(ctx, r.storeKey, data); err != nil {
		return mapStoreFailure(err)
	}
	r.cached = &session
	return nil
}

// clearLocked removes persisted and cached state. Callers must hold r.mu.
func (r *Repository) clearLocked(ctx context.Context) error {
	r.cached = nil
	if err := r.store.Delete(ctx, r.storeKey); err != nil {
		return mapStoreFailure(err)
	}
	r.logger.Info().Msg("local session cleared")
	return nil
}
