package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/securestore/storefake"
	"github.com/jrsteele09/go-auth-client/transport/transportfake"
)

type serviceFixture struct {
	transport *transportfake.FakeTransport
	store     *storefake.FakeStore
	service   *auth.Service
}

func setupService(t *testing.T, steps ...transportfake.Step) *serviceFixture {
	t.Helper()

	tr := transportfake.NewFakeTransport(steps...)
	store := storefake.NewFakeStore()
	svc, err := auth.NewService(tr, store, auth.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	return &serviceFixture{transport: tr, store: store, service: svc}
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	_, err := auth.NewService(nil, storefake.NewFakeStore())
	require.Error(t, err)

	_, err = auth.NewService(transportfake.NewFakeTransport(), nil)
	require.Error(t, err)
}

func TestServiceFullLifecycle(t *testing.T) {
	f := setupService(t,
		transportfake.RespondWith(200, loginOKBody),
		transportfake.RespondWith(204, ``),
	)
	ctx := context.Background()

	assert.False(t, f.service.IsAuthenticated(ctx))

	session, err := f.service.Login(ctx, credentials.New("user@example.com", "Passw0rd1"))
	require.NoError(t, err)
	assert.True(t, session.IsValid())
	assert.True(t, f.service.IsAuthenticated(ctx))

	secret, err := f.service.AccessSecret(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", secret)

	status, err := f.service.TokenStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.IsAuthenticated)
	assert.False(t, status.NeedsRefresh)

	require.NoError(t, f.service.Logout(ctx, auth.LogoutUserInitiated))
	assert.False(t, f.service.IsAuthenticated(ctx))
	assert.Equal(t, 0, f.store.Len())
	assert.Equal(t, 1, f.transport.CallsTo(loginPath))
	assert.Equal(t, 1, f.transport.CallsTo(logoutPath))
}

func TestServiceLoginValidationGate(t *testing.T) {
	f := setupService(t)

	_, err := f.service.Login(context.Background(), credentials.New("not-an-address", "pw"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, auth.ErrValidationFailed))
	assert.Equal(t, 0, f.transport.CallCount())
}

func TestServiceStrictValidatorOption(t *testing.T) {
	tr := transportfake.NewFakeTransport()
	svc, err := auth.NewService(tr, storefake.NewFakeStore(),
		auth.WithValidator(credentials.NewStrictValidator()),
	)
	require.NoError(t, err)

	// Passes the basic rules but is too weak for the strict validator.
	_, err = svc.Login(context.Background(), credentials.New("user@example.com", "short"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, auth.ErrValidationFailed))
	assert.Equal(t, 0, tr.CallCount())
}

func TestServiceSilentLogout(t *testing.T) {
	f := setupService(t, transportfake.RespondWith(200, loginOKBody))
	ctx := context.Background()

	_, err := f.service.Login(ctx, credentials.New("user@example.com", "Passw0rd1"))
	require.NoError(t, err)

	require.NoError(t, f.service.SilentLogout(ctx, auth.LogoutSessionTimeout))
	assert.False(t, f.service.IsAuthenticated(ctx))
	assert.Equal(t, 0, f.transport.CallsTo(logoutPath))
}

func TestServiceForceRefreshToken(t *testing.T) {
	f := setupService(t,
		transportfake.RespondWith(200, loginOKBody),
		transportfake.RespondWith(200, `{"token":{"access":"A2","refresh":"R2","expiresIn":3600}}`),
	)
	ctx := context.Background()

	_, err := f.service.Login(ctx, credentials.New("user@example.com", "Passw0rd1"))
	require.NoError(t, err)

	renewed, err := f.service.ForceRefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A2", renewed.AccessSecret)

	current, err := f.service.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "A2", current.Token.AccessSecret)
}

func TestServiceRefreshTokenIfNeededNoOpWhenFresh(t *testing.T) {
	f := setupService(t, transportfake.RespondWith(200, loginOKBody))
	ctx := context.Background()

	_, err := f.service.Login(ctx, credentials.New("user@example.com", "Passw0rd1"))
	require.NoError(t, err)

	renewed, err := f.service.RefreshTokenIfNeeded(ctx)
	require.NoError(t, err)
	assert.Nil(t, renewed)
	assert.Equal(t, 0, f.transport.CallsTo(refreshPath))
}

func TestServiceAutoRefreshStartStop(t *testing.T) {
	f := setupService(t, transportfake.RespondWith(200, loginOKBody))
	ctx := context.Background()

	_, err := f.service.Login(ctx, credentials.New("user@example.com", "Passw0rd1"))
	require.NoError(t, err)

	f.service.StartAutoRefresh()
	defer f.service.StopAutoRefresh()

	// Fresh token, so the forced check is a no-op against the network.
	require.NoError(t, f.service.ForceCheckAndRefresh(ctx))
	assert.Equal(t, 0, f.transport.CallsTo(refreshPath))

	f.service.StopAutoRefresh()
	f.service.StopAutoRefresh()
}

func TestTokenSourceExposesManagedToken(t *testing.T) {
	f := setupService(t, transportfake.RespondWith(200, loginOKBody))
	ctx := context.Background()

	_, err := f.service.Login(ctx, credentials.New("user@example.com", "Passw0rd1"))
	require.NoError(t, err)

	ts := f.service.TokenSource(ctx)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "A", tok.AccessToken)
	assert.Equal(t, "R", tok.RefreshToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.True(t, tok.Expiry.After(time.Now().Add(55*time.Minute)))
	assert.True(t, tok.Valid())
}

func TestTokenSourceWithoutSession(t *testing.T) {
	f := setupService(t)

	_, err := f.service.TokenSource(context.Background()).Token()
	require.Error(t, err)
	assert.True(t, errors.Is(err, auth.ErrNoActiveSession))
}
