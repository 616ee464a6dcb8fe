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
	"github.com/jrsteele09/go-auth-client/transport/transportfake"
)

type useCaseFixture struct {
	*testFixture
	login   *auth.LoginUseCase
	logout  *auth.LogoutUseCase
	refresh *auth.RefreshUseCase
}

func setupUseCases(t *testing.T, steps ...transportfake.Step) *useCaseFixture {
	t.Helper()

	f := setupRepo(t, steps...)

	loginUC, err := auth.NewLoginUseCase(f.repo, credentials.NewBasicValidator(), zerolog.Nop())
	require.NoError(t, err)
	logoutUC, err := auth.NewLogoutUseCase(f.repo, zerolog.Nop())
	require.NoError(t, err)
	refreshUC, err := auth.NewRefreshUseCase(f.repo, zerolog.Nop())
	require.NoError(t, err)

	return &useCaseFixture{testFixture: f, login: loginUC, logout: logoutUC, refresh: refreshUC}
}

func TestLoginUseCaseRejectsInvalidInputWithoutNetwork(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		secret   string
	}{
		{name: "empty identity", identity: "", secret: "Passw0rd1"},
		{name: "empty secret", identity: "user@example.com", secret: ""},
		{name: "malformed identity", identity: "nonsense", secret: "Passw0rd1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupUseCases(t)

			_, err := f.login.Execute(context.Background(), credentials.New(tt.identity, tt.secret))
			require.Error(t, err)
			assert.True(t, errors.Is(err, auth.ErrValidationFailed))

			var validationErr *auth.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.NotEmpty(t, validationErr.Errors)
			assert.Equal(t, 0, f.transport.CallCount(), "zero transport calls on invalid input")
		})
	}
}

func TestLoginUseCaseDelegatesValidInput(t *testing.T) {
	f := setupUseCases(t, transportfake.RespondWith(200, loginOKBody))

	session, err := f.login.Execute(context.Background(), credentials.New("user@example.com", "Passw0rd1"))
	require.NoError(t, err)
	assert.True(t, session.IsValid())
	assert.Equal(t, 1, f.transport.CallsTo(loginPath))
}

func TestLogoutUseCaseReportsSuccessDespiteServerFailure(t *testing.T) {
	f := setupUseCases(t, transportfake.RespondWith(500, `{}`))
	f.seedToken(t, "A", "R", time.Hour)

	require.NoError(t, f.logout.Execute(context.Background(), auth.LogoutUserInitiated))
	assert.Equal(t, 0, f.store.Len())
}

func TestSilentLogoutSkipsServerEntirely(t *testing.T) {
	f := setupUseCases(t)
	f.seedToken(t, "A", "R", time.Hour)

	require.NoError(t, f.logout.ExecuteSilent(context.Background(), auth.LogoutForced))
	assert.Equal(t, 0, f.transport.CallCount(), "silent logout must not touch the network")
	assert.Equal(t, 0, f.store.Len())
}

func TestRefreshUseCaseNoOpWhenFresh(t *testing.T) {
	f := setupUseCases(t)
	f.seedToken(t, "A", "R", time.Hour)

	renewed, err := f.refresh.Execute(context.Background())
	require.NoError(t, err)
	assert.Nil(t, renewed)
	assert.Equal(t, 0, f.transport.CallCount())
}

func TestRefreshUseCaseRefreshesAndPersists(t *testing.T) {
	f := setupUseCases(t, transportfake.RespondWith(200, `{"token":{"access":"A2","refresh":"R2","expiresIn":3600}}`))
	f.seedToken(t, "A", "R", time.Minute)

	renewed, err := f.refresh.Execute(context.Background())
	require.NoError(t, err)
	require.NotNil(t, renewed)
	assert.Equal(t, "A2", renewed.AccessSecret)
	assert.Equal(t, 2, f.store.PutCalls, "seed write plus exactly one refresh write")

	current, err := f.repo.CurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "A2", current.Token.AccessSecret)
}

func TestForceRefreshBypassesNeedCheck(t *testing.T) {
	f := setupUseCases(t, transportfake.RespondWith(200, `{"token":{"access":"A2","refresh":"R2","expiresIn":3600}}`))
	f.seedToken(t, "A", "R", time.Hour) // fresh, Execute would be a no-op

	renewed, err := f.refresh.ForceRefresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, renewed)
	assert.Equal(t, "A2", renewed.AccessSecret)
	assert.Equal(t, 1, f.transport.CallsTo(refreshPath))
}

func TestForceRefreshWithoutSession(t *testing.T) {
	f := setupUseCases(t)

	_, err := f.refresh.ForceRefresh(context.Background())
	assert.True(t, errors.Is(err, auth.ErrNoActiveSession))
}

func TestRefreshUseCaseRejectsMissingRefreshSecret(t *testing.T) {
	f := setupUseCases(t)
	f.seedToken(t, "A", "", time.Minute)

	_, err := f.refresh.ForceRefresh(context.Background())
	assert.True(t, errors.Is(err, auth.ErrRefreshTokenExpired))
	assert.Equal(t, 0, f.transport.CallCount())
}

func TestTokenStatus(t *testing.T) {
	f := setupUseCases(t)
	f.seedToken(t, "A", "R", time.Hour)

	status, err := f.refresh.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.IsAuthenticated)
	assert.False(t, status.NeedsRefresh)
	assert.Greater(t, status.TimeUntilExpiry, 50*time.Minute)
}

func TestTokenStatusWithoutSession(t *testing.T) {
	f := setupUseCases(t)

	_, err := f.refresh.Status(context.Background())
	assert.True(t, errors.Is(err, auth.ErrNoActiveSession))
}

func TestLogoutLocalClearFailureSurfacesStorageError(t *testing.T) {
	f := setupUseCases(t, transportfake.RespondWith(204, ``))
	f.seedToken(t, "A", "R", time.Hour)
	f.store.DeleteErr = errors.New("permission denied")

	err := f.logout.Execute(context.Background(), auth.LogoutUserInitiated)
	require.Error(t, err)
	assert.True(t, errors.Is(err, auth.ErrStorageFailure))
}
