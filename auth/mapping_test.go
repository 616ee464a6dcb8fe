package auth_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/transport"
	"github.com/jrsteele09/go-auth-client/transport/transportfake"
)

// The transport→domain mapping table must be applied identically by every
// call site; only the 401/403 target differs per operation. The refresh rows
// are exercised here, the login rows in repository_test.go.
func TestRefreshErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		step    transportfake.Step
		wantErr error
	}{
		{name: "401 refresh token expired", step: transportfake.RespondWith(401, `{}`), wantErr: auth.ErrRefreshTokenExpired},
		{name: "403 token invalid", step: transportfake.RespondWith(403, `{}`), wantErr: auth.ErrTokenInvalid},
		{name: "429 server failure", step: transportfake.RespondWith(429, `{}`), wantErr: auth.ErrServerFailure},
		{name: "500 server failure", step: transportfake.RespondWith(500, `{}`), wantErr: auth.ErrServerFailure},
		{name: "404 unknown", step: transportfake.RespondWith(404, `{}`), wantErr: auth.ErrUnknown},
		{name: "no connectivity", step: transportfake.FailWith(transport.ErrNoConnectivity), wantErr: auth.ErrNetworkFailure},
		{name: "cancelled maps to network failure", step: transportfake.FailWith(transport.ErrCancelled), wantErr: auth.ErrNetworkFailure},
		{name: "timeout", step: transportfake.FailWith(transport.ErrTimeout), wantErr: auth.ErrTimeout},
		{name: "decode failure", step: transportfake.RespondWith(200, `garbage`), wantErr: auth.ErrDecodingFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupRepo(t, tt.step)

			_, err := f.repo.RefreshToken(context.Background(), "R")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}
