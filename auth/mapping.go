package auth

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-auth-client/securestore"
	"github.com/jrsteele09/go-auth-client/transport"
)

// operation selects the 401/403 target of the transport error mapping table.
// Every other row of the table is identical across call sites.
type operation int

const (
	opLogin operation = iota
	opRefresh
	opLogout
)

// mapTransportFailure maps a transport-level failure (the request never
// produced a response) into the domain taxonomy.
func mapTransportFailure(err error) error {
	switch {
	case errors.Is(err, transport.ErrTimeout):
		return errors.Wrap(ErrTimeout, err.Error())
	case errors.Is(err, transport.ErrNoConnectivity), errors.Is(err, transport.ErrCancelled):
		return errors.Wrap(ErrNetworkFailure, err.Error())
	default:
		return errors.Wrap(ErrUnknown, err.Error())
	}
}

// mapResponseFailure maps a non-2xx backend response into the domain
// taxonomy.
func mapResponseFailure(op operation, statusCode int) error {
	switch {
	case statusCode == http.StatusUnauthorized:
		switch op {
		case opRefresh:
			return ErrRefreshTokenExpired
		case opLogout:
			return ErrTokenInvalid
		default:
			return ErrInvalidCredentials
		}
	case statusCode == http.StatusForbidden:
		if op == opRefresh || op == opLogout {
			return ErrTokenInvalid
		}
		return ErrNotAuthorized
	case statusCode == http.StatusTooManyRequests || statusCode >= 500:
		return &ServerError{Code: statusCode}
	default:
		return errors.Wrapf(ErrUnknown, "unexpected status %d", statusCode)
	}
}

// mapStoreFailure maps a secure-store failure into the domain taxonomy.
func mapStoreFailure(err error) error {
	switch {
	case errors.Is(err, securestore.ErrEncryptFailed):
		return errors.Wrap(ErrEncryptionFailure, err.Error())
	case errors.Is(err, securestore.ErrDecryptFailed):
		return errors.Wrap(ErrDecryptionFailure, err.Error())
	default:
		return errors.Wrap(ErrStorageFailure, err.Error())
	}
}
