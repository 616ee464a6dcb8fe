// Package securestore defines the contract an encrypted key-value store must
// satisfy to hold the persisted token. The core depends on this interface,
// never on a concrete store.
package securestore

import (
	"context"
	"errors"
)

// Storage error kinds. Implementations must wrap their failures so that
// errors.Is matches one of these.
var (
	ErrWriteFailed   = errors.New("secure store write failed")
	ErrReadFailed    = errors.New("secure store read failed")
	ErrDeleteFailed  = errors.New("secure store delete failed")
	ErrEncryptFailed = errors.New("secure store encryption failed")
	ErrDecryptFailed = errors.New("secure store decryption failed")
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("secure store key not found")

// Store is an encrypted-at-rest key-value store scoped to a caller-supplied
// namespace (service identifier). Values must be opaque at rest.
type Store interface {
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Get retrieves the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the value stored under key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error

	// Has reports whether a value exists under key.
	Has(ctx context.Context, key string) (bool, error)
}
