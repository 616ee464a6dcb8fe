package auth

import (
	"errors"
	"fmt"
	"strings"
)

// Domain error taxonomy. Transport and storage failures are mapped into this
// closed set at the repository boundary; callers never see raw collaborator
// errors. Match with errors.Is; ServerError and ValidationError additionally
// support errors.As for their payloads.
var (
	// Transport-mapped errors
	ErrNetworkFailure = errors.New("network failure")
	ErrTimeout        = errors.New("request timed out")
	ErrServerFailure  = errors.New("server failure")

	// Credential and token errors
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("token invalid")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrValidationFailed    = errors.New("validation failed")

	// Storage errors
	ErrStorageFailure    = errors.New("storage failure")
	ErrEncryptionFailure = errors.New("encryption failure")
	ErrDecryptionFailure = errors.New("decryption failure")

	// Session errors
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionExpired  = errors.New("session expired")
	ErrUserInactive    = errors.New("user account inactive")

	// General errors
	ErrDecodingFailure      = errors.New("response decoding failed")
	ErrConfigurationFailure = errors.New("invalid configuration")
	ErrUnknown              = errors.New("unknown failure")
)

// ServerError carries the HTTP status of a 429 or 5xx backend answer.
// errors.Is(err, ErrServerFailure) matches it.
type ServerError struct {
	Code int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server failure (status %d)", e.Code)
}

// Is lets the typed error satisfy the ErrServerFailure sentinel.
func (e *ServerError) Is(target error) bool {
	return target == ErrServerFailure
}

// ValidationError carries the per-rule messages produced by a credential
// validator. errors.Is(err, ErrValidationFailed) matches it.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// Is lets the typed error satisfy the ErrValidationFailed sentinel.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
