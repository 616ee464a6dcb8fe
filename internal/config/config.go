// Package config loads client configuration from environment variables.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-auth-client/auth"
)

const (
	baseURLVar         = "AUTH_BASE_URL"
	serviceNameVar     = "AUTH_SERVICE_NAME"
	storeDirVar        = "AUTH_STORE_DIR"
	storePassphraseVar = "AUTH_STORE_PASSPHRASE"
	refreshIntervalVar = "AUTH_REFRESH_INTERVAL"
	validatorVar       = "AUTH_VALIDATOR"
	httpTimeoutVar     = "AUTH_HTTP_TIMEOUT"
)

// Validator modes selectable via AUTH_VALIDATOR.
const (
	ValidatorBasic  = "basic"
	ValidatorStrict = "strict"
)

// Config holds everything needed to assemble the session manager.
type Config struct {
	BaseURL         string
	ServiceName     string
	StoreDir        string
	StorePassphrase string
	RefreshInterval time.Duration
	ValidatorMode   string
	HTTPTimeout     time.Duration
}

// New reads configuration from the environment, applying defaults. Invalid
// values fail here with auth.ErrConfigurationFailure so misconfiguration is
// caught at startup, not at first use.
func New() (Config, error) {
	c := Config{
		BaseURL:         GetEnv(baseURLVar, ""),
		ServiceName:     GetEnv(serviceNameVar, "go-auth-client"),
		StoreDir:        GetEnv(storeDirVar, "~/.config/go-auth-client"),
		StorePassphrase: GetEnv(storePassphraseVar, ""),
		ValidatorMode:   GetEnv(validatorVar, ValidatorBasic),
	}

	if c.BaseURL == "" {
		return Config{}, errors.Wrapf(auth.ErrConfigurationFailure, "%s is required", baseURLVar)
	}
	if c.StorePassphrase == "" {
		return Config{}, errors.Wrapf(auth.ErrConfigurationFailure, "%s is required", storePassphraseVar)
	}
	if c.ValidatorMode != ValidatorBasic && c.ValidatorMode != ValidatorStrict {
		return Config{}, errors.Wrapf(auth.ErrConfigurationFailure, "%s must be %q or %q", validatorVar, ValidatorBasic, ValidatorStrict)
	}

	var err error
	if c.RefreshInterval, err = durationEnv(refreshIntervalVar, 300*time.Second); err != nil {
		return Config{}, err
	}
	if c.HTTPTimeout, err = durationEnv(httpTimeoutVar, 30*time.Second); err != nil {
		return Config{}, err
	}

	return c, nil
}

// GetEnv returns the value of envVar, or defaultValue when unset or empty.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func durationEnv(envVar string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(envVar)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(auth.ErrConfigurationFailure, "%s must be a duration (e.g. \"300s\"): %v", envVar, err)
	}
	if d <= 0 {
		return 0, errors.Wrapf(auth.ErrConfigurationFailure, "%s must be positive", envVar)
	}
	return d, nil
}
