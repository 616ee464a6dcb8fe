package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/securestore/filestore"
	"github.com/jrsteele09/go-auth-client/transport/httptransport"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "authctl",
	Short: "Manage the local authentication session",
	Long: `authctl drives the client-side authentication session manager:
log in, inspect the session, mint access secrets and log out.

Configuration comes from the environment:
  AUTH_BASE_URL          authentication backend base URL (required)
  AUTH_STORE_PASSPHRASE  passphrase sealing the local token store (required)
  AUTH_SERVICE_NAME      secure store namespace (default "go-auth-client")
  AUTH_STORE_DIR         secure store directory (default "~/.config/go-auth-client")
  AUTH_VALIDATOR         credential validator, "basic" or "strict"
  AUTH_REFRESH_INTERVAL  auto refresh check interval (default 300s)`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd, tokenCmd, refreshCmd)
}

func newService() (*auth.Service, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := newLogger()

	tr, err := httptransport.New(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("create transport: %w", err)
	}

	store, err := filestore.New(cfg.StoreDir, cfg.ServiceName, cfg.StorePassphrase)
	if err != nil {
		return nil, fmt.Errorf("open secure store: %w", err)
	}

	var validator credentials.Validator = credentials.NewBasicValidator()
	if cfg.ValidatorMode == config.ValidatorStrict {
		validator = credentials.NewStrictValidator()
	}

	return auth.NewService(tr, store,
		auth.WithLogger(logger),
		auth.WithValidator(validator),
		auth.WithRefreshInterval(cfg.RefreshInterval),
	)
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func displayAppname() {
	myFigure := figure.NewFigure("authctl", "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
