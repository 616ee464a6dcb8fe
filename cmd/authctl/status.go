package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-auth-client/auth"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session and token state",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		status, err := service.TokenStatus(cmd.Context())
		if errors.Is(err, auth.ErrNoActiveSession) {
			fmt.Println("Not logged in.")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("Authenticated:     %t\n", status.IsAuthenticated)
		if status.Subject != "" {
			fmt.Printf("Subject:           %s\n", status.Subject)
		}
		fmt.Printf("Token expires:     %s\n", status.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Printf("Time until expiry: %s\n", status.TimeUntilExpiry.Round(time.Second))
		fmt.Printf("Needs refresh:     %t\n", status.NeedsRefresh)
		return nil
	},
}
