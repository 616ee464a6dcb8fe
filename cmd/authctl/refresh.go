package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var refreshForce bool

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Renew the access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		if refreshForce {
			tok, err := service.ForceRefreshToken(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Token refreshed, expires at %s.\n", tok.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
			return nil
		}

		tok, err := service.RefreshTokenIfNeeded(cmd.Context())
		if err != nil {
			return err
		}
		if tok == nil {
			fmt.Println("Token still fresh, nothing to do.")
			return nil
		}
		fmt.Printf("Token refreshed, expires at %s.\n", tok.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
		return nil
	},
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshForce, "force", false, "refresh even when the token is outside the skew window")
}
