package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-auth-client/auth"
)

var logoutSilent bool

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and clear local state",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		if logoutSilent {
			if err := service.SilentLogout(cmd.Context(), auth.LogoutForced); err != nil {
				return err
			}
		} else if err := service.Logout(cmd.Context(), auth.LogoutUserInitiated); err != nil {
			return err
		}

		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	logoutCmd.Flags().BoolVar(&logoutSilent, "silent", false, "skip the server notification, clear local state only")
}
