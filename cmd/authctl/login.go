package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-auth-client/credentials"
)

var (
	loginIdentity string
	loginSecret   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and create a local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		displayAppname()

		service, err := newService()
		if err != nil {
			return err
		}

		if loginSecret == "" {
			fmt.Fprint(os.Stderr, "Secret: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read secret: %w", err)
			}
			loginSecret = strings.TrimRight(line, "\r\n")
		}

		session, err := service.Login(cmd.Context(), credentials.New(loginIdentity, loginSecret))
		if err != nil {
			return err
		}

		fmt.Printf("Login successful. Token expires at %s.\n", session.Token.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
		if session.Identity != nil {
			fmt.Printf("Authenticated as: %s (%s)\n", session.Identity.DisplayName, session.Identity.Contact)
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginIdentity, "identity", "", "login identity (email)")
	loginCmd.Flags().StringVar(&loginSecret, "secret", "", "login secret (prompted when omitted)")
	_ = loginCmd.MarkFlagRequired("identity")
}
