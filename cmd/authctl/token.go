package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a usable access secret, refreshing first if needed",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		secret, err := service.AccessSecret(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(secret)
		return nil
	},
}
