package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2beens/wodhub/pkg"
)

const minPasswordLength = 6

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash of a password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args[0]) < minPasswordLength {
			return errors.New("password must be at least 6 characters")
		}
		hash, err := pkg.HashPassword(args[0])
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}
