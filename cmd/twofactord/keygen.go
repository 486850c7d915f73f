package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/twofactor/pkg/secrets"
)

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Print a new master key for TWOFACTOR_MASTER_KEY",
		Long: `Print a random base64-encoded 32-byte key. Changing the master key makes
every stored TOTP secret and backup code unreadable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := secrets.GenerateEncodedKey()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
}
