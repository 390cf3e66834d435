package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GPTx-global/vrf-consumer/vrf/account"
	"github.com/GPTx-global/vrf-consumer/vrf/config"
)

// AccountsCmd manages the named keystore identities.
func AccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage keystore identities",
	}

	cmd.AddCommand(
		accountsListCmd(),
		accountsImportCmd(),
	)

	return cmd
}

func accountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List identities in the keystore directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summaries, err := account.List(config.KeystoreDir())
			if err != nil {
				return err
			}

			if len(summaries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no identities in %s\n", config.KeystoreDir())
				return nil
			}

			for _, s := range summaries {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", s.Name, s.Address.Hex())
			}
			return nil
		},
	}
}

func accountsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [name]",
		Short: "Import an identity from a BIP-39 mnemonic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			mnemonic, err := account.Mnemonic()
			if err != nil {
				return err
			}

			passphrase := config.Passphrase()
			if passphrase == "" {
				if passphrase, err = account.NewPassphrase(name); err != nil {
					return err
				}
			}

			address, err := account.Import(config.KeystoreDir(), name, mnemonic, passphrase)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s imported as %s\n", address.Hex(), name)
			return nil
		},
	}
}
