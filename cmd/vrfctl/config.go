package main

import (
	"github.com/spf13/cobra"

	"github.com/GPTx-global/vrf-consumer/vrf/config"
)

func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the vrfctl configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			config.Print()
		},
	})

	return cmd
}
