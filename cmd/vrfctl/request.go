package main

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/GPTx-global/vrf-consumer/vrf/client"
	"github.com/GPTx-global/vrf-consumer/vrf/config"
	"github.com/GPTx-global/vrf-consumer/vrf/contract"
	"github.com/GPTx-global/vrf-consumer/vrf/request"
	"github.com/GPTx-global/vrf-consumer/vrf/types"
)

const flagLatest = "latest"

func RequestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Request random words from the deployed consumer and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			latest, _ := cmd.Flags().GetBool(flagLatest)

			artifact, err := loadArtifact(artifactPath(cmd))
			if err != nil {
				return err
			}

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			consumer, err := resolveConsumer(s.client, artifact, latest)
			if err != nil {
				return err
			}

			_, _, err = request.New(consumer, cmd.OutOrStdout()).Run(ctx, s.opts, config.NativePayment())
			return err
		},
	}

	cmd.Flags().Bool(flagLatest, false, "use the most recent recorded deployment instead of the configured address")
	cmd.Flags().String(flagArtifact, "", "compiled contract artifact (default from config)")
	return cmd
}

func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [request-id]",
		Short: "Print the on-chain record of a randomness request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			latest, _ := cmd.Flags().GetBool(flagLatest)

			requestID, err := types.ParseUint256(args[0])
			if err != nil {
				return fmt.Errorf("invalid request id: %w", err)
			}

			artifact, err := loadArtifact(artifactPath(cmd))
			if err != nil {
				return err
			}

			cl, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cl.Close()

			consumer, err := resolveConsumer(cl, artifact, latest)
			if err != nil {
				return err
			}

			_, err = request.New(consumer, cmd.OutOrStdout()).Status(cmd.Context(), requestID)
			return err
		},
	}

	cmd.Flags().Bool(flagLatest, false, "use the most recent recorded deployment instead of the configured address")
	cmd.Flags().String(flagArtifact, "", "compiled contract artifact (default from config)")
	return cmd
}

func resolveConsumer(cl *client.Client, artifact *contract.Artifact, latest bool) (*contract.Consumer, error) {
	address := config.ContractAddress()
	if latest {
		recorded, err := contract.LatestDeployment(config.DeploymentsPath(), config.ContractName(), cl.ChainID())
		if err != nil {
			return nil, err
		}
		address = recorded
	}

	if address == (common.Address{}) {
		return nil, errors.New("no consumer address configured")
	}

	return contract.NewConsumer(address, artifact.ABI, configuredMethods(), cl.Backend())
}
