package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/GPTx-global/vrf-consumer/vrf/config"
	"github.com/GPTx-global/vrf-consumer/vrf/contract"
	"github.com/GPTx-global/vrf-consumer/vrf/deploy"
	"github.com/GPTx-global/vrf-consumer/vrf/log"
)

const flagArtifact = "artifact"

func DeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy a subscription consumer with the configured VRF parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			artifact, err := loadArtifact(artifactPath(cmd))
			if err != nil {
				return err
			}

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			factory, err := contract.NewFactory(artifact, configuredMethods(), s.client.Backend())
			if err != nil {
				return err
			}

			consumer, err := deploy.New(factory, s.client.Backend(), cmd.OutOrStdout()).
				Run(ctx, s.identity, s.opts, config.ConsumerParams())
			if err != nil {
				return err
			}

			record := contract.Deployment{
				ChainID:   s.client.ChainID().Uint64(),
				Address:   consumer.Address().Hex(),
				TxHash:    consumer.DeployTx().Hex(),
				Deployer:  s.identity.Address.Hex(),
				Timestamp: time.Now().UTC(),
			}
			if err := contract.RecordDeployment(config.DeploymentsPath(), config.ContractName(), record); err != nil {
				log.Errorf("deployed but failed to record deployment: %v", err)
			}

			return nil
		},
	}

	cmd.Flags().String(flagArtifact, "", "compiled contract artifact (default from config)")
	return cmd
}
