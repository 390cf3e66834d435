package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GPTx-global/vrf-consumer/vrf/account"
	"github.com/GPTx-global/vrf-consumer/vrf/client"
	"github.com/GPTx-global/vrf-consumer/vrf/config"
	"github.com/GPTx-global/vrf-consumer/vrf/contract"
	"github.com/GPTx-global/vrf-consumer/vrf/log"
)

const (
	flagHome       = "home"
	flagKey        = "key"
	flagKeystore   = "keystore"
	flagEndpoint   = "endpoint"
	flagConsumer   = "consumer"
	flagPassphrase = "passphrase"
	flagDebug      = "debug"
	flagLogFile    = "log-file"

	envPrefix = "VRFCTL"
)

// NewRootCmd builds the vrfctl command tree. Every persistent flag can also be
// set through VRFCTL_<FLAG>, e.g. VRFCTL_PASSPHRASE.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           "vrfctl",
		Short:         "Deploy and drive a VRF subscription consumer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log.SetDebug(v.GetBool(flagDebug))

			if err := config.Load(v.GetString(flagHome)); err != nil {
				return err
			}

			if err := config.Override(
				v.GetString(flagEndpoint),
				v.GetString(flagKey),
				v.GetString(flagKeystore),
				v.GetString(flagConsumer),
				v.GetString(flagPassphrase),
			); err != nil {
				return err
			}

			if v.GetBool(flagLogFile) {
				log.ResetLogger(config.Home())
			}

			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			log.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(flagHome, config.DefaultHome(), "vrfctl home directory")
	flags.String(flagKey, "", "name of the keystore identity to sign with (default from config)")
	flags.String(flagKeystore, "", "keystore directory (default from config)")
	flags.String(flagEndpoint, "", "JSON-RPC endpoint (default from config)")
	flags.String(flagConsumer, "", "deployed consumer address (default from config)")
	flags.String(flagPassphrase, "", "keystore passphrase; prompted for when empty")
	flags.Bool(flagDebug, false, "enable debug logging")
	flags.Bool(flagLogFile, false, "also write logs under <home>/logs")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		DeployCmd(),
		RequestCmd(),
		StatusCmd(),
		AccountsCmd(),
		ConfigCmd(),
	)

	return rootCmd
}

// session is the connected state shared by the chain-facing commands.
type session struct {
	client   *client.Client
	identity *account.Identity
	opts     *bind.TransactOpts
}

func connect(ctx context.Context) (*client.Client, error) {
	return client.Connect(ctx, config.ChainEndpoint(), config.ChainID())
}

// openSession dials the node and unlocks the configured identity.
func openSession(ctx context.Context) (*session, error) {
	identity, err := loadIdentity()
	if err != nil {
		return nil, err
	}

	cl, err := connect(ctx)
	if err != nil {
		return nil, err
	}

	opts, err := identity.Transactor(cl.ChainID())
	if err != nil {
		cl.Close()
		return nil, err
	}
	opts.Context = ctx
	opts.GasLimit = config.GasLimit()

	return &session{
		client:   cl,
		identity: identity,
		opts:     opts,
	}, nil
}

func (s *session) Close() {
	s.client.Close()
}

func loadIdentity() (*account.Identity, error) {
	passphrase, err := account.Passphrase(config.KeyName(), config.Passphrase())
	if err != nil {
		return nil, err
	}

	identity, err := account.Load(config.KeystoreDir(), config.KeyName(), passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}

	return identity, nil
}

func configuredMethods() contract.Methods {
	return contract.Methods{
		Request:   config.RequestMethod(),
		RequestID: config.RequestIDMethod(),
		Status:    config.StatusMethod(),
	}
}

func artifactPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString(flagArtifact); path != "" {
		return path
	}

	return config.ContractArtifact()
}

func loadArtifact(path string) (*contract.Artifact, error) {
	artifact, err := contract.LoadArtifact(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w; run `ape compile` in the project directory, pass --%s, or set [contract] artifact in %s",
			err, flagArtifact, filepath.Join(config.Home(), config.FileName))
	}

	return artifact, err
}
