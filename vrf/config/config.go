package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pelletier/go-toml/v2"

	"github.com/GPTx-global/vrf-consumer/vrf/log"
	"github.com/GPTx-global/vrf-consumer/vrf/types"
)

const (
	FileName            = "config.toml"
	DeploymentsFileName = "deployments.json"

	// Arbitrum VRF coordinator
	DefaultCoordinator          = "0x3C0Ca683b403E37668AE3DC4FB62F4B29B6f7a3e"
	DefaultSubscriptionID       = "58818501990419443489941997912023711743563562939934605039143263664528524368575"
	DefaultKeyHash              = "0x9e9e46732b32662b9adc6f3abdf6c5e926a666d174a4d6b8e39c4cca76a38897"
	DefaultCallbackGasLimit     = 100_000
	DefaultRequestConfirmations = 3
	DefaultNumWords             = 1

	DefaultConsumerAddress = "0x0f31aDCc9cac028E9a0596E8A3C0E19b3B73bb9A"
	DefaultEndpoint        = "https://arb1.arbitrum.io/rpc"
	DefaultKeyName         = "brave"

	// ape writes compiled contracts under .build in the project directory.
	DefaultArtifact = ".build/SubscriptionConsumer.json"
)

var (
	home         string
	globalConfig configData
	mu           sync.Mutex
)

type configData struct {
	Chain    chainConfig    `toml:"chain"`
	Key      keyConfig      `toml:"key"`
	Gas      gasConfig      `toml:"gas"`
	VRF      vrfConfig      `toml:"vrf"`
	Contract contractConfig `toml:"contract"`
}

type chainConfig struct {
	ID       uint64 `toml:"id"`
	Endpoint string `toml:"endpoint"`
}

type keyConfig struct {
	Name        string `toml:"name"`
	KeystoreDir string `toml:"keystore_dir"`
	Passphrase  string `toml:"passphrase,omitempty"`
}

type gasConfig struct {
	Limit uint64 `toml:"limit"`
}

type vrfConfig struct {
	Coordinator          string `toml:"coordinator"`
	SubscriptionID       string `toml:"subscription_id"`
	KeyHash              string `toml:"key_hash"`
	CallbackGasLimit     uint32 `toml:"callback_gas_limit"`
	RequestConfirmations uint16 `toml:"request_confirmations"`
	NumWords             uint32 `toml:"num_words"`
}

type contractConfig struct {
	Name            string `toml:"name"`
	Artifact        string `toml:"artifact"`
	Address         string `toml:"address"`
	RequestMethod   string `toml:"request_method"`
	RequestIDMethod string `toml:"request_id_method"`
	StatusMethod    string `toml:"status_method"`
	NativePayment   bool   `toml:"native_payment"`
}

// Load reads <dir>/config.toml, creating it with defaults when missing.
func Load(dir string) error {
	mu.Lock()
	defer mu.Unlock()

	if dir == "" {
		dir = DefaultHome()
	}
	home = dir
	path := filepath.Join(home, FileName)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createDefaultConfig(path); err != nil {
			return fmt.Errorf("failed to create default config: %w", err)
		}
		log.Infof("Created default config at %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	loaded := defaultConfig()
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}

	if err := validateConfig(loaded); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	globalConfig = loaded

	log.Debugf("Loaded config from %s", path)
	return nil
}

func DefaultHome() string {
	osHome, err := os.UserHomeDir()
	if err != nil {
		return ".vrfctl"
	}

	return filepath.Join(osHome, ".vrfctl")
}

// DefaultKeystoreDir is where ape keeps its named accounts.
func DefaultKeystoreDir() string {
	osHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ape", "accounts")
	}

	return filepath.Join(osHome, ".ape", "accounts")
}

func defaultConfig() configData {
	return configData{
		Chain: chainConfig{
			ID:       0,
			Endpoint: DefaultEndpoint,
		},
		Key: keyConfig{
			Name:        DefaultKeyName,
			KeystoreDir: DefaultKeystoreDir(),
		},
		Gas: gasConfig{
			Limit: 0,
		},
		VRF: vrfConfig{
			Coordinator:          DefaultCoordinator,
			SubscriptionID:       DefaultSubscriptionID,
			KeyHash:              DefaultKeyHash,
			CallbackGasLimit:     DefaultCallbackGasLimit,
			RequestConfirmations: DefaultRequestConfirmations,
			NumWords:             DefaultNumWords,
		},
		Contract: contractConfig{
			Name:            "SubscriptionConsumer",
			Artifact:        DefaultArtifact,
			Address:         DefaultConsumerAddress,
			RequestMethod:   types.MethodRequestRandomWords,
			RequestIDMethod: types.MethodLastRequestID,
			StatusMethod:    types.MethodRequests,
			NativePayment:   false,
		},
	}
}

func createDefaultConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := toml.Marshal(defaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal TOML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func validateConfig(c configData) error {
	if c.Chain.Endpoint == "" {
		return fmt.Errorf("chain endpoint is required")
	}

	if c.Key.Name == "" {
		return fmt.Errorf("key name is required")
	}

	if c.Key.KeystoreDir == "" {
		return fmt.Errorf("keystore directory is required")
	}

	if _, err := paramsFrom(c.VRF); err != nil {
		return err
	}

	if c.Contract.Address != "" && !common.IsHexAddress(c.Contract.Address) {
		return fmt.Errorf("invalid contract address: %s", c.Contract.Address)
	}

	if c.Contract.RequestMethod == "" || c.Contract.RequestIDMethod == "" || c.Contract.StatusMethod == "" {
		return fmt.Errorf("contract method names are required")
	}

	return nil
}

func paramsFrom(v vrfConfig) (types.ConsumerParams, error) {
	coordinator, err := types.ParseAddress(v.Coordinator)
	if err != nil {
		return types.ConsumerParams{}, fmt.Errorf("vrf coordinator: %w", err)
	}

	subID, err := types.ParseUint256(v.SubscriptionID)
	if err != nil {
		return types.ConsumerParams{}, fmt.Errorf("vrf subscription: %w", err)
	}

	keyHash, err := types.ParseKeyHash(v.KeyHash)
	if err != nil {
		return types.ConsumerParams{}, fmt.Errorf("vrf key hash: %w", err)
	}

	params := types.ConsumerParams{
		Coordinator:          coordinator,
		SubscriptionID:       subID,
		KeyHash:              keyHash,
		CallbackGasLimit:     v.CallbackGasLimit,
		RequestConfirmations: v.RequestConfirmations,
		NumWords:             v.NumWords,
	}
	if err := params.Validate(); err != nil {
		return types.ConsumerParams{}, err
	}

	return params, nil
}

func Print() {
	log.Infof("%-18s: %s", "Home", Home())
	log.Infof("%-18s: %s", "Chain Endpoint", ChainEndpoint())
	log.Infof("%-18s: %d", "Chain ID", ChainID())
	log.Infof("%-18s: %s", "Key Name", KeyName())
	log.Infof("%-18s: %s", "Keystore Dir", KeystoreDir())
	log.Infof("%-18s: %d", "Gas Limit", GasLimit())
	log.Infof("%-18s: %s", "Consumer Params", ConsumerParams().String())
	artifact := ContractArtifact()
	if _, err := os.Stat(artifact); err != nil {
		artifact += " (missing; run `ape compile` or set [contract] artifact)"
	}
	log.Infof("%-18s: %s", "Contract Artifact", artifact)
	log.Infof("%-18s: %s", "Contract Address", ContractAddress().Hex())
	log.Infof("%-18s: %s / %s / %s", "Contract Methods", RequestMethod(), RequestIDMethod(), StatusMethod())
}

func Home() string {
	return home
}

func DeploymentsPath() string {
	return filepath.Join(Home(), DeploymentsFileName)
}

func ChainID() *big.Int {
	mu.Lock()
	defer mu.Unlock()

	if globalConfig.Chain.ID == 0 {
		return nil
	}
	return new(big.Int).SetUint64(globalConfig.Chain.ID)
}

func ChainEndpoint() string {
	mu.Lock()
	defer mu.Unlock()

	return globalConfig.Chain.Endpoint
}

func KeyName() string {
	mu.Lock()
	defer mu.Unlock()

	return globalConfig.Key.Name
}

func KeystoreDir() string {
	mu.Lock()
	defer mu.Unlock()

	return globalConfig.Key.KeystoreDir
}

func Passphrase() string {
	mu.Lock()
	defer mu.Unlock()

	return globalConfig.Key.Passphrase
}

func GasLimit() uint64 {
	mu.Lock()
	defer mu.Unlock()

	return globalConfig.Gas.Limit
}

// ConsumerParams panics on invalid values; Load has already validated them.
func ConsumerParams() types.ConsumerParams {
	mu.Lock()
	defer mu.Unlock()

	params, err := paramsFrom(globalConfig.VRF)
	if err != nil {
		panic(err)
	}
	return params
}

func ContractName() string {
	mu.Lock()
	defer mu.Unlock()

	return globalConfig.Contract.Name
}

func ContractArtifact() string {
	mu.Lock()
	defer mu.Unlock()

	return globalConfig.Contract.Artifact
}

func ContractAddress() common.Address {
	mu.Lock()
	defer mu.Unlock()

	return common.HexToAddress(globalConfig.Contract.Address)
}

func RequestMethod() string {
	mu.Lock()
	defer mu.Unlock()

	return globalConfig.Contract.RequestMethod
}

func RequestIDMethod() string {
	mu.Lock()
	defer mu.Unlock()

	return globalConfig.Contract.RequestIDMethod
}

func StatusMethod() string {
	mu.Lock()
	defer mu.Unlock()

	return globalConfig.Contract.StatusMethod
}

func NativePayment() bool {
	mu.Lock()
	defer mu.Unlock()

	return globalConfig.Contract.NativePayment
}

// Override applies non-empty values from flags or the environment on top of the file.
func Override(endpoint, keyName, keystoreDir, consumer, passphrase string) error {
	mu.Lock()
	defer mu.Unlock()

	if endpoint != "" {
		globalConfig.Chain.Endpoint = endpoint
	}
	if keyName != "" {
		globalConfig.Key.Name = keyName
	}
	if keystoreDir != "" {
		globalConfig.Key.KeystoreDir = keystoreDir
	}
	if passphrase != "" {
		globalConfig.Key.Passphrase = passphrase
	}
	if consumer != "" {
		if !common.IsHexAddress(consumer) {
			return fmt.Errorf("invalid consumer address: %s", consumer)
		}
		globalConfig.Contract.Address = consumer
	}

	return nil
}

func SetForTesting(dir, endpoint, keyName, keystoreDir, consumer string, chainID uint64) {
	mu.Lock()
	defer mu.Unlock()

	home = dir
	globalConfig = defaultConfig()
	globalConfig.Chain.ID = chainID
	globalConfig.Chain.Endpoint = endpoint
	globalConfig.Key.Name = keyName
	globalConfig.Key.KeystoreDir = keystoreDir
	globalConfig.Contract.Address = consumer
}
