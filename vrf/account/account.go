package account

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tyler-smith/go-bip39"

	"github.com/GPTx-global/vrf-consumer/vrf/log"
)

// DerivationPath is the first account of the default Ethereum HD path.
const DerivationPath = "m/44'/60'/0'/0/0"

var (
	ErrNotFound      = errors.New("identity not found")
	ErrAlreadyExists = errors.New("identity already exists")
	ErrBadMnemonic   = errors.New("invalid mnemonic")
)

// Scrypt parameters used when writing keystore files.
var (
	ScryptN = keystore.StandardScryptN
	ScryptP = keystore.StandardScryptP
)

// Identity is a decrypted signing key loaded by name.
type Identity struct {
	Name    string
	Address common.Address
	key     *ecdsa.PrivateKey
}

// Summary describes a keystore file without decrypting it.
type Summary struct {
	Name    string
	Address common.Address
	Path    string
}

func Path(dir, name string) string {
	return filepath.Join(dir, name+".json")
}

// Load decrypts <dir>/<name>.json with the given passphrase.
func Load(dir, name, passphrase string) (*Identity, error) {
	path := Path(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "%s (%s)", name, path)
		}
		return nil, errors.Wrapf(err, "failed to read keystore %s", path)
	}

	key, err := keystore.DecryptKey(data, passphrase)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decrypt %q", name)
	}

	log.Debugf("loaded identity %s: %s", name, key.Address.Hex())
	return &Identity{
		Name:    name,
		Address: key.Address,
		key:     key.PrivateKey,
	}, nil
}

// Transactor returns signing options bound to chainID.
func (i *Identity) Transactor(chainID *big.Int) (*bind.TransactOpts, error) {
	if chainID == nil {
		return nil, errors.New("chain id is required")
	}

	opts, err := bind.NewKeyedTransactorWithChainID(i.key, chainID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create transactor")
	}

	return opts, nil
}

func List(dir string) ([]Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read keystore directory %s", dir)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Debugf("skipping %s: %v", path, err)
			continue
		}

		addr := gjson.GetBytes(data, "address").String()
		if !common.IsHexAddress(addr) {
			log.Debugf("skipping %s: no address field", path)
			continue
		}

		summaries = append(summaries, Summary{
			Name:    strings.TrimSuffix(entry.Name(), ".json"),
			Address: common.HexToAddress(addr),
			Path:    path,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})

	return summaries, nil
}

// Import derives the first account of mnemonic and stores it as <dir>/<name>.json.
func Import(dir, name, mnemonic, passphrase string) (common.Address, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return common.Address{}, ErrBadMnemonic
	}

	target := Path(dir, name)
	if _, err := os.Stat(target); err == nil {
		return common.Address{}, errors.Wrapf(ErrAlreadyExists, "%s (%s)", name, target)
	}

	wallet, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to open wallet")
	}

	derived, err := wallet.Derive(hdwallet.MustParseDerivationPath(DerivationPath), false)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to derive account")
	}

	privateKey, err := wallet.PrivateKey(derived)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to export private key")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return common.Address{}, errors.Wrapf(err, "failed to create %s", dir)
	}

	// The keystore names files after the address; stage there and rename.
	staging, err := os.MkdirTemp(dir, ".import-")
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to create staging directory")
	}
	defer os.RemoveAll(staging)

	ks := keystore.NewKeyStore(staging, ScryptN, ScryptP)
	acct, err := ks.ImportECDSA(privateKey, passphrase)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to encrypt key")
	}

	if err := os.Rename(acct.URL.Path, target); err != nil {
		return common.Address{}, errors.Wrapf(err, "failed to write %s", target)
	}

	log.Infof("imported %s as %s", acct.Address.Hex(), name)
	return acct.Address, nil
}

func (i *Identity) String() string {
	return fmt.Sprintf("%s (%s)", i.Name, i.Address.Hex())
}
