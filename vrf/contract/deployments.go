package contract

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var ErrNoDeployment = errors.New("no recorded deployment")

// Deployment is one entry of the deployments file. Entries are grouped by
// contract name and appended in deployment order.
type Deployment struct {
	ChainID   uint64    `json:"chain_id"`
	Address   string    `json:"address"`
	TxHash    string    `json:"tx_hash,omitempty"`
	Deployer  string    `json:"deployer,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func RecordDeployment(path, name string, d Deployment) error {
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		data = []byte("{}")
	case err != nil:
		return errors.Wrapf(err, "failed to read %s", path)
	}

	key := escapeKey(name)
	if !gjson.GetBytes(data, key).IsArray() {
		if data, err = sjson.SetRawBytes(data, key, []byte("[]")); err != nil {
			return errors.Wrap(err, "failed to initialise deployment list")
		}
	}

	entry, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "failed to marshal deployment")
	}

	if data, err = sjson.SetRawBytes(data, key+".-1", entry); err != nil {
		return errors.Wrap(err, "failed to append deployment")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}

	return errors.Wrapf(os.WriteFile(path, data, 0644), "failed to write %s", path)
}

// LatestDeployment returns the most recent address of name on chainID.
func LatestDeployment(path, name string, chainID *big.Int) (common.Address, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return common.Address{}, ErrNoDeployment
		}
		return common.Address{}, errors.Wrapf(err, "failed to read %s", path)
	}

	entries := gjson.GetBytes(data, escapeKey(name)).Array()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Get("chain_id").Uint() != chainID.Uint64() {
			continue
		}

		addr := entries[i].Get("address").String()
		if !common.IsHexAddress(addr) {
			return common.Address{}, errors.Errorf("malformed address %q in %s", addr, path)
		}
		return common.HexToAddress(addr), nil
	}

	return common.Address{}, errors.Wrapf(ErrNoDeployment, "%s on chain %s", name, chainID)
}

func escapeKey(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '.', '*', '?', '|', '#', '@', '\\':
			out = append(out, '\\')
		}
		out = append(out, name[i])
	}

	return string(out)
}
