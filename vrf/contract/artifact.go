package contract

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Compiler output layouts, tried in order.
var bytecodePaths = []string{
	"deploymentBytecode.bytecode", // ethPM manifest (ape)
	"bytecode.object",             // foundry
	"evm.bytecode.object",         // solc standard json
	"bytecode",                    // hardhat, vyper -f combined
}

// Artifact is a compiled contract: its interface and creation code.
type Artifact struct {
	Name     string
	ABI      abi.ABI
	Bytecode []byte
}

func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read artifact %s", path)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParseArtifact(name, data)
}

// ParseArtifact reads the ABI and creation bytecode from a compiler output
// document. A missing bytecode is allowed only for interaction; Deploy checks it.
func ParseArtifact(name string, data []byte) (*Artifact, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.Errorf("artifact %s is not valid json", name)
	}

	doc := gjson.ParseBytes(data)
	if n := doc.Get("contractName"); n.Exists() && n.String() != "" {
		name = n.String()
	}

	rawABI := doc.Get("abi")
	if !rawABI.IsArray() {
		return nil, errors.Errorf("artifact %s has no abi", name)
	}

	parsed, err := abi.JSON(strings.NewReader(rawABI.Raw))
	if err != nil {
		return nil, errors.Wrapf(err, "artifact %s has a malformed abi", name)
	}

	art := &Artifact{
		Name: name,
		ABI:  parsed,
	}

	for _, path := range bytecodePaths {
		code := doc.Get(path)
		if code.Type != gjson.String || code.String() == "" {
			continue
		}

		hex := code.String()
		if !strings.HasPrefix(hex, "0x") {
			hex = "0x" + hex
		}
		if hex == "0x" {
			continue
		}

		art.Bytecode, err = hexutil.Decode(hex)
		if err != nil {
			return nil, errors.Wrapf(err, "artifact %s has malformed bytecode at %s", name, path)
		}
		break
	}

	return art, nil
}

func (a *Artifact) Deployable() error {
	if len(a.Bytecode) == 0 {
		return errors.Errorf("artifact %s has no creation bytecode", a.Name)
	}

	return nil
}
