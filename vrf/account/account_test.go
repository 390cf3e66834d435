package account

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const (
	testMnemonic   = "test test test test test test test test test test test junk"
	testAddress    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testPassphrase = "correct horse"
)

func init() {
	ScryptN = keystore.LightScryptN
	ScryptP = keystore.LightScryptP
}

func TestImportAndLoad(t *testing.T) {
	dir := t.TempDir()

	addr, err := Import(dir, "brave", testMnemonic, testPassphrase)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(testAddress), addr)
	require.FileExists(t, Path(dir, "brave"))

	// staging directory is cleaned up
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	id, err := Load(dir, "brave", testPassphrase)
	require.NoError(t, err)
	require.Equal(t, "brave", id.Name)
	require.Equal(t, addr, id.Address)
	require.Equal(t, "brave ("+addr.Hex()+")", id.String())

	opts, err := id.Transactor(big.NewInt(42161))
	require.NoError(t, err)
	require.Equal(t, addr, opts.From)

	_, err = id.Transactor(nil)
	require.Error(t, err)
}

func TestImport_NormalizesWhitespace(t *testing.T) {
	addr, err := Import(t.TempDir(), "brave", "  test test test test test test\ntest test test test test   junk ", testPassphrase)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(testAddress), addr)
}

func TestImport_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Import(dir, "bad", "test test test", testPassphrase)
	require.ErrorIs(t, err, ErrBadMnemonic)

	_, err = Import(dir, "brave", testMnemonic, testPassphrase)
	require.NoError(t, err)

	_, err = Import(dir, "brave", testMnemonic, testPassphrase)
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir, "missing", testPassphrase)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = Import(dir, "brave", testMnemonic, testPassphrase)
	require.NoError(t, err)

	_, err = Load(dir, "brave", "wrong")
	require.ErrorIs(t, err, keystore.ErrDecrypt)
}

func TestList(t *testing.T) {
	dir := t.TempDir()

	summaries, err := List(filepath.Join(dir, "absent"))
	require.NoError(t, err)
	require.Empty(t, summaries)

	_, err = Import(dir, "zeta", testMnemonic, testPassphrase)
	require.NoError(t, err)
	_, err = Import(dir, "alpha", testMnemonic, testPassphrase)
	require.NoError(t, err)

	// ignored: not json, and json without an address
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{"foo":1}`), 0600))

	summaries, err = List(dir)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.Equal(t, "alpha", summaries[0].Name)
	require.Equal(t, "zeta", summaries[1].Name)
	require.Equal(t, common.HexToAddress(testAddress), summaries[0].Address)
	require.Equal(t, Path(dir, "alpha"), summaries[0].Path)
}
