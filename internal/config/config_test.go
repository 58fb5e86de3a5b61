package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", cfg.DefaultRPC)
	assert.Equal(t, []string{"http://localhost:8545"}, cfg.RPCs)
	assert.Equal(t, "fastest", cfg.RPCAlgorithm)
	assert.Equal(t, 10, cfg.WatchInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.FeeToken)
	assert.Equal(t, dir, cfg.Dir())
}

func TestSaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	cfg.DefaultWallet = "alice"
	cfg.FeeToken = "0x20c0000000000000000000000000000000000001"
	cfg.RPCAlgorithm = "first"
	require.NoError(t, cfg.Save())

	reloaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "alice", reloaded.DefaultWallet)
	assert.Equal(t, "0x20c0000000000000000000000000000000000001", reloaded.FeeToken)
	assert.Equal(t, "first", reloaded.RPCAlgorithm)
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{bad"), 0o600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestAddRemoveRPC(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	require.NoError(t, cfg.AddRPC("https://rpc.tempo.xyz"))
	assert.Len(t, cfg.RPCs, 2)

	err = cfg.AddRPC("https://rpc.tempo.xyz")
	assert.ErrorContains(t, err, "already configured")

	require.NoError(t, cfg.RemoveRPC("https://rpc.tempo.xyz"))
	assert.Len(t, cfg.RPCs, 1)

	err = cfg.RemoveRPC("https://rpc.tempo.xyz")
	assert.ErrorContains(t, err, "not found")
}

func TestEmptyRPCListFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"default_rpc":"https://node.example","rpcs":[]}`), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://node.example"}, cfg.RPCs)
}

func TestWalletsPath(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "wallets.json"), cfg.WalletsPath())
}

func TestContractsFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	cf, err := cfg.LoadContracts()
	require.NoError(t, err)
	assert.Empty(t, cf.Contracts)

	cf.Contracts = append(cf.Contracts, ContractEntry{
		Name:    "mytoken",
		Address: "0x9999999999999999999999999999999999999999",
		ABI:     `[]`,
	})
	require.NoError(t, cfg.SaveContracts(cf))

	reloaded, err := cfg.LoadContracts()
	require.NoError(t, err)
	require.Len(t, reloaded.Contracts, 1)
	assert.Equal(t, "mytoken", reloaded.Contracts[0].Name)
}

func TestConfigFilePermissions(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.Save())

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
