package wallet

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempoxyz/tempo-go/internal/sig"
)

func keyHex(key *ecdsa.PrivateKey) string {
	return fmt.Sprintf("%064x", key.D)
}

// Hardhat's first two dev keys.
const (
	devKey      = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devKeyAddr  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	devKey2     = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	devKey2Addr = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func newTestManager() (*Manager, *InMemoryKeystore) {
	ks := NewInMemoryKeystore()
	return NewManager(WithInMemoryStore(), WithKeystore(ks)), ks
}

func TestAddAndGetWallet(t *testing.T) {
	mgr, _ := newTestManager()

	err := mgr.Add("alice", &Wallet{
		Name:    "alice",
		Address: "0x1234567890abcdef1234567890abcdef12345678",
		Type:    TypeWatchOnly,
	})
	require.NoError(t, err)

	w, err := mgr.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", w.Name)
	assert.Equal(t, TypeWatchOnly, w.Type)
	assert.Equal(t, "secp256k1", w.Scheme) // defaulted
	assert.NotEmpty(t, w.CreatedAt)
}

func TestAddDuplicate(t *testing.T) {
	mgr, _ := newTestManager()

	require.NoError(t, mgr.Add("alice", &Wallet{Name: "alice", Type: TypeWatchOnly}))
	err := mgr.Add("alice", &Wallet{Name: "alice", Type: TypeWatchOnly})
	assert.ErrorIs(t, err, ErrWalletExists)
}

func TestGetMissing(t *testing.T) {
	mgr, _ := newTestManager()
	_, err := mgr.Get("nobody")
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestAddWithKeySecp256k1(t *testing.T) {
	mgr, ks := newTestManager()

	require.NoError(t, mgr.AddWithKey("dev", devKey, "secp256k1"))

	w, err := mgr.Get("dev")
	require.NoError(t, err)
	assert.Equal(t, devKeyAddr, w.Address)
	assert.Equal(t, TypeSigning, w.Type)
	assert.NotEmpty(t, w.KeyRef)

	stored, err := ks.Retrieve(w.KeyRef)
	require.NoError(t, err)
	assert.Equal(t, devKey, stored)
}

func TestAddWithKeyHexPrefix(t *testing.T) {
	mgr, _ := newTestManager()
	require.NoError(t, mgr.AddWithKey("dev", "0x"+devKey, "secp256k1"))
	w, err := mgr.Get("dev")
	require.NoError(t, err)
	assert.Equal(t, devKeyAddr, w.Address)
}

func TestAddWithKeyP256(t *testing.T) {
	mgr, _ := newTestManager()

	key, err := GenerateP256Key()
	require.NoError(t, err)
	hexKey := keyHex(key)

	require.NoError(t, mgr.AddWithKey("passkey", hexKey, "p256"))

	w, err := mgr.Get("passkey")
	require.NoError(t, err)
	assert.Equal(t, "p256", w.Scheme)
	assert.NotEmpty(t, w.PublicKey)

	// Address matches the sig-package derivation from the public key.
	want, err := sig.AddressFromPublicKey(EncodeP256PublicKey(&key.PublicKey))
	require.NoError(t, err)
	assert.Equal(t, want.Hex(), w.Address)
}

func TestAddWithKeyErrors(t *testing.T) {
	mgr, _ := newTestManager()

	err := mgr.AddWithKey("bad", "not-hex", "secp256k1")
	assert.ErrorIs(t, err, ErrInvalidKey)

	err = mgr.AddWithKey("bad", devKey, "ed25519")
	assert.ErrorIs(t, err, sig.ErrUnsupportedScheme)
}

func TestGenerate(t *testing.T) {
	for _, scheme := range []string{"secp256k1", "p256", "webauthn"} {
		t.Run(scheme, func(t *testing.T) {
			mgr, _ := newTestManager()

			w, hexKey, err := mgr.Generate("fresh", scheme)
			require.NoError(t, err)
			assert.Equal(t, scheme, w.Scheme)
			assert.Len(t, hexKey, 64)
			assert.NotEmpty(t, w.Address)

			// The returned key re-derives the same address.
			mgr2, _ := newTestManager()
			require.NoError(t, mgr2.AddWithKey("again", hexKey, scheme))
			w2, err := mgr2.Get("again")
			require.NoError(t, err)
			assert.Equal(t, w.Address, w2.Address)
		})
	}
}

func TestGenerateDefaultsToSecp(t *testing.T) {
	mgr, _ := newTestManager()
	w, _, err := mgr.Generate("fresh", "")
	require.NoError(t, err)
	assert.Equal(t, "secp256k1", w.Scheme)
}

func TestExportKey(t *testing.T) {
	mgr, _ := newTestManager()

	require.NoError(t, mgr.AddWithKey("dev", devKey, "secp256k1"))
	got, err := mgr.ExportKey("dev")
	require.NoError(t, err)
	assert.Equal(t, devKey, got)

	require.NoError(t, mgr.Add("watcher", &Wallet{Name: "watcher", Type: TypeWatchOnly}))
	_, err = mgr.ExportKey("watcher")
	assert.ErrorContains(t, err, "watch-only")
}

func TestRemove(t *testing.T) {
	mgr, _ := newTestManager()

	require.NoError(t, mgr.Add("alice", &Wallet{Name: "alice", Type: TypeWatchOnly}))
	require.NoError(t, mgr.Remove("alice"))

	_, err := mgr.Get("alice")
	assert.ErrorIs(t, err, ErrWalletNotFound)

	assert.ErrorIs(t, mgr.Remove("alice"), ErrWalletNotFound)
}

func TestSetDefault(t *testing.T) {
	mgr, _ := newTestManager()

	require.NoError(t, mgr.Add("alice", &Wallet{Name: "alice", Type: TypeWatchOnly}))
	require.NoError(t, mgr.Add("bob", &Wallet{Name: "bob", Type: TypeWatchOnly}))

	require.NoError(t, mgr.SetDefault("bob"))
	d := mgr.Default()
	require.NotNil(t, d)
	assert.Equal(t, "bob", d.Name)

	// Switching moves the flag.
	require.NoError(t, mgr.SetDefault("alice"))
	assert.Equal(t, "alice", mgr.Default().Name)

	assert.ErrorIs(t, mgr.SetDefault("nobody"), ErrWalletNotFound)
}

func TestDefaultFallsBackToOnlyWallet(t *testing.T) {
	mgr, _ := newTestManager()
	require.NoError(t, mgr.Add("solo", &Wallet{Name: "solo", Type: TypeWatchOnly}))

	d := mgr.Default()
	require.NotNil(t, d)
	assert.Equal(t, "solo", d.Name)
}

func TestJSONStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")

	mgr := NewManager(WithStore(NewJSONStore(path)), WithKeystore(NewInMemoryKeystore()))
	require.NoError(t, mgr.Add("alice", &Wallet{
		Name:    "alice",
		Address: "0x1234567890abcdef1234567890abcdef12345678",
		Type:    TypeWatchOnly,
	}))
	require.NoError(t, mgr.SetDefault("alice"))

	// A fresh manager over the same file sees the wallet.
	mgr2 := NewManager(WithStore(NewJSONStore(path)), WithKeystore(NewInMemoryKeystore()))
	w, err := mgr2.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, "0x1234567890abcdef1234567890abcdef12345678", w.Address)
	assert.True(t, w.IsDefault)
}

func TestJSONStoreSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")

	store := NewJSONStore(path)
	require.NoError(t, store.Save([]*Wallet{{
		Name:    "alice",
		Address: "0x1234567890abcdef1234567890abcdef12345678",
		Type:    TypeWatchOnly,
		Scheme:  "secp256k1",
	}}))

	// The file is a {"wallets": [...]} document with snake_case fields.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc["wallets"], 1)
	entry := doc["wallets"][0]
	assert.Equal(t, "alice", entry["name"])
	assert.Equal(t, "watch-only", entry["type"])
	assert.Equal(t, false, entry["is_default"])
	assert.NotContains(t, entry, "key_ref") // omitted when empty
}

func TestJSONStoreMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	mgr := NewManager(WithStore(NewJSONStore(path)))
	assert.Empty(t, mgr.List())
}
