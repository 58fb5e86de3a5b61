package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/tempoxyz/tempo-go/internal/sig"
)

// Wallet types.
const (
	TypeWatchOnly = "watch-only"
	TypeSigning   = "signing"
)

// Errors.
var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrInvalidKey     = errors.New("invalid private key")
)

// Wallet holds metadata for a single wallet. The JSON tags define the
// on-disk schema of wallets.json.
type Wallet struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Type      string `json:"type"`
	Scheme    string `json:"scheme"`               // "secp256k1" | "p256" | "webauthn"
	KeyRef    string `json:"key_ref,omitempty"`    // keychain service key for signing wallets
	PublicKey string `json:"public_key,omitempty"` // hex uncompressed public key; required for p256/webauthn
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
}

// Store is an interface for persisting wallets.
type Store interface {
	Load() ([]*Wallet, error)
	Save([]*Wallet) error
}

// Manager handles wallet CRUD.
type Manager struct {
	store    Store
	keystore KeystoreBackend
	wallets  map[string]*Wallet
	loaded   bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithInMemoryStore uses an in-memory store (useful for tests).
func WithInMemoryStore() Option {
	return func(m *Manager) {
		m.store = &memStore{}
	}
}

// WithStore sets a custom store.
func WithStore(s Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithKeystore sets the keystore used for imported private keys.
func WithKeystore(ks KeystoreBackend) Option {
	return func(m *Manager) {
		m.keystore = ks
	}
}

// NewManager creates a new wallet manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		wallets: make(map[string]*Wallet),
		store:   &memStore{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add registers a watch-only (or pre-built) wallet.
func (m *Manager) Add(name string, w *Wallet) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, exists := m.wallets[name]; exists {
		return ErrWalletExists
	}
	if w.Scheme == "" {
		w.Scheme = "secp256k1"
	}
	if w.CreatedAt == "" {
		w.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	m.wallets[name] = w
	return m.persist()
}

// AddWithKey derives an address from a hex private key under the given
// signature scheme and stores the wallet. The key goes into the keystore.
func (m *Manager) AddWithKey(name, hexKey, scheme string) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, exists := m.wallets[name]; exists {
		return ErrWalletExists
	}

	w := &Wallet{
		Name:      name,
		Type:      TypeSigning,
		Scheme:    scheme,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	switch scheme {
	case "secp256k1":
		privKey, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		w.Address = crypto.PubkeyToAddress(privKey.PublicKey).Hex()

	case "p256", "webauthn":
		privKey, err := ParseP256Hex(hexKey)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		pub := EncodeP256PublicKey(&privKey.PublicKey)
		addr, err := sig.AddressFromPublicKey(pub)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		w.Address = addr.Hex()
		w.PublicKey = fmt.Sprintf("0x%x", pub)

	default:
		return fmt.Errorf("%w: %q", sig.ErrUnsupportedScheme, scheme)
	}

	ks := m.keystore
	if ks == nil {
		ks = DefaultKeystore()
	}
	ref, err := ks.Store(name, hexKey)
	if err != nil {
		return fmt.Errorf("storing key: %w", err)
	}
	w.KeyRef = ref

	m.wallets[name] = w
	return m.persist()
}

// Generate creates a fresh keypair under the given scheme, stores it and
// returns the wallet plus the hex private key for one-time display.
func (m *Manager) Generate(name, scheme string) (*Wallet, string, error) {
	var hexKey string
	switch scheme {
	case "", "secp256k1":
		privKey, err := crypto.GenerateKey()
		if err != nil {
			return nil, "", fmt.Errorf("generating key: %w", err)
		}
		hexKey = fmt.Sprintf("%x", crypto.FromECDSA(privKey))
		scheme = "secp256k1"

	case "p256", "webauthn":
		privKey, err := GenerateP256Key()
		if err != nil {
			return nil, "", fmt.Errorf("generating key: %w", err)
		}
		hexKey = fmt.Sprintf("%064x", privKey.D)

	default:
		return nil, "", fmt.Errorf("%w: %q", sig.ErrUnsupportedScheme, scheme)
	}

	if err := m.AddWithKey(name, hexKey, scheme); err != nil {
		return nil, "", err
	}
	w := m.wallets[name]
	return w, hexKey, nil
}

// ExportKey retrieves the stored private key of a signing wallet.
func (m *Manager) ExportKey(name string) (string, error) {
	w, err := m.Get(name)
	if err != nil {
		return "", err
	}
	if w.Type != TypeSigning {
		return "", fmt.Errorf("wallet %q is watch-only, no key to export", name)
	}
	ks := m.keystore
	if ks == nil {
		ks = DefaultKeystore()
	}
	return ks.Retrieve(w.KeyRef)
}

// Get returns a wallet by name.
func (m *Manager) Get(name string) (*Wallet, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	w, ok := m.wallets[name]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return w, nil
}

// Remove deletes a wallet by name.
func (m *Manager) Remove(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, ok := m.wallets[name]; !ok {
		return ErrWalletNotFound
	}
	delete(m.wallets, name)
	return m.persist()
}

// List returns all wallets.
func (m *Manager) List() []*Wallet {
	m.load() //nolint:errcheck
	out := make([]*Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		out = append(out, w)
	}
	return out
}

// SetDefault marks a wallet as the default.
func (m *Manager) SetDefault(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, ok := m.wallets[name]; !ok {
		return ErrWalletNotFound
	}
	for _, w := range m.wallets {
		w.IsDefault = w.Name == name
	}
	return m.persist()
}

// Default returns the default wallet, or nil if none.
func (m *Manager) Default() *Wallet {
	m.load() //nolint:errcheck
	for _, w := range m.wallets {
		if w.IsDefault {
			return w
		}
	}
	// Fallback: return first wallet if only one exists.
	if len(m.wallets) == 1 {
		for _, w := range m.wallets {
			return w
		}
	}
	return nil
}

// --- internal ---

func (m *Manager) load() error {
	if m.loaded {
		return nil
	}
	wallets, err := m.store.Load()
	if err != nil {
		return err
	}
	for _, w := range wallets {
		m.wallets[w.Name] = w
	}
	m.loaded = true
	return nil
}

func (m *Manager) persist() error {
	wallets := make([]*Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		wallets = append(wallets, w)
	}
	return m.store.Save(wallets)
}

func stripHexPrefix(s string) string {
	if len(s) >= 2 && s[:2] == "0x" {
		return s[2:]
	}
	return s
}

// --- in-memory store ---

type memStore struct {
	wallets []*Wallet
}

func (s *memStore) Load() ([]*Wallet, error) {
	return s.wallets, nil
}

func (s *memStore) Save(wallets []*Wallet) error {
	s.wallets = wallets
	return nil
}

// --- JSON file store ---

// JSONStore persists wallets to a JSON file.
type JSONStore struct {
	path string
}

// walletsFile is the wallets.json document shape.
type walletsFile struct {
	Wallets []*Wallet `json:"wallets"`
}

// NewJSONStore creates a JSON-backed wallet store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load() ([]*Wallet, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var wf walletsFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, err
	}
	return wf.Wallets, nil
}

func (s *JSONStore) Save(wallets []*Wallet) error {
	data, err := json.MarshalIndent(walletsFile{Wallets: wallets}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
