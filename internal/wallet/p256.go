package wallet

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tempoxyz/tempo-go/internal/sig"
)

// P256Account signs with an in-memory P-256 key via crypto/ecdsa.
type P256Account struct {
	key  *ecdsa.PrivateKey
	pub  []byte // cached uncompressed point
	addr common.Address
}

// NewP256Account wraps an existing P-256 private key.
func NewP256Account(key *ecdsa.PrivateKey) *P256Account {
	pub := EncodeP256PublicKey(&key.PublicKey)
	addr, _ := sig.AddressFromPublicKey(pub)
	return &P256Account{key: key, pub: pub, addr: addr}
}

// GenerateP256Key creates a fresh P-256 key.
func GenerateP256Key() (*ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating p256 key: %w", err)
	}
	return key, nil
}

// Address returns the Ethereum-style address derived from the public key.
func (a *P256Account) Address() common.Address { return a.addr }

// Scheme returns the P256 scheme tag.
func (a *P256Account) Scheme() uint8 { return sig.SchemeP256 }

// PublicKey returns the 65-byte uncompressed public key.
func (a *P256Account) PublicKey() []byte { return a.pub }

// SignHash signs the hash directly with ECDSA over P-256 and wraps the
// low-s-normalized r||s alongside the public key.
func (a *P256Account) SignHash(hash common.Hash) (*sig.Envelope, error) {
	r, s, err := ecdsa.Sign(rand.Reader, a.key, hash.Bytes())
	if err != nil {
		return nil, fmt.Errorf("p256 sign: %w", err)
	}
	return &sig.Envelope{
		Scheme:    sig.SchemeP256,
		Sig:       encodeRS(r, sig.NormalizeS(s)),
		PublicKey: a.pub,
	}, nil
}

// ParseP256Hex parses a hex-encoded 32-byte P-256 scalar into a private key.
func ParseP256Hex(hexKey string) (*ecdsa.PrivateKey, error) {
	b, err := hex.DecodeString(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("decoding hex key: %w", err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("p256 key must be 32 bytes, got %d", len(b))
	}
	curve := elliptic.P256()
	d := new(big.Int).SetBytes(b)
	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, fmt.Errorf("p256 key out of range")
	}
	key := &ecdsa.PrivateKey{D: d}
	key.Curve = curve
	key.X, key.Y = curve.ScalarBaseMult(b)
	return key, nil
}

// EncodeP256PublicKey encodes a public key as a 65-byte uncompressed point.
func EncodeP256PublicKey(pub *ecdsa.PublicKey) []byte {
	out := make([]byte, 65)
	out[0] = 4
	pub.X.FillBytes(out[1:33])
	pub.Y.FillBytes(out[33:65])
	return out
}

func encodeRS(r, s *big.Int) []byte {
	out := make([]byte, 64)
	r.FillBytes(out[:32])
	s.FillBytes(out[32:])
	return out
}
