package sig

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signature schemes carried by an Envelope. The scheme tag tells verifiers
// which verification path to take.
const (
	SchemeSecp256k1 uint8 = 0
	SchemeP256      uint8 = 1
	SchemeWebAuthn  uint8 = 2
)

// Errors.
var (
	ErrUnsupportedScheme = errors.New("unsupported signature scheme")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrInvalidPublicKey  = errors.New("invalid public key")
	ErrChallengeMismatch = errors.New("webauthn challenge does not match signed hash")
)

// Envelope tags a raw signature with its scheme so verifiers can select the
// right verification path. Secp256k1 signatures carry no public key (the
// signer is recovered); P256 and WebAuthn signatures carry the uncompressed
// SEC1 public key. WebAuthn additionally carries the authenticator data and
// the client data JSON produced by the authenticator.
type Envelope struct {
	Scheme            uint8
	Sig               []byte // r||s||v for secp256k1, r||s for p256/webauthn
	PublicKey         []byte // 65-byte uncompressed point; empty for secp256k1
	AuthenticatorData []byte // webauthn only
	ClientDataJSON    []byte // webauthn only
}

// SchemeName returns the human name for a scheme tag.
func SchemeName(scheme uint8) string {
	switch scheme {
	case SchemeSecp256k1:
		return "secp256k1"
	case SchemeP256:
		return "p256"
	case SchemeWebAuthn:
		return "webauthn"
	default:
		return fmt.Sprintf("unknown(%d)", scheme)
	}
}

// SchemeFromName parses a scheme name as used in config/CLI flags.
func SchemeFromName(name string) (uint8, error) {
	switch name {
	case "secp256k1":
		return SchemeSecp256k1, nil
	case "p256":
		return SchemeP256, nil
	case "webauthn":
		return SchemeWebAuthn, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedScheme, name)
	}
}

// Verify checks the envelope against the 32-byte hash it claims to sign and
// returns the signer address. Cryptography is delegated: secp256k1 recovery
// goes through go-ethereum's crypto package, P256 through crypto/ecdsa.
func Verify(hash common.Hash, env *Envelope) (common.Address, error) {
	switch env.Scheme {
	case SchemeSecp256k1:
		return verifySecp256k1(hash, env)
	case SchemeP256:
		return verifyP256(hash, env)
	case SchemeWebAuthn:
		return verifyWebAuthn(hash, env)
	default:
		return common.Address{}, fmt.Errorf("%w: %d", ErrUnsupportedScheme, env.Scheme)
	}
}

func verifySecp256k1(hash common.Hash, env *Envelope) (common.Address, error) {
	if len(env.Sig) != 65 {
		return common.Address{}, fmt.Errorf("%w: secp256k1 signature must be 65 bytes, got %d", ErrInvalidSignature, len(env.Sig))
	}
	pub, err := crypto.SigToPub(hash.Bytes(), env.Sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

func verifyP256(hash common.Hash, env *Envelope) (common.Address, error) {
	pub, err := ParseP256PublicKey(env.PublicKey)
	if err != nil {
		return common.Address{}, err
	}
	r, s, err := splitRS(env.Sig)
	if err != nil {
		return common.Address{}, err
	}
	if !ecdsa.Verify(pub, hash.Bytes(), r, s) {
		return common.Address{}, ErrInvalidSignature
	}
	return AddressFromPublicKey(env.PublicKey)
}

func verifyWebAuthn(hash common.Hash, env *Envelope) (common.Address, error) {
	if !challengeMatches(env.ClientDataJSON, hash) {
		return common.Address{}, ErrChallengeMismatch
	}
	pub, err := ParseP256PublicKey(env.PublicKey)
	if err != nil {
		return common.Address{}, err
	}
	r, s, err := splitRS(env.Sig)
	if err != nil {
		return common.Address{}, err
	}
	digest := WebAuthnDigest(env.AuthenticatorData, env.ClientDataJSON)
	if !ecdsa.Verify(pub, digest, r, s) {
		return common.Address{}, ErrInvalidSignature
	}
	return AddressFromPublicKey(env.PublicKey)
}

// WebAuthnDigest computes the digest a WebAuthn authenticator actually signs:
// sha256(authenticatorData || sha256(clientDataJSON)).
func WebAuthnDigest(authenticatorData, clientDataJSON []byte) []byte {
	cdHash := sha256.Sum256(clientDataJSON)
	msg := sha256.Sum256(append(append([]byte{}, authenticatorData...), cdHash[:]...))
	return msg[:]
}

// ChallengeString encodes a sig hash the way it appears in the clientDataJSON
// challenge field (base64url, unpadded).
func ChallengeString(hash common.Hash) string {
	return base64.RawURLEncoding.EncodeToString(hash.Bytes())
}

func challengeMatches(clientDataJSON []byte, hash common.Hash) bool {
	needle := []byte(`"challenge":"` + ChallengeString(hash) + `"`)
	return bytes.Contains(clientDataJSON, needle)
}

// ParseP256PublicKey parses a 65-byte uncompressed SEC1 point on P-256.
func ParseP256PublicKey(b []byte) (*ecdsa.PublicKey, error) {
	if len(b) != 65 || b[0] != 4 {
		return nil, fmt.Errorf("%w: want 65-byte uncompressed point", ErrInvalidPublicKey)
	}
	x := new(big.Int).SetBytes(b[1:33])
	y := new(big.Int).SetBytes(b[33:65])
	curve := elliptic.P256()
	if !curve.IsOnCurve(x, y) {
		return nil, fmt.Errorf("%w: point not on curve", ErrInvalidPublicKey)
	}
	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

// AddressFromPublicKey derives the Ethereum-style address for an uncompressed
// public key: keccak256 of the 64-byte point, last 20 bytes.
func AddressFromPublicKey(uncompressed []byte) (common.Address, error) {
	if len(uncompressed) != 65 || uncompressed[0] != 4 {
		return common.Address{}, fmt.Errorf("%w: want 65-byte uncompressed point", ErrInvalidPublicKey)
	}
	return common.BytesToAddress(crypto.Keccak256(uncompressed[1:])[12:]), nil
}

func splitRS(sig []byte) (r, s *big.Int, err error) {
	if len(sig) != 64 {
		return nil, nil, fmt.Errorf("%w: want 64-byte r||s, got %d bytes", ErrInvalidSignature, len(sig))
	}
	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:])
	half := new(big.Int).Rsh(elliptic.P256().Params().N, 1)
	if s.Cmp(half) > 0 {
		return nil, nil, fmt.Errorf("%w: high-s signature rejected", ErrInvalidSignature)
	}
	return r, s, nil
}

// NormalizeS replaces s with N-s when it is in the upper half of the P-256
// order. Verifiers reject malleable high-s signatures.
func NormalizeS(s *big.Int) *big.Int {
	n := elliptic.P256().Params().N
	half := new(big.Int).Rsh(n, 1)
	if s.Cmp(half) > 0 {
		return new(big.Int).Sub(n, s)
	}
	return s
}
