package wallet

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/tempoxyz/tempo-go/internal/sig"
	"github.com/tempoxyz/tempo-go/internal/tempotx"
)

// Account produces scheme-tagged signature envelopes over 32-byte hashes.
// Implementations delegate the actual cryptography: secp256k1 to go-ethereum,
// P256 and WebAuthn to crypto/ecdsa.
type Account interface {
	Address() common.Address
	Scheme() uint8
	SignHash(hash common.Hash) (*sig.Envelope, error)
}

// FromWallet builds an Account for a stored wallet, pulling key material from
// the keystore. WebAuthn wallets are backed by a software authenticator over
// the stored P256 key.
func FromWallet(w *Wallet, ks KeystoreBackend) (Account, error) {
	if w.Type != TypeSigning {
		return nil, fmt.Errorf("wallet %q is watch-only and cannot sign", w.Name)
	}
	switch w.Scheme {
	case "", "secp256k1":
		return &SecpAccount{wallet: w, ks: ks}, nil
	case "p256":
		hexKey, err := ks.Retrieve(w.KeyRef)
		if err != nil {
			return nil, fmt.Errorf("retrieving key: %w", err)
		}
		key, err := ParseP256Hex(hexKey)
		if err != nil {
			return nil, fmt.Errorf("parsing private key: %w", err)
		}
		return NewP256Account(key), nil
	case "webauthn":
		hexKey, err := ks.Retrieve(w.KeyRef)
		if err != nil {
			return nil, fmt.Errorf("retrieving key: %w", err)
		}
		key, err := ParseP256Hex(hexKey)
		if err != nil {
			return nil, fmt.Errorf("parsing private key: %w", err)
		}
		return NewWebAuthnAccount(NewSoftwareAuthenticator(key, DefaultRelyingParty))
	default:
		return nil, fmt.Errorf("%w: %q", sig.ErrUnsupportedScheme, w.Scheme)
	}
}

// SecpAccount signs with a keystore-backed secp256k1 key.
type SecpAccount struct {
	wallet *Wallet
	ks     KeystoreBackend
}

// NewSecpAccount creates an account for the given signing wallet.
func NewSecpAccount(w *Wallet, ks KeystoreBackend) *SecpAccount {
	return &SecpAccount{wallet: w, ks: ks}
}

// Address returns the wallet's address.
func (a *SecpAccount) Address() common.Address {
	return common.HexToAddress(a.wallet.Address)
}

// Scheme returns the secp256k1 scheme tag.
func (a *SecpAccount) Scheme() uint8 { return sig.SchemeSecp256k1 }

// SignHash signs the hash and wraps the 65-byte recoverable signature.
func (a *SecpAccount) SignHash(hash common.Hash) (*sig.Envelope, error) {
	if a.wallet.Type != TypeSigning {
		return nil, fmt.Errorf("wallet %q is watch-only and cannot sign", a.wallet.Name)
	}

	hexKey, err := a.ks.Retrieve(a.wallet.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}

	privKey, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	raw, err := crypto.Sign(hash.Bytes(), privKey)
	if err != nil {
		return nil, fmt.Errorf("signing hash: %w", err)
	}

	return &sig.Envelope{Scheme: sig.SchemeSecp256k1, Sig: raw}, nil
}

// SignTx signs a tempo transaction in place with the account's envelope.
func SignTx(tx *tempotx.Tx, acct Account) error {
	hash, err := tx.SigHash()
	if err != nil {
		return err
	}
	env, err := acct.SignHash(hash)
	if err != nil {
		return fmt.Errorf("signing transaction: %w", err)
	}
	tx.Signature = *env
	return nil
}

// SignAsFeePayer attaches a sponsoring fee-payer signature. The transaction
// must already carry the sender signature; fee payers are always secp256k1.
func SignAsFeePayer(tx *tempotx.Tx, acct Account) error {
	if acct.Scheme() != sig.SchemeSecp256k1 {
		return fmt.Errorf("%w: fee payer must use secp256k1", sig.ErrUnsupportedScheme)
	}
	if len(tx.Signature.Sig) == 0 {
		return tempotx.ErrUnsigned
	}
	hash, err := tx.FeePayerSigHash()
	if err != nil {
		return err
	}
	env, err := acct.SignHash(hash)
	if err != nil {
		return fmt.Errorf("signing as fee payer: %w", err)
	}
	tx.FeePayerSig = env.Sig
	return nil
}
