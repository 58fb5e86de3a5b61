// Package tempotx implements the tempo transaction envelope: selector byte
// 0x76 followed by an RLP payload. The envelope extends the standard EVM
// dynamic-fee transaction with batched calls, a 2-D nonce (nonce key lanes),
// an ERC-20 fee token, an optional access-key authorization, and an optional
// fee-payer signature. Signatures themselves are scheme-tagged envelopes so a
// tempo transaction can be signed with secp256k1, P256, or a WebAuthn
// authenticator.
package tempotx

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/tempoxyz/tempo-go/internal/sig"
)

// TxType is the tempo envelope selector byte.
const TxType = 0x76

// Errors.
var (
	ErrWrongTxType  = errors.New("not a tempo transaction envelope")
	ErrEmptyPayload = errors.New("empty transaction payload")
	ErrNoCalls      = errors.New("tempo transaction must contain at least one call")
	ErrUnsigned     = errors.New("transaction is not signed")
	ErrGasFeeCapNil = errors.New("gas fee cap must be set")
)

// Call is one call in a tempo transaction batch. A nil To deploys a contract
// with Data as init code.
type Call struct {
	To    *common.Address `rlp:"nil"`
	Value *big.Int
	Data  []byte
}

// KeyAuthorization grants a session access key the right to sign on behalf of
// the root account. The grant itself is signed by the root secp256k1 key.
type KeyAuthorization struct {
	Scheme    uint8  // scheme of the authorized access key
	PublicKey []byte // uncompressed public key of the access key
	Expiry    uint64 // unix seconds; 0 = never expires
	Signature []byte // 65-byte root-key signature over the grant
}

// Tx is a tempo transaction (envelope type 0x76).
type Tx struct {
	ChainID     *big.Int
	NonceKey    uint64 // nonce lane; 0 is the protocol-default lane
	Nonce       uint64 // sequence number within the lane
	GasTipCap   *big.Int
	GasFeeCap   *big.Int
	Gas         uint64
	Calls       []Call
	FeeToken    common.Address // zero address = pay fees in the native asset
	AccessList  types.AccessList
	KeyAuth     *KeyAuthorization `rlp:"nil"`
	Signature   sig.Envelope
	FeePayerSig []byte // 65-byte secp256k1 signature; empty when self-paid
}

// sigHashPayload is the envelope without any signatures: what the sender
// commits to.
type sigHashPayload struct {
	ChainID    *big.Int
	NonceKey   uint64
	Nonce      uint64
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	Calls      []Call
	FeeToken   common.Address
	AccessList types.AccessList
	KeyAuth    *KeyAuthorization `rlp:"nil"`
}

// feePayerHashPayload additionally includes the sender signature, so the fee
// payer commits to the exact sender-signed transaction.
type feePayerHashPayload struct {
	ChainID    *big.Int
	NonceKey   uint64
	Nonce      uint64
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	Calls      []Call
	FeeToken   common.Address
	AccessList types.AccessList
	KeyAuth    *KeyAuthorization `rlp:"nil"`
	Signature  sig.Envelope
}

func (tx *Tx) sigPayload() *sigHashPayload {
	return &sigHashPayload{
		ChainID:    tx.ChainID,
		NonceKey:   tx.NonceKey,
		Nonce:      tx.Nonce,
		GasTipCap:  tx.GasTipCap,
		GasFeeCap:  tx.GasFeeCap,
		Gas:        tx.Gas,
		Calls:      tx.Calls,
		FeeToken:   tx.FeeToken,
		AccessList: tx.AccessList,
		KeyAuth:    tx.KeyAuth,
	}
}

// SigHash returns the hash the sender signs.
func (tx *Tx) SigHash() (common.Hash, error) {
	return prefixedRLPHash(tx.sigPayload())
}

// FeePayerSigHash returns the hash a sponsoring fee payer signs.
func (tx *Tx) FeePayerSigHash() (common.Hash, error) {
	p := tx.sigPayload()
	return prefixedRLPHash(&feePayerHashPayload{
		ChainID:    p.ChainID,
		NonceKey:   p.NonceKey,
		Nonce:      p.Nonce,
		GasTipCap:  p.GasTipCap,
		GasFeeCap:  p.GasFeeCap,
		Gas:        p.Gas,
		Calls:      p.Calls,
		FeeToken:   p.FeeToken,
		AccessList: p.AccessList,
		KeyAuth:    p.KeyAuth,
		Signature:  tx.Signature,
	})
}

// Hash returns the transaction hash: keccak256 of the full encoded envelope.
func (tx *Tx) Hash() (common.Hash, error) {
	raw, err := tx.EncodeBinary()
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(raw), nil
}

// EncodeBinary serializes the envelope: 0x76 || rlp(fields).
func (tx *Tx) EncodeBinary() ([]byte, error) {
	if err := tx.validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteByte(TxType)
	if err := rlp.Encode(&buf, tx); err != nil {
		return nil, fmt.Errorf("encoding tempo tx: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeBinary parses a raw envelope produced by EncodeBinary.
func DecodeBinary(raw []byte) (*Tx, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyPayload
	}
	if raw[0] != TxType {
		return nil, fmt.Errorf("%w: type byte 0x%02x", ErrWrongTxType, raw[0])
	}
	var tx Tx
	if err := rlp.DecodeBytes(raw[1:], &tx); err != nil {
		return nil, fmt.Errorf("decoding tempo tx: %w", err)
	}
	if err := tx.validate(); err != nil {
		return nil, err
	}
	return &tx, nil
}

// Sender verifies the sender signature envelope and returns the signer
// address. Fails with ErrUnsigned on an unsigned transaction.
func (tx *Tx) Sender() (common.Address, error) {
	if len(tx.Signature.Sig) == 0 {
		return common.Address{}, ErrUnsigned
	}
	hash, err := tx.SigHash()
	if err != nil {
		return common.Address{}, err
	}
	return sig.Verify(hash, &tx.Signature)
}

// FeePayer returns the sponsoring fee payer address recovered from the
// fee-payer signature, or (sender, false) semantics: ok is false when the
// transaction is self-paid.
func (tx *Tx) FeePayer() (common.Address, bool, error) {
	if len(tx.FeePayerSig) == 0 {
		return common.Address{}, false, nil
	}
	hash, err := tx.FeePayerSigHash()
	if err != nil {
		return common.Address{}, false, err
	}
	addr, err := sig.Verify(hash, &sig.Envelope{Scheme: sig.SchemeSecp256k1, Sig: tx.FeePayerSig})
	if err != nil {
		return common.Address{}, false, err
	}
	return addr, true, nil
}

// Cost returns gas * gasFeeCap plus the sum of call values, the worst-case
// balance needed to execute.
func (tx *Tx) Cost() *big.Int {
	total := new(big.Int)
	if tx.GasFeeCap != nil {
		total.Mul(new(big.Int).SetUint64(tx.Gas), tx.GasFeeCap)
	}
	for _, c := range tx.Calls {
		if c.Value != nil {
			total.Add(total, c.Value)
		}
	}
	return total
}

func (tx *Tx) validate() error {
	if len(tx.Calls) == 0 {
		return ErrNoCalls
	}
	if tx.GasFeeCap == nil {
		return ErrGasFeeCapNil
	}
	if s := tx.Signature.Scheme; len(tx.Signature.Sig) > 0 && s > sig.SchemeWebAuthn {
		return fmt.Errorf("%w: %d", sig.ErrUnsupportedScheme, s)
	}
	if tx.KeyAuth != nil && tx.KeyAuth.Scheme > sig.SchemeWebAuthn {
		return fmt.Errorf("key authorization: %w: %d", sig.ErrUnsupportedScheme, tx.KeyAuth.Scheme)
	}
	return nil
}

func prefixedRLPHash(v any) (common.Hash, error) {
	var buf bytes.Buffer
	buf.WriteByte(TxType)
	if err := rlp.Encode(&buf, v); err != nil {
		return common.Hash{}, fmt.Errorf("encoding sig payload: %w", err)
	}
	return crypto.Keccak256Hash(buf.Bytes()), nil
}
