package tempotx

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/tempoxyz/tempo-go/internal/sig"
)

// RPCCall is the wire shape of one batched call.
type RPCCall struct {
	To    *common.Address `json:"to,omitempty"`
	Value *hexutil.Big    `json:"value"`
	Data  hexutil.Bytes   `json:"data"`
}

// RPCSignature is the wire shape of a signature envelope.
type RPCSignature struct {
	Scheme            string        `json:"scheme"`
	Signature         hexutil.Bytes `json:"signature"`
	PublicKey         hexutil.Bytes `json:"publicKey,omitempty"`
	AuthenticatorData hexutil.Bytes `json:"authenticatorData,omitempty"`
	ClientDataJSON    hexutil.Bytes `json:"clientDataJSON,omitempty"`
}

// RPCKeyAuthorization is the wire shape of an access-key grant.
type RPCKeyAuthorization struct {
	Scheme    string         `json:"scheme"`
	PublicKey hexutil.Bytes  `json:"publicKey"`
	Expiry    hexutil.Uint64 `json:"expiry"`
	Signature hexutil.Bytes  `json:"signature"`
}

// RPCTransaction is the JSON shape a tempo node returns for a type-0x76
// transaction (eth_getTransactionByHash and block bodies).
type RPCTransaction struct {
	Type             hexutil.Uint64       `json:"type"`
	Hash             common.Hash          `json:"hash"`
	ChainID          *hexutil.Big         `json:"chainId"`
	NonceKey         hexutil.Uint64       `json:"nonceKey"`
	Nonce            hexutil.Uint64       `json:"nonce"`
	From             common.Address       `json:"from"`
	MaxPriorityFee   *hexutil.Big         `json:"maxPriorityFeePerGas"`
	MaxFeePerGas     *hexutil.Big         `json:"maxFeePerGas"`
	Gas              hexutil.Uint64       `json:"gas"`
	Calls            []RPCCall            `json:"calls"`
	FeeToken         common.Address       `json:"feeToken"`
	AccessList       types.AccessList     `json:"accessList"`
	KeyAuthorization *RPCKeyAuthorization `json:"keyAuthorization,omitempty"`
	Signature        *RPCSignature        `json:"signature,omitempty"`
	FeePayer         *common.Address      `json:"feePayer,omitempty"`
	FeePayerSig      hexutil.Bytes        `json:"feePayerSignature,omitempty"`

	// Inclusion info; null while pending.
	BlockHash   *common.Hash    `json:"blockHash,omitempty"`
	BlockNumber *hexutil.Big    `json:"blockNumber,omitempty"`
	TxIndex     *hexutil.Uint64 `json:"transactionIndex,omitempty"`
}

// RPCReceipt is the JSON shape of a tempo transaction receipt. It carries the
// standard EVM receipt fields plus the fee token actually charged.
type RPCReceipt struct {
	TxHash          common.Hash     `json:"transactionHash"`
	Status          hexutil.Uint64  `json:"status"`
	BlockHash       common.Hash     `json:"blockHash"`
	BlockNumber     *hexutil.Big    `json:"blockNumber"`
	GasUsed         hexutil.Uint64  `json:"gasUsed"`
	ContractAddress *common.Address `json:"contractAddress,omitempty"`
	Logs            []*types.Log    `json:"logs"`
	FeeToken        common.Address  `json:"feeToken"`
	FeeAmount       *hexutil.Big    `json:"feeAmount"`
}

// Receipt is the in-memory receipt shape.
type Receipt struct {
	TxHash          common.Hash
	Status          uint64 // 1 = success, 0 = reverted
	BlockHash       common.Hash
	BlockNumber     *big.Int
	GasUsed         uint64
	ContractAddress *common.Address
	Logs            []*types.Log
	FeeToken        common.Address
	FeeAmount       *big.Int
}

// Success reports whether the transaction executed without reverting.
func (r *Receipt) Success() bool { return r.Status == 1 }

// FormatTransaction converts a typed tx into its RPC wire shape. Hash, from
// and feePayer are derived from the envelope.
func FormatTransaction(tx *Tx) (*RPCTransaction, error) {
	hash, err := tx.Hash()
	if err != nil {
		return nil, err
	}
	from, err := tx.Sender()
	if err != nil {
		return nil, fmt.Errorf("recovering sender: %w", err)
	}

	out := &RPCTransaction{
		Type:           hexutil.Uint64(TxType),
		Hash:           hash,
		ChainID:        (*hexutil.Big)(tx.ChainID),
		NonceKey:       hexutil.Uint64(tx.NonceKey),
		Nonce:          hexutil.Uint64(tx.Nonce),
		From:           from,
		MaxPriorityFee: (*hexutil.Big)(tx.GasTipCap),
		MaxFeePerGas:   (*hexutil.Big)(tx.GasFeeCap),
		Gas:            hexutil.Uint64(tx.Gas),
		Calls:          make([]RPCCall, len(tx.Calls)),
		FeeToken:       tx.FeeToken,
		AccessList:     tx.AccessList,
		Signature: &RPCSignature{
			Scheme:            sig.SchemeName(tx.Signature.Scheme),
			Signature:         tx.Signature.Sig,
			PublicKey:         tx.Signature.PublicKey,
			AuthenticatorData: tx.Signature.AuthenticatorData,
			ClientDataJSON:    tx.Signature.ClientDataJSON,
		},
	}
	for i, c := range tx.Calls {
		out.Calls[i] = RPCCall{To: c.To, Value: (*hexutil.Big)(c.Value), Data: c.Data}
	}
	if tx.KeyAuth != nil {
		out.KeyAuthorization = &RPCKeyAuthorization{
			Scheme:    sig.SchemeName(tx.KeyAuth.Scheme),
			PublicKey: tx.KeyAuth.PublicKey,
			Expiry:    hexutil.Uint64(tx.KeyAuth.Expiry),
			Signature: tx.KeyAuth.Signature,
		}
	}
	if payer, ok, err := tx.FeePayer(); err != nil {
		return nil, fmt.Errorf("recovering fee payer: %w", err)
	} else if ok {
		out.FeePayer = &payer
		out.FeePayerSig = tx.FeePayerSig
	}
	return out, nil
}

// ParseTransaction converts an RPC wire transaction back into the typed form.
func ParseTransaction(rt *RPCTransaction) (*Tx, error) {
	if rt.Type != TxType {
		return nil, fmt.Errorf("%w: type 0x%02x", ErrWrongTxType, uint64(rt.Type))
	}
	tx := &Tx{
		ChainID:     (*big.Int)(rt.ChainID),
		NonceKey:    uint64(rt.NonceKey),
		Nonce:       uint64(rt.Nonce),
		GasTipCap:   (*big.Int)(rt.MaxPriorityFee),
		GasFeeCap:   (*big.Int)(rt.MaxFeePerGas),
		Gas:         uint64(rt.Gas),
		Calls:       make([]Call, len(rt.Calls)),
		FeeToken:    rt.FeeToken,
		AccessList:  rt.AccessList,
		FeePayerSig: rt.FeePayerSig,
	}
	for i, c := range rt.Calls {
		tx.Calls[i] = Call{To: c.To, Value: (*big.Int)(c.Value), Data: c.Data}
	}
	if rt.Signature != nil {
		scheme, err := sig.SchemeFromName(rt.Signature.Scheme)
		if err != nil {
			return nil, err
		}
		tx.Signature = sig.Envelope{
			Scheme:            scheme,
			Sig:               rt.Signature.Signature,
			PublicKey:         rt.Signature.PublicKey,
			AuthenticatorData: rt.Signature.AuthenticatorData,
			ClientDataJSON:    rt.Signature.ClientDataJSON,
		}
	}
	if rt.KeyAuthorization != nil {
		scheme, err := sig.SchemeFromName(rt.KeyAuthorization.Scheme)
		if err != nil {
			return nil, fmt.Errorf("key authorization: %w", err)
		}
		tx.KeyAuth = &KeyAuthorization{
			Scheme:    scheme,
			PublicKey: rt.KeyAuthorization.PublicKey,
			Expiry:    uint64(rt.KeyAuthorization.Expiry),
			Signature: rt.KeyAuthorization.Signature,
		}
	}
	if err := tx.validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// ParseReceipt converts an RPC receipt into the in-memory shape.
func ParseReceipt(rr *RPCReceipt) *Receipt {
	rec := &Receipt{
		TxHash:          rr.TxHash,
		Status:          uint64(rr.Status),
		BlockHash:       rr.BlockHash,
		BlockNumber:     (*big.Int)(rr.BlockNumber),
		GasUsed:         uint64(rr.GasUsed),
		ContractAddress: rr.ContractAddress,
		Logs:            rr.Logs,
		FeeToken:        rr.FeeToken,
		FeeAmount:       (*big.Int)(rr.FeeAmount),
	}
	return rec
}
