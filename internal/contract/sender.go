package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tempoxyz/tempo-go/internal/chain"
	"github.com/tempoxyz/tempo-go/internal/tempotx"
	"github.com/tempoxyz/tempo-go/internal/wallet"
)

// SendOpts tune how a write transaction is built. The zero value picks the
// default nonce lane, native-asset fees, and node-estimated gas.
type SendOpts struct {
	Value    *big.Int       // native value attached to the call
	FeeToken common.Address // zero = pay fees in the native asset
	NonceKey uint64         // nonce lane; 0 is the protocol-default lane
	GasLimit uint64         // 0 = estimate via the node
	FeePayer wallet.Account // non-nil = sponsored transaction
	KeyAuth  *tempotx.KeyAuthorization
}

// Sender sends write transactions to contracts wrapped in tempo envelopes.
type Sender struct {
	client *chain.Client
	abi    abi.ABI
	acct   wallet.Account
}

// NewSender creates a Sender signing with acct.
func NewSender(client *chain.Client, contractABI abi.ABI, acct wallet.Account) *Sender {
	return &Sender{client: client, abi: contractABI, acct: acct}
}

// Send calls a write function and broadcasts the transaction.
// Returns the transaction hash.
func (s *Sender) Send(ctx context.Context, addr common.Address, funcName string, args ...any) (common.Hash, error) {
	return s.SendWithOpts(ctx, SendOpts{}, addr, funcName, args...)
}

// SendWithOpts is Send with explicit fee/nonce/sponsorship options.
func (s *Sender) SendWithOpts(ctx context.Context, opts SendOpts, addr common.Address, funcName string, args ...any) (common.Hash, error) {
	method, ok := s.abi.Methods[funcName]
	if !ok {
		return common.Hash{}, fmt.Errorf("function %q not found in ABI", funcName)
	}
	if method.IsConstant() {
		return common.Hash{}, fmt.Errorf("function %q is not a write function", funcName)
	}

	calldata, err := s.abi.Pack(funcName, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding call: %w", err)
	}

	call := tempotx.Call{To: &addr, Value: opts.Value, Data: calldata}
	if call.Value == nil {
		call.Value = big.NewInt(0)
	}

	tx, err := s.BuildTx(ctx, opts, call)
	if err != nil {
		return common.Hash{}, err
	}

	if err := wallet.SignTx(tx, s.acct); err != nil {
		return common.Hash{}, err
	}
	if opts.FeePayer != nil {
		if err := wallet.SignAsFeePayer(tx, opts.FeePayer); err != nil {
			return common.Hash{}, err
		}
	}

	hash, err := s.client.SendTransaction(ctx, tx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting transaction: %w", err)
	}
	return hash, nil
}

// BuildTx assembles an unsigned tempo envelope for the given call batch,
// filling in chain ID, gas pricing, and the lane nonce from the node.
func (s *Sender) BuildTx(ctx context.Context, opts SendOpts, calls ...tempotx.Call) (*tempotx.Tx, error) {
	if len(calls) == 0 {
		return nil, tempotx.ErrNoCalls
	}

	from := s.acct.Address()

	chainID, err := s.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting chain id: %w", err)
	}

	gasPrice, err := s.client.GasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting gas price: %w", err)
	}

	nonce, err := s.client.GetNonce(ctx, from, opts.NonceKey)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}

	gas := opts.GasLimit
	if gas == 0 {
		for _, call := range calls {
			est, err := s.client.EstimateGas(ctx, from, call.To, call.Data, call.Value)
			if err != nil {
				est = 100000 // fallback
			}
			gas += est
		}
	}

	return &tempotx.Tx{
		ChainID:   chainID,
		NonceKey:  opts.NonceKey,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		Calls:     calls,
		FeeToken:  opts.FeeToken,
		KeyAuth:   opts.KeyAuth,
	}, nil
}

// SendBatch signs and broadcasts a multi-call tempo transaction in one
// envelope. Calls execute atomically in order.
func (s *Sender) SendBatch(ctx context.Context, opts SendOpts, calls ...tempotx.Call) (common.Hash, error) {
	tx, err := s.BuildTx(ctx, opts, calls...)
	if err != nil {
		return common.Hash{}, err
	}
	if err := wallet.SignTx(tx, s.acct); err != nil {
		return common.Hash{}, err
	}
	if opts.FeePayer != nil {
		if err := wallet.SignAsFeePayer(tx, opts.FeePayer); err != nil {
			return common.Hash{}, err
		}
	}
	hash, err := s.client.SendTransaction(ctx, tx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting transaction: %w", err)
	}
	return hash, nil
}
