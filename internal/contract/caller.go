package contract

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tempoxyz/tempo-go/internal/chain"
)

// Caller calls read-only (view/pure) contract functions.
type Caller struct {
	client *chain.Client
	abi    abi.ABI
}

// NewCaller creates a Caller for a parsed ABI.
func NewCaller(client *chain.Client, contractABI abi.ABI) *Caller {
	return &Caller{client: client, abi: contractABI}
}

// Call calls a read function on a contract and returns the decoded outputs.
func (c *Caller) Call(ctx context.Context, addr common.Address, funcName string, args ...any) ([]any, error) {
	method, ok := c.abi.Methods[funcName]
	if !ok {
		return nil, fmt.Errorf("function %q not found in ABI", funcName)
	}
	if !method.IsConstant() {
		return nil, fmt.Errorf("function %q is not a read function (stateMutability: %s)", funcName, method.StateMutability)
	}

	calldata, err := c.abi.Pack(funcName, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding call: %w", err)
	}

	result, err := c.client.CallContract(ctx, addr, calldata)
	if err != nil {
		return nil, fmt.Errorf("contract call failed: %w", err)
	}

	decoded, err := c.abi.Unpack(funcName, result)
	if err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	return decoded, nil
}

// CallOne is Call for single-output functions.
func (c *Caller) CallOne(ctx context.Context, addr common.Address, funcName string, args ...any) (any, error) {
	out, err := c.Call(ctx, addr, funcName, args...)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("function %q returned %d values, want 1", funcName, len(out))
	}
	return out[0], nil
}
