package precompile

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tempoxyz/tempo-go/internal/chain"
	"github.com/tempoxyz/tempo-go/internal/contract"
	"github.com/tempoxyz/tempo-go/internal/wallet"
)

// ErrNoAccount is returned by write wrappers on a read-only binding.
var ErrNoAccount = errors.New("binding has no signing account")

// binding ties an ABI to a deployed address plus the generic caller/sender
// primitives. All action modules embed one.
type binding struct {
	addr   common.Address
	caller *contract.Caller
	sender *contract.Sender
}

func newBinding(client *chain.Client, contractABI abi.ABI, addr common.Address, acct wallet.Account) binding {
	b := binding{
		addr:   addr,
		caller: contract.NewCaller(client, contractABI),
	}
	if acct != nil {
		b.sender = contract.NewSender(client, contractABI, acct)
	}
	return b
}

// Address returns the bound contract address.
func (b *binding) Address() common.Address { return b.addr }

func (b *binding) call(ctx context.Context, fn string, args ...any) ([]any, error) {
	return b.caller.Call(ctx, b.addr, fn, args...)
}

func (b *binding) callOne(ctx context.Context, fn string, args ...any) (any, error) {
	return b.caller.CallOne(ctx, b.addr, fn, args...)
}

func (b *binding) send(ctx context.Context, opts contract.SendOpts, fn string, args ...any) (common.Hash, error) {
	if b.sender == nil {
		return common.Hash{}, ErrNoAccount
	}
	return b.sender.SendWithOpts(ctx, opts, b.addr, fn, args...)
}
