package precompile

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tempoxyz/tempo-go/internal/chain"
	"github.com/tempoxyz/tempo-go/internal/contract"
	"github.com/tempoxyz/tempo-go/internal/wallet"
)

const policyABIJSON = `[
  {"type":"function","name":"policyOf","stateMutability":"view","inputs":[{"name":"token","type":"address"}],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"isAuthorized","stateMutability":"view","inputs":[{"name":"token","type":"address"},{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"isFrozen","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"setPolicy","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"policy","type":"uint8"}],"outputs":[]},
  {"type":"function","name":"authorize","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"account","type":"address"}],"outputs":[]},
  {"type":"function","name":"revoke","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"account","type":"address"}],"outputs":[]},
  {"type":"function","name":"freeze","stateMutability":"nonpayable","inputs":[{"name":"account","type":"address"}],"outputs":[]},
  {"type":"function","name":"unfreeze","stateMutability":"nonpayable","inputs":[{"name":"account","type":"address"}],"outputs":[]},
  {"type":"event","name":"PolicySet","inputs":[{"name":"token","type":"address","indexed":true},{"name":"policy","type":"uint8","indexed":false}]},
  {"type":"event","name":"AccountAuthorized","inputs":[{"name":"token","type":"address","indexed":true},{"name":"account","type":"address","indexed":true}]},
  {"type":"event","name":"AccountRevoked","inputs":[{"name":"token","type":"address","indexed":true},{"name":"account","type":"address","indexed":true}]},
  {"type":"event","name":"AccountFrozen","inputs":[{"name":"account","type":"address","indexed":true}]},
  {"type":"event","name":"AccountUnfrozen","inputs":[{"name":"account","type":"address","indexed":true}]}
]`

// Transfer policy modes.
const (
	PolicyOpen      uint8 = 0 // anyone can hold and transfer
	PolicyAllowlist uint8 = 1 // only authorized accounts
	PolicyIssuer    uint8 = 2 // transfers only to/from the issuer
)

// PolicyABI is the parsed transfer-policy interface.
var PolicyABI = contract.MustParseABI(policyABIJSON)

func init() {
	contract.RegisterBuiltin(contract.Builtin{
		ID:          "policy",
		Name:        "Transfer Policy Registry",
		Description: "Per-token transfer policies, allowlists and freezes",
		Address:     PolicyAddress,
		ABI:         PolicyABI,
	})
}

// Policy wraps the transfer-policy built-in.
type Policy struct {
	binding
}

// NewPolicy binds the policy registry. acct may be nil for read-only use.
func NewPolicy(client *chain.Client, acct wallet.Account) *Policy {
	return &Policy{binding: newBinding(client, PolicyABI, PolicyAddress, acct)}
}

// PolicyOf returns the transfer policy mode for token.
func (p *Policy) PolicyOf(ctx context.Context, token common.Address) (uint8, error) {
	out, err := p.callOne(ctx, "policyOf", token)
	if err != nil {
		return 0, err
	}
	mode, ok := out.(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected policyOf result type %T", out)
	}
	return mode, nil
}

// IsAuthorized reports whether account may hold token under its policy.
func (p *Policy) IsAuthorized(ctx context.Context, token, account common.Address) (bool, error) {
	return p.boolOut(ctx, "isAuthorized", token, account)
}

// IsFrozen reports whether account is globally frozen.
func (p *Policy) IsFrozen(ctx context.Context, account common.Address) (bool, error) {
	return p.boolOut(ctx, "isFrozen", account)
}

// SetPolicy sets the transfer policy for token. Issuer only.
func (p *Policy) SetPolicy(ctx context.Context, opts contract.SendOpts, token common.Address, policy uint8) (common.Hash, error) {
	if policy > PolicyIssuer {
		return common.Hash{}, fmt.Errorf("unknown policy mode %d", policy)
	}
	return p.send(ctx, opts, "setPolicy", token, policy)
}

// Authorize adds account to token's allowlist. Issuer only.
func (p *Policy) Authorize(ctx context.Context, opts contract.SendOpts, token, account common.Address) (common.Hash, error) {
	return p.send(ctx, opts, "authorize", token, account)
}

// Revoke removes account from token's allowlist. Issuer only.
func (p *Policy) Revoke(ctx context.Context, opts contract.SendOpts, token, account common.Address) (common.Hash, error) {
	return p.send(ctx, opts, "revoke", token, account)
}

// Freeze blocks all transfers for account. Governance only.
func (p *Policy) Freeze(ctx context.Context, opts contract.SendOpts, account common.Address) (common.Hash, error) {
	return p.send(ctx, opts, "freeze", account)
}

// Unfreeze lifts a freeze. Governance only.
func (p *Policy) Unfreeze(ctx context.Context, opts contract.SendOpts, account common.Address) (common.Hash, error) {
	return p.send(ctx, opts, "unfreeze", account)
}

func (p *Policy) boolOut(ctx context.Context, fn string, args ...any) (bool, error) {
	out, err := p.callOne(ctx, fn, args...)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("unexpected %s result type %T", fn, out)
	}
	return b, nil
}
