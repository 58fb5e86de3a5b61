package precompile

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tempoxyz/tempo-go/internal/chain"
	"github.com/tempoxyz/tempo-go/internal/contract"
	"github.com/tempoxyz/tempo-go/internal/wallet"
)

// tokenABIJSON is the TIP-20 fee-token interface: ERC-20 plus issuer-gated
// mint/burn.
const tokenABIJSON = `[
  {"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"burn","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"event","name":"Transfer","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
  {"type":"event","name":"Approval","inputs":[{"name":"owner","type":"address","indexed":true},{"name":"spender","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
  {"type":"event","name":"Mint","inputs":[{"name":"to","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
  {"type":"event","name":"Burn","inputs":[{"name":"from","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]}
]`

// TokenABI is the parsed TIP-20 interface.
var TokenABI = contract.MustParseABI(tokenABIJSON)

func init() {
	contract.RegisterBuiltin(contract.Builtin{
		ID:          "token",
		Name:        "TIP-20 Fee Token",
		Description: "ERC-20 compatible fee token with issuer mint/burn",
		Address:     NativeFeeToken,
		ABI:         TokenABI,
	})
}

// Token wraps one TIP-20 token contract. Unlike the singleton built-ins,
// tokens exist at many addresses.
type Token struct {
	binding
}

// TokenMetadata bundles the descriptive token fields.
type TokenMetadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// NewToken binds a token address. acct may be nil for read-only use.
func NewToken(client *chain.Client, token common.Address, acct wallet.Account) *Token {
	return &Token{binding: newBinding(client, TokenABI, token, acct)}
}

// Metadata fetches name, symbol and decimals.
func (t *Token) Metadata(ctx context.Context) (*TokenMetadata, error) {
	name, err := t.callOne(ctx, "name")
	if err != nil {
		return nil, err
	}
	symbol, err := t.callOne(ctx, "symbol")
	if err != nil {
		return nil, err
	}
	decimals, err := t.callOne(ctx, "decimals")
	if err != nil {
		return nil, err
	}
	md := &TokenMetadata{}
	var ok bool
	if md.Name, ok = name.(string); !ok {
		return nil, fmt.Errorf("unexpected name type %T", name)
	}
	if md.Symbol, ok = symbol.(string); !ok {
		return nil, fmt.Errorf("unexpected symbol type %T", symbol)
	}
	if md.Decimals, ok = decimals.(uint8); !ok {
		return nil, fmt.Errorf("unexpected decimals type %T", decimals)
	}
	return md, nil
}

// TotalSupply returns the token's total supply.
func (t *Token) TotalSupply(ctx context.Context) (*big.Int, error) {
	return t.bigOut(ctx, "totalSupply")
}

// BalanceOf returns account's balance.
func (t *Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return t.bigOut(ctx, "balanceOf", account)
}

// Allowance returns the amount spender may move on owner's behalf.
func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return t.bigOut(ctx, "allowance", owner, spender)
}

// Transfer moves amount to the recipient.
func (t *Token) Transfer(ctx context.Context, opts contract.SendOpts, to common.Address, amount *big.Int) (common.Hash, error) {
	return t.send(ctx, opts, "transfer", to, amount)
}

// TransferFrom moves amount using a prior approval.
func (t *Token) TransferFrom(ctx context.Context, opts contract.SendOpts, from, to common.Address, amount *big.Int) (common.Hash, error) {
	return t.send(ctx, opts, "transferFrom", from, to, amount)
}

// Approve grants spender the right to move amount.
func (t *Token) Approve(ctx context.Context, opts contract.SendOpts, spender common.Address, amount *big.Int) (common.Hash, error) {
	return t.send(ctx, opts, "approve", spender, amount)
}

// Mint issues new supply to an address. Issuer only.
func (t *Token) Mint(ctx context.Context, opts contract.SendOpts, to common.Address, amount *big.Int) (common.Hash, error) {
	return t.send(ctx, opts, "mint", to, amount)
}

// Burn destroys supply held by from. Issuer only.
func (t *Token) Burn(ctx context.Context, opts contract.SendOpts, from common.Address, amount *big.Int) (common.Hash, error) {
	return t.send(ctx, opts, "burn", from, amount)
}

func (t *Token) bigOut(ctx context.Context, fn string, args ...any) (*big.Int, error) {
	out, err := t.callOne(ctx, fn, args...)
	if err != nil {
		return nil, err
	}
	n, ok := out.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s result type %T", fn, out)
	}
	return n, nil
}

// FormatUnits renders a raw token amount as a decimal string. A nil amount
// renders as "0"; nodes omit or null amount fields in several responses.
func FormatUnits(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	if decimals == 0 {
		return raw.String()
	}
	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	f := new(big.Float).SetInt(raw)
	f.Quo(f, new(big.Float).SetInt(div))
	return f.Text('f', int(decimals))
}

// ParseUnits converts a decimal string into a raw token amount.
func ParseUnits(s string, decimals uint8) (*big.Int, error) {
	f, ok := new(big.Float).SetString(s)
	if !ok {
		return nil, fmt.Errorf("invalid decimal amount: %q", s)
	}
	mul := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	f.Mul(f, mul)
	out, _ := f.Int(nil)
	return out, nil
}
