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

const ammABIJSON = `[
  {"type":"function","name":"reserves","stateMutability":"view","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"}],"outputs":[{"name":"reserveA","type":"uint256"},{"name":"reserveB","type":"uint256"}]},
  {"type":"function","name":"lpBalanceOf","stateMutability":"view","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"addLiquidity","stateMutability":"nonpayable","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"amountA","type":"uint256"},{"name":"amountB","type":"uint256"},{"name":"minShares","type":"uint256"}],"outputs":[{"name":"shares","type":"uint256"}]},
  {"type":"function","name":"removeLiquidity","stateMutability":"nonpayable","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"shares","type":"uint256"},{"name":"minAmountA","type":"uint256"},{"name":"minAmountB","type":"uint256"}],"outputs":[{"name":"amountA","type":"uint256"},{"name":"amountB","type":"uint256"}]},
  {"type":"event","name":"LiquidityAdded","inputs":[{"name":"provider","type":"address","indexed":true},{"name":"tokenA","type":"address","indexed":true},{"name":"tokenB","type":"address","indexed":true},{"name":"amountA","type":"uint256","indexed":false},{"name":"amountB","type":"uint256","indexed":false},{"name":"shares","type":"uint256","indexed":false}]},
  {"type":"event","name":"LiquidityRemoved","inputs":[{"name":"provider","type":"address","indexed":true},{"name":"tokenA","type":"address","indexed":true},{"name":"tokenB","type":"address","indexed":true},{"name":"amountA","type":"uint256","indexed":false},{"name":"amountB","type":"uint256","indexed":false},{"name":"shares","type":"uint256","indexed":false}]}
]`

// AmmABI is the parsed liquidity-pool interface.
var AmmABI = contract.MustParseABI(ammABIJSON)

func init() {
	contract.RegisterBuiltin(contract.Builtin{
		ID:          "amm",
		Name:        "Liquidity Pools",
		Description: "Constant-product pools backing fee-token conversion",
		Address:     AmmAddress,
		ABI:         AmmABI,
	})
}

// Amm wraps the liquidity-pool built-in.
type Amm struct {
	binding
}

// NewAmm binds the AMM. acct may be nil for read-only use.
func NewAmm(client *chain.Client, acct wallet.Account) *Amm {
	return &Amm{binding: newBinding(client, AmmABI, AmmAddress, acct)}
}

// Reserves returns the pool reserves for a token pair.
func (a *Amm) Reserves(ctx context.Context, tokenA, tokenB common.Address) (reserveA, reserveB *big.Int, err error) {
	out, err := a.call(ctx, "reserves", tokenA, tokenB)
	if err != nil {
		return nil, nil, err
	}
	if len(out) != 2 {
		return nil, nil, fmt.Errorf("reserves returned %d values, want 2", len(out))
	}
	var ok bool
	if reserveA, ok = out[0].(*big.Int); !ok {
		return nil, nil, fmt.Errorf("unexpected reserve type %T", out[0])
	}
	if reserveB, ok = out[1].(*big.Int); !ok {
		return nil, nil, fmt.Errorf("unexpected reserve type %T", out[1])
	}
	return reserveA, reserveB, nil
}

// LPBalanceOf returns account's pool shares for a pair.
func (a *Amm) LPBalanceOf(ctx context.Context, tokenA, tokenB, account common.Address) (*big.Int, error) {
	out, err := a.callOne(ctx, "lpBalanceOf", tokenA, tokenB, account)
	if err != nil {
		return nil, err
	}
	n, ok := out.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected lpBalanceOf result type %T", out)
	}
	return n, nil
}

// AddLiquidity deposits both sides of a pair for pool shares.
func (a *Amm) AddLiquidity(ctx context.Context, opts contract.SendOpts, tokenA, tokenB common.Address, amountA, amountB, minShares *big.Int) (common.Hash, error) {
	return a.send(ctx, opts, "addLiquidity", tokenA, tokenB, amountA, amountB, minShares)
}

// RemoveLiquidity burns pool shares for the underlying tokens.
func (a *Amm) RemoveLiquidity(ctx context.Context, opts contract.SendOpts, tokenA, tokenB common.Address, shares, minAmountA, minAmountB *big.Int) (common.Hash, error) {
	return a.send(ctx, opts, "removeLiquidity", tokenA, tokenB, shares, minAmountA, minAmountB)
}
