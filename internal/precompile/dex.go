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

const dexABIJSON = `[
  {"type":"function","name":"quote","stateMutability":"view","inputs":[{"name":"tokenIn","type":"address"},{"name":"tokenOut","type":"address"},{"name":"amountIn","type":"uint256"}],"outputs":[{"name":"amountOut","type":"uint256"}]},
  {"type":"function","name":"orderOf","stateMutability":"view","inputs":[{"name":"orderId","type":"uint256"}],"outputs":[{"name":"owner","type":"address"},{"name":"tokenIn","type":"address"},{"name":"tokenOut","type":"address"},{"name":"amountIn","type":"uint256"},{"name":"remaining","type":"uint256"},{"name":"limitPrice","type":"uint256"}]},
  {"type":"function","name":"swapExactIn","stateMutability":"nonpayable","inputs":[{"name":"tokenIn","type":"address"},{"name":"tokenOut","type":"address"},{"name":"amountIn","type":"uint256"},{"name":"minAmountOut","type":"uint256"},{"name":"recipient","type":"address"}],"outputs":[{"name":"amountOut","type":"uint256"}]},
  {"type":"function","name":"placeOrder","stateMutability":"nonpayable","inputs":[{"name":"tokenIn","type":"address"},{"name":"tokenOut","type":"address"},{"name":"amountIn","type":"uint256"},{"name":"limitPrice","type":"uint256"}],"outputs":[{"name":"orderId","type":"uint256"}]},
  {"type":"function","name":"cancelOrder","stateMutability":"nonpayable","inputs":[{"name":"orderId","type":"uint256"}],"outputs":[]},
  {"type":"event","name":"Swap","inputs":[{"name":"sender","type":"address","indexed":true},{"name":"tokenIn","type":"address","indexed":true},{"name":"tokenOut","type":"address","indexed":true},{"name":"amountIn","type":"uint256","indexed":false},{"name":"amountOut","type":"uint256","indexed":false}]},
  {"type":"event","name":"OrderPlaced","inputs":[{"name":"orderId","type":"uint256","indexed":true},{"name":"owner","type":"address","indexed":true},{"name":"amountIn","type":"uint256","indexed":false},{"name":"limitPrice","type":"uint256","indexed":false}]},
  {"type":"event","name":"OrderFilled","inputs":[{"name":"orderId","type":"uint256","indexed":true},{"name":"amountFilled","type":"uint256","indexed":false}]},
  {"type":"event","name":"OrderCancelled","inputs":[{"name":"orderId","type":"uint256","indexed":true}]}
]`

// DexABI is the parsed stable-DEX interface.
var DexABI = contract.MustParseABI(dexABIJSON)

func init() {
	contract.RegisterBuiltin(contract.Builtin{
		ID:          "dex",
		Name:        "Stable DEX",
		Description: "Built-in limit-order venue between enrolled fee tokens",
		Address:     DexAddress,
		ABI:         DexABI,
	})
}

// Dex wraps the stable-DEX built-in.
type Dex struct {
	binding
}

// Order is a resting DEX order.
type Order struct {
	ID         *big.Int
	Owner      common.Address
	TokenIn    common.Address
	TokenOut   common.Address
	AmountIn   *big.Int
	Remaining  *big.Int
	LimitPrice *big.Int
}

// NewDex binds the DEX. acct may be nil for read-only use.
func NewDex(client *chain.Client, acct wallet.Account) *Dex {
	return &Dex{binding: newBinding(client, DexABI, DexAddress, acct)}
}

// Quote returns the output amount for swapping amountIn at the current rate.
func (d *Dex) Quote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) (*big.Int, error) {
	out, err := d.callOne(ctx, "quote", tokenIn, tokenOut, amountIn)
	if err != nil {
		return nil, err
	}
	n, ok := out.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected quote result type %T", out)
	}
	return n, nil
}

// OrderOf fetches a resting order by ID.
func (d *Dex) OrderOf(ctx context.Context, orderID *big.Int) (*Order, error) {
	out, err := d.call(ctx, "orderOf", orderID)
	if err != nil {
		return nil, err
	}
	if len(out) != 6 {
		return nil, fmt.Errorf("orderOf returned %d values, want 6", len(out))
	}
	order := &Order{ID: orderID}
	var ok bool
	if order.Owner, ok = out[0].(common.Address); !ok {
		return nil, fmt.Errorf("unexpected owner type %T", out[0])
	}
	order.TokenIn, _ = out[1].(common.Address)
	order.TokenOut, _ = out[2].(common.Address)
	if order.AmountIn, ok = out[3].(*big.Int); !ok {
		return nil, fmt.Errorf("unexpected amountIn type %T", out[3])
	}
	order.Remaining, _ = out[4].(*big.Int)
	order.LimitPrice, _ = out[5].(*big.Int)
	return order, nil
}

// SwapExactIn swaps amountIn of tokenIn for at least minAmountOut of
// tokenOut, delivered to recipient.
func (d *Dex) SwapExactIn(ctx context.Context, opts contract.SendOpts, tokenIn, tokenOut common.Address, amountIn, minAmountOut *big.Int, recipient common.Address) (common.Hash, error) {
	return d.send(ctx, opts, "swapExactIn", tokenIn, tokenOut, amountIn, minAmountOut, recipient)
}

// PlaceOrder places a limit order selling amountIn of tokenIn.
func (d *Dex) PlaceOrder(ctx context.Context, opts contract.SendOpts, tokenIn, tokenOut common.Address, amountIn, limitPrice *big.Int) (common.Hash, error) {
	return d.send(ctx, opts, "placeOrder", tokenIn, tokenOut, amountIn, limitPrice)
}

// CancelOrder cancels a resting order owned by the caller.
func (d *Dex) CancelOrder(ctx context.Context, opts contract.SendOpts, orderID *big.Int) (common.Hash, error) {
	return d.send(ctx, opts, "cancelOrder", orderID)
}
