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

const rewardABIJSON = `[
  {"type":"function","name":"claimable","stateMutability":"view","inputs":[{"name":"account","type":"address"},{"name":"token","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"rewardRate","stateMutability":"view","inputs":[{"name":"token","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"claim","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"}],"outputs":[{"name":"amount","type":"uint256"}]},
  {"type":"function","name":"distribute","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"event","name":"RewardClaimed","inputs":[{"name":"account","type":"address","indexed":true},{"name":"token","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
  {"type":"event","name":"RewardDistributed","inputs":[{"name":"token","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]}
]`

// RewardABI is the parsed reward-distributor interface.
var RewardABI = contract.MustParseABI(rewardABIJSON)

func init() {
	contract.RegisterBuiltin(contract.Builtin{
		ID:          "reward",
		Name:        "Reward Distributor",
		Description: "Holder reward accrual and claims per fee token",
		Address:     RewardAddress,
		ABI:         RewardABI,
	})
}

// Reward wraps the reward-distributor built-in.
type Reward struct {
	binding
}

// NewReward binds the distributor. acct may be nil for read-only use.
func NewReward(client *chain.Client, acct wallet.Account) *Reward {
	return &Reward{binding: newBinding(client, RewardABI, RewardAddress, acct)}
}

// Claimable returns the amount of token account can claim right now.
func (r *Reward) Claimable(ctx context.Context, account, token common.Address) (*big.Int, error) {
	return r.bigOut(ctx, "claimable", account, token)
}

// RewardRate returns the per-block accrual rate for token.
func (r *Reward) RewardRate(ctx context.Context, token common.Address) (*big.Int, error) {
	return r.bigOut(ctx, "rewardRate", token)
}

// Claim pays out the caller's accrued rewards in token.
func (r *Reward) Claim(ctx context.Context, opts contract.SendOpts, token common.Address) (common.Hash, error) {
	return r.send(ctx, opts, "claim", token)
}

// Distribute tops up the reward pool for token. Issuer only.
func (r *Reward) Distribute(ctx context.Context, opts contract.SendOpts, token common.Address, amount *big.Int) (common.Hash, error) {
	return r.send(ctx, opts, "distribute", token, amount)
}

func (r *Reward) bigOut(ctx context.Context, fn string, args ...any) (*big.Int, error) {
	out, err := r.callOne(ctx, fn, args...)
	if err != nil {
		return nil, err
	}
	n, ok := out.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s result type %T", fn, out)
	}
	return n, nil
}
