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

const validatorABIJSON = `[
  {"type":"function","name":"validatorCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"validatorAt","stateMutability":"view","inputs":[{"name":"index","type":"uint256"}],"outputs":[{"name":"operator","type":"address"},{"name":"stake","type":"uint256"},{"name":"commission","type":"uint16"},{"name":"active","type":"bool"}]},
  {"type":"function","name":"stakeOf","stateMutability":"view","inputs":[{"name":"operator","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"pendingRewards","stateMutability":"view","inputs":[{"name":"operator","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"stake","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"unstake","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"setCommission","stateMutability":"nonpayable","inputs":[{"name":"commission","type":"uint16"}],"outputs":[]},
  {"type":"event","name":"Staked","inputs":[{"name":"operator","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
  {"type":"event","name":"Unstaked","inputs":[{"name":"operator","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
  {"type":"event","name":"CommissionChanged","inputs":[{"name":"operator","type":"address","indexed":true},{"name":"commission","type":"uint16","indexed":false}]}
]`

// ValidatorABI is the parsed validator-set interface.
var ValidatorABI = contract.MustParseABI(validatorABIJSON)

func init() {
	contract.RegisterBuiltin(contract.Builtin{
		ID:          "validator",
		Name:        "Validator Set",
		Description: "Validator staking, commission and reward queries",
		Address:     ValidatorAddress,
		ABI:         ValidatorABI,
	})
}

// Validator wraps the validator-set built-in.
type Validator struct {
	binding
}

// ValidatorInfo is one validator-set entry.
type ValidatorInfo struct {
	Operator   common.Address
	Stake      *big.Int
	Commission uint16 // basis points
	Active     bool
}

// NewValidator binds the validator set. acct may be nil for read-only use.
func NewValidator(client *chain.Client, acct wallet.Account) *Validator {
	return &Validator{binding: newBinding(client, ValidatorABI, ValidatorAddress, acct)}
}

// List fetches the full validator set.
func (v *Validator) List(ctx context.Context) ([]ValidatorInfo, error) {
	countOut, err := v.callOne(ctx, "validatorCount")
	if err != nil {
		return nil, err
	}
	count, ok := countOut.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected validatorCount result type %T", countOut)
	}

	n := count.Uint64()
	out := make([]ValidatorInfo, 0, n)
	for i := uint64(0); i < n; i++ {
		info, err := v.At(ctx, new(big.Int).SetUint64(i))
		if err != nil {
			return nil, fmt.Errorf("validator %d: %w", i, err)
		}
		out = append(out, *info)
	}
	return out, nil
}

// At fetches the validator at index.
func (v *Validator) At(ctx context.Context, index *big.Int) (*ValidatorInfo, error) {
	out, err := v.call(ctx, "validatorAt", index)
	if err != nil {
		return nil, err
	}
	if len(out) != 4 {
		return nil, fmt.Errorf("validatorAt returned %d values, want 4", len(out))
	}
	info := &ValidatorInfo{}
	var ok bool
	if info.Operator, ok = out[0].(common.Address); !ok {
		return nil, fmt.Errorf("unexpected operator type %T", out[0])
	}
	if info.Stake, ok = out[1].(*big.Int); !ok {
		return nil, fmt.Errorf("unexpected stake type %T", out[1])
	}
	if info.Commission, ok = out[2].(uint16); !ok {
		return nil, fmt.Errorf("unexpected commission type %T", out[2])
	}
	if info.Active, ok = out[3].(bool); !ok {
		return nil, fmt.Errorf("unexpected active type %T", out[3])
	}
	return info, nil
}

// StakeOf returns operator's bonded stake.
func (v *Validator) StakeOf(ctx context.Context, operator common.Address) (*big.Int, error) {
	return v.bigOut(ctx, "stakeOf", operator)
}

// PendingRewards returns operator's unclaimed rewards.
func (v *Validator) PendingRewards(ctx context.Context, operator common.Address) (*big.Int, error) {
	return v.bigOut(ctx, "pendingRewards", operator)
}

// Stake bonds amount for the calling operator.
func (v *Validator) Stake(ctx context.Context, opts contract.SendOpts, amount *big.Int) (common.Hash, error) {
	return v.send(ctx, opts, "stake", amount)
}

// Unstake unbonds amount for the calling operator.
func (v *Validator) Unstake(ctx context.Context, opts contract.SendOpts, amount *big.Int) (common.Hash, error) {
	return v.send(ctx, opts, "unstake", amount)
}

// SetCommission updates the calling operator's commission (basis points).
func (v *Validator) SetCommission(ctx context.Context, opts contract.SendOpts, commission uint16) (common.Hash, error) {
	if commission > 10_000 {
		return common.Hash{}, fmt.Errorf("commission %d exceeds 100%%", commission)
	}
	return v.send(ctx, opts, "setCommission", commission)
}

func (v *Validator) bigOut(ctx context.Context, fn string, args ...any) (*big.Int, error) {
	out, err := v.callOne(ctx, fn, args...)
	if err != nil {
		return nil, err
	}
	n, ok := out.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s result type %T", fn, out)
	}
	return n, nil
}
