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

const feeABIJSON = `[
  {"type":"function","name":"feeTokenOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"isFeeToken","stateMutability":"view","inputs":[{"name":"token","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"quoteFee","stateMutability":"view","inputs":[{"name":"token","type":"address"},{"name":"gas","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"setFeeToken","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"}],"outputs":[]},
  {"type":"function","name":"enrollFeeToken","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"}],"outputs":[]},
  {"type":"event","name":"FeeTokenSet","inputs":[{"name":"account","type":"address","indexed":true},{"name":"token","type":"address","indexed":true}]},
  {"type":"event","name":"FeeTokenEnrolled","inputs":[{"name":"token","type":"address","indexed":true}]},
  {"type":"event","name":"FeePaid","inputs":[{"name":"payer","type":"address","indexed":true},{"name":"token","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]}
]`

// FeeABI is the parsed fee-manager interface.
var FeeABI = contract.MustParseABI(feeABIJSON)

func init() {
	contract.RegisterBuiltin(contract.Builtin{
		ID:          "fee",
		Name:        "Fee Manager",
		Description: "Per-account fee token selection and fee quoting",
		Address:     FeeManagerAddress,
		ABI:         FeeABI,
	})
}

// FeeManager wraps the fee-manager built-in.
type FeeManager struct {
	binding
}

// NewFeeManager binds the fee manager. acct may be nil for read-only use.
func NewFeeManager(client *chain.Client, acct wallet.Account) *FeeManager {
	return &FeeManager{binding: newBinding(client, FeeABI, FeeManagerAddress, acct)}
}

// FeeTokenOf returns the fee token configured for account. The zero address
// means the account pays in the native asset.
func (f *FeeManager) FeeTokenOf(ctx context.Context, account common.Address) (common.Address, error) {
	out, err := f.callOne(ctx, "feeTokenOf", account)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := out.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected feeTokenOf result type %T", out)
	}
	return addr, nil
}

// IsFeeToken reports whether token is enrolled as a fee token.
func (f *FeeManager) IsFeeToken(ctx context.Context, token common.Address) (bool, error) {
	out, err := f.callOne(ctx, "isFeeToken", token)
	if err != nil {
		return false, err
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("unexpected isFeeToken result type %T", out)
	}
	return ok, nil
}

// QuoteFee returns the amount of token needed to cover gas units at the
// current conversion rate.
func (f *FeeManager) QuoteFee(ctx context.Context, token common.Address, gas *big.Int) (*big.Int, error) {
	out, err := f.callOne(ctx, "quoteFee", token, gas)
	if err != nil {
		return nil, err
	}
	n, ok := out.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected quoteFee result type %T", out)
	}
	return n, nil
}

// SetFeeToken sets the caller's fee token.
func (f *FeeManager) SetFeeToken(ctx context.Context, opts contract.SendOpts, token common.Address) (common.Hash, error) {
	return f.send(ctx, opts, "setFeeToken", token)
}

// EnrollFeeToken enrolls a TIP-20 token as an accepted fee token. Governance
// only.
func (f *FeeManager) EnrollFeeToken(ctx context.Context, opts contract.SendOpts, token common.Address) (common.Hash, error) {
	return f.send(ctx, opts, "enrollFeeToken", token)
}
