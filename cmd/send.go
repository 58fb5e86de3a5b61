package cmd

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/tempoxyz/tempo-go/internal/contract"
	"github.com/tempoxyz/tempo-go/internal/precompile"
	"github.com/tempoxyz/tempo-go/internal/tempotx"
	"github.com/tempoxyz/tempo-go/internal/ui"
)

var (
	sendOpts  sendFlags
	sendData  string
	sendCalls []string
)

var sendCmd = &cobra.Command{
	Use:   "send [to] [amount]",
	Short: "Send value or raw calls in one tempo envelope",
	Long: `Send native value, raw calldata, or an atomic batch of calls.

A single transfer takes a recipient and an amount in whole native units.
Batches are built from repeated --call flags; all calls in a batch
execute atomically in order, in one transaction.

  tempo send 0xBOB... 1.5
  tempo send 0xCONTRACT... 0 --data 0xa9059cbb...
  tempo send --call "0xA...:1.0" --call "0xB...:0:0xdeadbeef"

Gas can be paid in any enrolled fee token (--fee-token) or sponsored by
another wallet (--fee-payer). --nonce-key picks an independent nonce
lane so unrelated flows never block each other.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		calls, err := buildCalls(args)
		if err != nil {
			return err
		}

		acct, err := loadAccount(sendOpts.wallet)
		if err != nil {
			return err
		}
		opts, err := sendOpts.sendOpts(0)
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		spin := ui.NewSpinner(fmt.Sprintf("Sending %d call(s)...", len(calls)))
		spin.Start()
		sender := contract.NewSender(client, gethabi.ABI{}, acct)
		hash, err := sender.SendBatch(ctx, opts, calls...)
		if err != nil {
			spin.Stop()
			return err
		}
		spin.StopWithMsg(ui.Success("Sent: " + hash.Hex()))

		return waitAndReport(ctx, client, hash)
	},
}

// buildCalls assembles the call batch from positional args and --call flags.
func buildCalls(args []string) ([]tempotx.Call, error) {
	var calls []tempotx.Call

	if len(args) > 0 {
		if len(args) < 2 {
			return nil, fmt.Errorf("usage: tempo send <to> <amount> [--data 0x...]")
		}
		to, err := resolveAddress(args[0])
		if err != nil {
			return nil, err
		}
		value, err := precompile.ParseUnits(args[1], 18)
		if err != nil {
			return nil, err
		}
		var data []byte
		if sendData != "" {
			data, err = hexutil.Decode(sendData)
			if err != nil {
				return nil, fmt.Errorf("invalid --data: %w", err)
			}
		}
		calls = append(calls, tempotx.Call{To: &to, Value: value, Data: data})
	}

	for _, spec := range sendCalls {
		call, err := parseCallSpec(spec)
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}

	if len(calls) == 0 {
		return nil, fmt.Errorf("nothing to send — pass <to> <amount> or at least one --call")
	}
	return calls, nil
}

// parseCallSpec parses "to[:value[:data]]" into a call.
func parseCallSpec(spec string) (tempotx.Call, error) {
	parts := strings.SplitN(spec, ":", 3)
	if !common.IsHexAddress(parts[0]) {
		return tempotx.Call{}, fmt.Errorf("invalid call target %q", parts[0])
	}
	to := common.HexToAddress(parts[0])
	call := tempotx.Call{To: &to, Value: big.NewInt(0)}

	if len(parts) > 1 && parts[1] != "" {
		value, err := precompile.ParseUnits(parts[1], 18)
		if err != nil {
			return tempotx.Call{}, fmt.Errorf("invalid call value %q: %w", parts[1], err)
		}
		call.Value = value
	}
	if len(parts) > 2 && parts[2] != "" {
		data, err := hexutil.Decode(parts[2])
		if err != nil {
			return tempotx.Call{}, fmt.Errorf("invalid call data %q: %w", parts[2], err)
		}
		call.Data = data
	}
	return call, nil
}

func init() {
	registerSendFlags(sendCmd, &sendOpts)
	sendCmd.Flags().StringVar(&sendData, "data", "", "raw calldata for a single call")
	sendCmd.Flags().StringArrayVar(&sendCalls, "call", nil, `batched call as "to[:value[:data]]" (repeatable)`)
}
