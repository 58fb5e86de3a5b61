package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/tempoxyz/tempo-go/internal/config"
	"github.com/tempoxyz/tempo-go/internal/contract"
	"github.com/tempoxyz/tempo-go/internal/ui"
)

var (
	callSendOpts sendFlags
	callWrite    bool
)

var callCmd = &cobra.Command{
	Use:   "call <contract> <function> [args...]",
	Short: "Call a contract function",
	Long: `Call a function on a built-in or registered contract.

View functions are executed with eth_call and the decoded outputs are
printed. With --send, state-changing functions are signed and broadcast
in a tempo envelope instead.

Arguments are coerced from strings by the function's ABI types:
addresses, integers (decimal or 0x hex), booleans, strings and 0x bytes.

  tempo call token balanceOf 0xALICE...
  tempo call dex quote 0xUSDT... 0xEUROC... 1000000
  tempo call fee setFeeToken 0xUSDT... --send`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, abis, _, err := resolveContract(args[0])
		if err != nil {
			return err
		}
		if len(abis) != 1 {
			return fmt.Errorf("contract %q has no known ABI — register it first with `tempo config add-contract`", args[0])
		}
		contractABI := abis[0]

		fnName := args[1]
		method, ok := contractABI.Methods[fnName]
		if !ok {
			return fmt.Errorf("function %q not found — known functions: %s", fnName, strings.Join(methodNames(contractABI), ", "))
		}

		fnArgs, err := coerceArgs(method.Inputs, args[2:])
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		if callWrite {
			acct, err := loadAccount(callSendOpts.wallet)
			if err != nil {
				return err
			}
			opts, err := callSendOpts.sendOpts(config.GasLimitContractCall)
			if err != nil {
				return err
			}
			sender := contract.NewSender(client, contractABI, acct)
			hash, err := sender.SendWithOpts(ctx, opts, addr, fnName, fnArgs...)
			if err != nil {
				return err
			}
			fmt.Println(ui.Success("Sent: " + hash.Hex()))
			return waitAndReport(ctx, client, hash)
		}

		caller := contract.NewCaller(client, contractABI)
		out, err := caller.Call(ctx, addr, fnName, fnArgs...)
		if err != nil {
			return err
		}

		if len(out) == 0 {
			fmt.Println(ui.Meta("(no return value)"))
			return nil
		}
		for i, v := range out {
			name := method.Outputs[i].Name
			if name == "" {
				name = fmt.Sprintf("out%d", i)
			}
			fmt.Printf("  %s %s\n", ui.Meta(name+":"), ui.Val(fmt.Sprintf("%v", v)))
		}
		return nil
	},
}

// coerceArgs converts string CLI args into the Go values the ABI encoder
// expects for each input type.
func coerceArgs(inputs gethabi.Arguments, raw []string) ([]any, error) {
	if len(raw) != len(inputs) {
		return nil, fmt.Errorf("expected %d argument(s), got %d", len(inputs), len(raw))
	}
	out := make([]any, len(raw))
	for i, input := range inputs {
		v, err := coerceArg(input.Type, raw[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s %s): %w", i, input.Name, input.Type, err)
		}
		out[i] = v
	}
	return out, nil
}

func coerceArg(t gethabi.Type, s string) (any, error) {
	switch t.T {
	case gethabi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil

	case gethabi.UintTy:
		n, err := parseBig(s)
		if err != nil {
			return nil, err
		}
		// Small widths encode as native Go types.
		switch {
		case t.Size <= 8:
			return uint8(n.Uint64()), nil
		case t.Size <= 16:
			return uint16(n.Uint64()), nil
		case t.Size <= 32:
			return uint32(n.Uint64()), nil
		case t.Size <= 64:
			return n.Uint64(), nil
		default:
			return n, nil
		}

	case gethabi.IntTy:
		n, err := parseBig(s)
		if err != nil {
			return nil, err
		}
		switch {
		case t.Size <= 8:
			return int8(n.Int64()), nil
		case t.Size <= 16:
			return int16(n.Int64()), nil
		case t.Size <= 32:
			return int32(n.Int64()), nil
		case t.Size <= 64:
			return n.Int64(), nil
		default:
			return n, nil
		}

	case gethabi.BoolTy:
		return strconv.ParseBool(s)

	case gethabi.StringTy:
		return s, nil

	case gethabi.BytesTy, gethabi.FixedBytesTy:
		data, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if t.T == gethabi.FixedBytesTy {
			if len(data) != t.Size {
				return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(data))
			}
			if t.Size == 32 {
				var b [32]byte
				copy(b[:], data)
				return b, nil
			}
		}
		return data, nil

	default:
		return nil, fmt.Errorf("unsupported parameter type %s", t)
	}
}

func methodNames(a gethabi.ABI) []string {
	names := make([]string, 0, len(a.Methods))
	for name := range a.Methods {
		names = append(names, name)
	}
	return names
}

func init() {
	registerSendFlags(callCmd, &callSendOpts)
	callCmd.Flags().BoolVar(&callWrite, "send", false, "sign and broadcast instead of eth_call")
}
