package cmd

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/tempoxyz/tempo-go/internal/precompile"
	"github.com/tempoxyz/tempo-go/internal/ui"
)

var balanceToken string

var balanceCmd = &cobra.Command{
	Use:   "balance [wallet-name-or-address]",
	Short: "Check wallet balance",
	Long: `Check native, fee-token or TIP-20 balance for a wallet.

Examples:
  tempo balance                       # default wallet, native + fee token
  tempo balance 0xABC...              # explicit address
  tempo balance --token 0xUSDT...     # TIP-20 balance`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var who string
		if len(args) == 1 {
			who = args[0]
		}
		addr, err := resolveAddress(who)
		if err != nil {
			return err
		}

		ctx := context.Background()
		spin := ui.NewSpinner("Fetching balance...")
		spin.Start()

		client, err := dialClient(ctx)
		if err != nil {
			spin.Stop()
			return err
		}

		if balanceToken != "" {
			if !common.IsHexAddress(balanceToken) {
				spin.Stop()
				return fmt.Errorf("invalid token address %q", balanceToken)
			}
			tok := precompile.NewToken(client, common.HexToAddress(balanceToken), nil)
			meta, err := tok.Metadata(ctx)
			if err != nil {
				spin.Stop()
				return err
			}
			bal, err := tok.BalanceOf(ctx, addr)
			spin.Stop()
			if err != nil {
				return err
			}
			fmt.Println(ui.KeyValueBlock(
				"Token Balance",
				[][2]string{
					{"Address", ui.Addr(addr.Hex())},
					{"Token", meta.Name + " (" + meta.Symbol + ")"},
					{"Balance", precompile.FormatUnits(bal, meta.Decimals) + " " + meta.Symbol},
				},
			))
			return nil
		}

		native, err := client.GetBalance(ctx, addr)
		if err != nil {
			spin.Stop()
			return err
		}
		feeToken, feeBal, err := client.FeeTokenBalance(ctx, addr)
		spin.Stop()

		pairs := [][2]string{
			{"Address", ui.Addr(addr.Hex())},
			{"Native", precompile.FormatUnits(native, 18)},
		}
		if err == nil {
			label := "native"
			if feeToken != (common.Address{}) {
				label = feeToken.Hex()
			}
			pairs = append(pairs,
				[2]string{"Fee Token", label},
				[2]string{"Fee Balance", precompile.FormatUnits(feeBal, 18)},
			)
		}
		fmt.Println(ui.KeyValueBlock("Balance", pairs))
		return nil
	},
}

func init() {
	balanceCmd.Flags().StringVar(&balanceToken, "token", "", "TIP-20 token contract address")
}
