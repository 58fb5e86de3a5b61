package cmd

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/tempoxyz/tempo-go/internal/contract"
	"github.com/tempoxyz/tempo-go/internal/precompile"
	"github.com/tempoxyz/tempo-go/internal/sig"
	"github.com/tempoxyz/tempo-go/internal/ui"
)

var txCmd = &cobra.Command{
	Use:   "tx <hash>",
	Short: "Inspect a transaction",
	Long: `Fetch a transaction by hash and print its decoded tempo envelope:
the call batch, fee token, signature scheme, nonce lane and any
fee-payer sponsorship, plus the receipt once mined.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash := common.HexToHash(args[0])

		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		tx, rt, err := client.TransactionByHash(ctx, hash)
		if err != nil {
			return err
		}

		pairs := [][2]string{
			{"Hash", ui.Addr(rt.Hash.Hex())},
			{"Type", fmt.Sprintf("0x%x (tempo)", uint64(rt.Type))},
			{"From", ui.Addr(rt.From.Hex())},
			{"Scheme", sig.SchemeName(tx.Signature.Scheme)},
			{"Nonce", fmt.Sprintf("%d (lane %d)", tx.Nonce, tx.NonceKey)},
			{"Gas", fmt.Sprintf("%d", tx.Gas)},
		}

		if tx.FeeToken != (common.Address{}) {
			pairs = append(pairs, [2]string{"Fee Token", ui.Addr(tx.FeeToken.Hex())})
		} else {
			pairs = append(pairs, [2]string{"Fee Token", "native"})
		}
		if rt.FeePayer != nil {
			pairs = append(pairs, [2]string{"Fee Payer", ui.Addr(rt.FeePayer.Hex())})
		}
		if tx.KeyAuth != nil {
			pairs = append(pairs, [2]string{"Key Auth", fmt.Sprintf("access key, expiry %d", tx.KeyAuth.Expiry)})
		}
		if rt.BlockNumber != nil {
			pairs = append(pairs, [2]string{"Block", fmt.Sprintf("#%s", rt.BlockNumber.ToInt())})
		} else {
			pairs = append(pairs, [2]string{"Block", ui.Warn("pending")})
		}

		fmt.Println(ui.KeyValueBlock("Transaction", pairs))

		fmt.Println(ui.StyleTitle.Render(fmt.Sprintf("Calls (%d)", len(tx.Calls))))
		for i, call := range tx.Calls {
			target := "contract creation"
			if call.To != nil {
				target = call.To.Hex()
				if b, ok := builtinLabel(*call.To); ok {
					target += " (" + b + ")"
				}
			}
			fmt.Printf("  %s %s  %s %s  %s %d bytes\n",
				ui.Meta(fmt.Sprintf("[%d]", i)),
				ui.Addr(target),
				ui.Meta("value"),
				ui.Val(precompile.FormatUnits(call.Value, 18)),
				ui.Meta("data"),
				len(call.Data),
			)
		}

		receipt, err := client.TransactionReceipt(ctx, hash)
		if err != nil {
			return err
		}
		if receipt == nil {
			fmt.Println(ui.Meta("No receipt yet — transaction is pending."))
			return nil
		}

		status := ui.Success("success")
		if !receipt.Success() {
			status = ui.Err("reverted")
		}
		fmt.Println()
		fmt.Printf("  %s %s  %s %d  %s %s\n",
			ui.Meta("status"), status,
			ui.Meta("gas used"), receipt.GasUsed,
			ui.Meta("fee"), precompile.FormatUnits(receipt.FeeAmount, 18),
		)
		for _, ev := range decodedReceiptEvents(receipt.Logs) {
			fmt.Printf("  %s %s  %s\n", ui.Event(ev.Contract), ui.Val(ev.Name), ui.Meta(ev.Summary))
		}
		return nil
	},
}

func builtinLabel(addr common.Address) (string, bool) {
	b, ok := contract.BuiltinByAddress(addr)
	if !ok {
		return "", false
	}
	return b.ID, true
}
