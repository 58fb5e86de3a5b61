package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/tempoxyz/tempo-go/internal/chain"
	"github.com/tempoxyz/tempo-go/internal/config"
	"github.com/tempoxyz/tempo-go/internal/precompile"
	"github.com/tempoxyz/tempo-go/internal/ui"
)

var tokenSend sendFlags

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Query and move TIP-20 tokens",
}

var tokenInfoCmd = &cobra.Command{
	Use:   "info <token-address>",
	Short: "Show token metadata and supply",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := parseTokenAddr(args[0])
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		tok := precompile.NewToken(client, token, nil)
		meta, err := tok.Metadata(ctx)
		if err != nil {
			return err
		}
		supply, err := tok.TotalSupply(ctx)
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock(
			"Token",
			[][2]string{
				{"Address", ui.Addr(token.Hex())},
				{"Name", meta.Name},
				{"Symbol", meta.Symbol},
				{"Decimals", fmt.Sprintf("%d", meta.Decimals)},
				{"Total Supply", precompile.FormatUnits(supply, meta.Decimals) + " " + meta.Symbol},
			},
		))
		return nil
	},
}

var tokenTransferCmd = &cobra.Command{
	Use:   "transfer <token-address> <to> <amount>",
	Short: "Transfer tokens",
	Long: `Transfer TIP-20 tokens. The amount is given in whole units
("1.5" with 6 decimals sends 1500000 base units).

Gas can be paid in any enrolled fee token via --fee-token, or sponsored
by another wallet via --fee-payer.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokenWrite(args[0], args[2], func(ctx context.Context, tok *precompile.Token, amount *big.Int) (common.Hash, error) {
			to, err := resolveAddress(args[1])
			if err != nil {
				return common.Hash{}, err
			}
			opts, err := tokenSend.sendOpts(config.GasLimitTransfer)
			if err != nil {
				return common.Hash{}, err
			}
			return tok.Transfer(ctx, opts, to, amount)
		})
	},
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint <token-address> <to> <amount>",
	Short: "Mint tokens (issuer only)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokenWrite(args[0], args[2], func(ctx context.Context, tok *precompile.Token, amount *big.Int) (common.Hash, error) {
			to, err := resolveAddress(args[1])
			if err != nil {
				return common.Hash{}, err
			}
			opts, err := tokenSend.sendOpts(config.GasLimitMint)
			if err != nil {
				return common.Hash{}, err
			}
			return tok.Mint(ctx, opts, to, amount)
		})
	},
}

var tokenBurnCmd = &cobra.Command{
	Use:   "burn <token-address> <from> <amount>",
	Short: "Burn tokens (issuer only)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokenWrite(args[0], args[2], func(ctx context.Context, tok *precompile.Token, amount *big.Int) (common.Hash, error) {
			from, err := resolveAddress(args[1])
			if err != nil {
				return common.Hash{}, err
			}
			opts, err := tokenSend.sendOpts(config.GasLimitTransfer)
			if err != nil {
				return common.Hash{}, err
			}
			return tok.Burn(ctx, opts, from, amount)
		})
	},
}

var tokenApproveCmd = &cobra.Command{
	Use:   "approve <token-address> <spender> <amount>",
	Short: "Approve a spender",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokenWrite(args[0], args[2], func(ctx context.Context, tok *precompile.Token, amount *big.Int) (common.Hash, error) {
			spender, err := resolveAddress(args[1])
			if err != nil {
				return common.Hash{}, err
			}
			opts, err := tokenSend.sendOpts(0)
			if err != nil {
				return common.Hash{}, err
			}
			return tok.Approve(ctx, opts, spender, amount)
		})
	},
}

// runTokenWrite handles the shared flow of every token write: resolve the
// token, load the signer, parse the amount against the token's decimals,
// send and wait for the receipt.
func runTokenWrite(tokenArg, amountArg string, send func(context.Context, *precompile.Token, *big.Int) (common.Hash, error)) error {
	token, err := parseTokenAddr(tokenArg)
	if err != nil {
		return err
	}
	acct, err := loadAccount(tokenSend.wallet)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := dialClient(ctx)
	if err != nil {
		return err
	}

	tok := precompile.NewToken(client, token, acct)
	meta, err := tok.Metadata(ctx)
	if err != nil {
		return err
	}
	amount, err := precompile.ParseUnits(amountArg, meta.Decimals)
	if err != nil {
		return err
	}

	spin := ui.NewSpinner("Sending transaction...")
	spin.Start()
	hash, err := send(ctx, tok, amount)
	if err != nil {
		spin.Stop()
		return err
	}
	spin.StopWithMsg(ui.Success("Sent: " + hash.Hex()))

	return waitAndReport(ctx, client, hash)
}

// waitAndReport waits for a receipt and prints the outcome with any
// decoded built-in events.
func waitAndReport(ctx context.Context, client *chain.Client, hash common.Hash) error {
	spin := ui.NewSpinner("Waiting for confirmation...")
	spin.Start()

	waitCtx, cancel := context.WithTimeout(ctx, config.TxConfirmTimeout)
	defer cancel()
	receipt, err := client.WaitForReceipt(waitCtx, hash)
	spin.Stop()
	if err != nil {
		return err
	}

	fmt.Println(ui.Success(fmt.Sprintf("Confirmed in block #%d (gas used: %d)", receipt.BlockNumber, receipt.GasUsed)))
	for _, ev := range decodedReceiptEvents(receipt.Logs) {
		fmt.Printf("  %s %s  %s\n", ui.Event(ev.Contract), ui.Val(ev.Name), ui.Meta(ev.Summary))
	}
	return nil
}

func parseTokenAddr(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid token address %q", s)
	}
	return common.HexToAddress(s), nil
}

func init() {
	for _, c := range []*cobra.Command{tokenTransferCmd, tokenMintCmd, tokenBurnCmd, tokenApproveCmd} {
		registerSendFlags(c, &tokenSend)
	}
	tokenCmd.AddCommand(tokenInfoCmd, tokenTransferCmd, tokenMintCmd, tokenBurnCmd, tokenApproveCmd)
}
