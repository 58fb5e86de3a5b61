package cmd

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/tempoxyz/tempo-go/internal/config"
	"github.com/tempoxyz/tempo-go/internal/precompile"
	"github.com/tempoxyz/tempo-go/internal/ui"
)

var (
	dexSend   sendFlags
	dexMinOut string
	dexRecip  string
)

var dexCmd = &cobra.Command{
	Use:   "dex",
	Short: "Swap tokens and manage orders on the built-in DEX",
}

var dexQuoteCmd = &cobra.Command{
	Use:   "quote <token-in> <token-out> <amount-in>",
	Short: "Quote a swap",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokenIn, err := parseTokenAddr(args[0])
		if err != nil {
			return err
		}
		tokenOut, err := parseTokenAddr(args[1])
		if err != nil {
			return err
		}
		amountIn, err := parseBig(args[2])
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		out, err := precompile.NewDex(client, nil).Quote(ctx, tokenIn, tokenOut, amountIn)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock(
			"Quote",
			[][2]string{
				{"Token In", ui.Addr(tokenIn.Hex())},
				{"Token Out", ui.Addr(tokenOut.Hex())},
				{"Amount In", amountIn.String()},
				{"Amount Out", ui.Val(out.String())},
			},
		))
		return nil
	},
}

var dexSwapCmd = &cobra.Command{
	Use:   "swap <token-in> <token-out> <amount-in>",
	Short: "Swap an exact input amount",
	Long: `Swap an exact input amount of one token for another.

Amounts are raw base units. --min-out guards against slippage; the swap
reverts if the output would fall below it.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokenIn, err := parseTokenAddr(args[0])
		if err != nil {
			return err
		}
		tokenOut, err := parseTokenAddr(args[1])
		if err != nil {
			return err
		}
		amountIn, err := parseBig(args[2])
		if err != nil {
			return err
		}
		minOut := common.Big0
		if dexMinOut != "" {
			if minOut, err = parseBig(dexMinOut); err != nil {
				return err
			}
		}

		acct, err := loadAccount(dexSend.wallet)
		if err != nil {
			return err
		}
		recipient := acct.Address()
		if dexRecip != "" {
			if recipient, err = resolveAddress(dexRecip); err != nil {
				return err
			}
		}
		opts, err := dexSend.sendOpts(config.GasLimitSwap)
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		hash, err := precompile.NewDex(client, acct).SwapExactIn(ctx, opts, tokenIn, tokenOut, amountIn, minOut, recipient)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("Sent: " + hash.Hex()))
		return waitAndReport(ctx, client, hash)
	},
}

var dexOrderCmd = &cobra.Command{
	Use:   "order",
	Short: "Place, inspect and cancel limit orders",
}

var dexOrderShowCmd = &cobra.Command{
	Use:   "show <order-id>",
	Short: "Show a limit order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseBig(args[0])
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		order, err := precompile.NewDex(client, nil).OrderOf(ctx, id)
		if err != nil {
			return err
		}

		status := ui.Warn("open")
		if order.Remaining.Sign() == 0 {
			status = ui.Success("filled")
		}
		fmt.Println(ui.KeyValueBlock(
			fmt.Sprintf("Order #%s", id),
			[][2]string{
				{"Owner", ui.Addr(order.Owner.Hex())},
				{"Token In", ui.Addr(order.TokenIn.Hex())},
				{"Token Out", ui.Addr(order.TokenOut.Hex())},
				{"Amount In", order.AmountIn.String()},
				{"Limit Price", order.LimitPrice.String()},
				{"Remaining", order.Remaining.String()},
				{"Status", status},
			},
		))
		return nil
	},
}

var dexOrderPlaceCmd = &cobra.Command{
	Use:   "place <token-in> <token-out> <amount-in> <limit-price>",
	Short: "Place a limit order",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokenIn, err := parseTokenAddr(args[0])
		if err != nil {
			return err
		}
		tokenOut, err := parseTokenAddr(args[1])
		if err != nil {
			return err
		}
		amountIn, err := parseBig(args[2])
		if err != nil {
			return err
		}
		limitPrice, err := parseBig(args[3])
		if err != nil {
			return err
		}

		acct, err := loadAccount(dexSend.wallet)
		if err != nil {
			return err
		}
		opts, err := dexSend.sendOpts(config.GasLimitSwap)
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		hash, err := precompile.NewDex(client, acct).PlaceOrder(ctx, opts, tokenIn, tokenOut, amountIn, limitPrice)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("Sent: " + hash.Hex()))
		return waitAndReport(ctx, client, hash)
	},
}

var dexOrderCancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel a limit order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseBig(args[0])
		if err != nil {
			return err
		}
		acct, err := loadAccount(dexSend.wallet)
		if err != nil {
			return err
		}
		opts, err := dexSend.sendOpts(0)
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		hash, err := precompile.NewDex(client, acct).CancelOrder(ctx, opts, id)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("Sent: " + hash.Hex()))
		return waitAndReport(ctx, client, hash)
	},
}

var dexPoolCmd = &cobra.Command{
	Use:   "pool <token-a> <token-b>",
	Short: "Show AMM pool reserves",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokenA, err := parseTokenAddr(args[0])
		if err != nil {
			return err
		}
		tokenB, err := parseTokenAddr(args[1])
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		reserveA, reserveB, err := precompile.NewAmm(client, nil).Reserves(ctx, tokenA, tokenB)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock(
			"Pool",
			[][2]string{
				{"Token A", ui.Addr(tokenA.Hex())},
				{"Reserve A", reserveA.String()},
				{"Token B", ui.Addr(tokenB.Hex())},
				{"Reserve B", reserveB.String()},
			},
		))
		return nil
	},
}

var dexLiquidityAddCmd = &cobra.Command{
	Use:   "add-liquidity <token-a> <token-b> <amount-a> <amount-b>",
	Short: "Add liquidity to an AMM pool",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokenA, err := parseTokenAddr(args[0])
		if err != nil {
			return err
		}
		tokenB, err := parseTokenAddr(args[1])
		if err != nil {
			return err
		}
		amountA, err := parseBig(args[2])
		if err != nil {
			return err
		}
		amountB, err := parseBig(args[3])
		if err != nil {
			return err
		}

		acct, err := loadAccount(dexSend.wallet)
		if err != nil {
			return err
		}
		opts, err := dexSend.sendOpts(0)
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		minShares := common.Big0
		hash, err := precompile.NewAmm(client, acct).AddLiquidity(ctx, opts, tokenA, tokenB, amountA, amountB, minShares)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("Sent: " + hash.Hex()))
		return waitAndReport(ctx, client, hash)
	},
}

var dexLiquidityRemoveCmd = &cobra.Command{
	Use:   "remove-liquidity <token-a> <token-b> <shares>",
	Short: "Remove liquidity from an AMM pool",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokenA, err := parseTokenAddr(args[0])
		if err != nil {
			return err
		}
		tokenB, err := parseTokenAddr(args[1])
		if err != nil {
			return err
		}
		shares, err := parseBig(args[2])
		if err != nil {
			return err
		}

		acct, err := loadAccount(dexSend.wallet)
		if err != nil {
			return err
		}
		opts, err := dexSend.sendOpts(0)
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		hash, err := precompile.NewAmm(client, acct).RemoveLiquidity(ctx, opts, tokenA, tokenB, shares, common.Big0, common.Big0)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("Sent: " + hash.Hex()))
		return waitAndReport(ctx, client, hash)
	},
}

func init() {
	dexSwapCmd.Flags().StringVar(&dexMinOut, "min-out", "", "minimum acceptable output amount (slippage guard)")
	dexSwapCmd.Flags().StringVar(&dexRecip, "recipient", "", "recipient of the output tokens (default: sender)")
	for _, c := range []*cobra.Command{dexSwapCmd, dexOrderPlaceCmd, dexOrderCancelCmd, dexLiquidityAddCmd, dexLiquidityRemoveCmd} {
		registerSendFlags(c, &dexSend)
	}
	dexOrderCmd.AddCommand(dexOrderShowCmd, dexOrderPlaceCmd, dexOrderCancelCmd)
	dexCmd.AddCommand(dexQuoteCmd, dexSwapCmd, dexOrderCmd, dexPoolCmd, dexLiquidityAddCmd, dexLiquidityRemoveCmd)
}
