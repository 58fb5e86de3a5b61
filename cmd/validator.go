package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tempoxyz/tempo-go/internal/precompile"
	"github.com/tempoxyz/tempo-go/internal/ui"
)

var validatorSend sendFlags

var validatorCmd = &cobra.Command{
	Use:   "validator",
	Short: "Validator set queries and staking",
}

var validatorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the validator set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		spin := ui.NewSpinner("Fetching validator set...")
		spin.Start()
		vals, err := precompile.NewValidator(client, nil).List(ctx)
		spin.Stop()
		if err != nil {
			return err
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Operator", Width: 44},
			{Title: "Stake", Width: 20},
			{Title: "Commission", Width: 12},
			{Title: "Active", Width: 8},
		})
		for _, v := range vals {
			active := ui.StyleError.Render("✗")
			if v.Active {
				active = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{
				ui.Addr(v.Operator.Hex()),
				ui.Val(precompile.FormatUnits(v.Stake, 18)),
				ui.Meta(fmt.Sprintf("%.2f%%", float64(v.Commission)/100)),
				active,
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d validator(s)", len(vals))))
		return nil
	},
}

var validatorRewardsCmd = &cobra.Command{
	Use:   "rewards [operator]",
	Short: "Show stake and pending rewards for an operator",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var who string
		if len(args) == 1 {
			who = args[0]
		}
		operator, err := resolveAddress(who)
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		v := precompile.NewValidator(client, nil)
		stake, err := v.StakeOf(ctx, operator)
		if err != nil {
			return err
		}
		rewards, err := v.PendingRewards(ctx, operator)
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock(
			"Operator",
			[][2]string{
				{"Address", ui.Addr(operator.Hex())},
				{"Stake", precompile.FormatUnits(stake, 18)},
				{"Pending Rewards", precompile.FormatUnits(rewards, 18)},
			},
		))
		return nil
	},
}

var validatorStakeCmd = &cobra.Command{
	Use:   "stake <amount>",
	Short: "Bond stake for the calling operator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := precompile.ParseUnits(args[0], 18)
		if err != nil {
			return err
		}
		acct, err := loadAccount(validatorSend.wallet)
		if err != nil {
			return err
		}
		opts, err := validatorSend.sendOpts(0)
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		hash, err := precompile.NewValidator(client, acct).Stake(ctx, opts, amount)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("Sent: " + hash.Hex()))
		return waitAndReport(ctx, client, hash)
	},
}

var validatorUnstakeCmd = &cobra.Command{
	Use:   "unstake <amount>",
	Short: "Unbond stake for the calling operator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := precompile.ParseUnits(args[0], 18)
		if err != nil {
			return err
		}
		acct, err := loadAccount(validatorSend.wallet)
		if err != nil {
			return err
		}
		opts, err := validatorSend.sendOpts(0)
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		hash, err := precompile.NewValidator(client, acct).Unstake(ctx, opts, amount)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("Sent: " + hash.Hex()))
		return waitAndReport(ctx, client, hash)
	},
}

var validatorCommissionCmd = &cobra.Command{
	Use:   "set-commission <basis-points>",
	Short: "Update the calling operator's commission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var bp uint16
		if _, err := fmt.Sscanf(args[0], "%d", &bp); err != nil {
			return fmt.Errorf("invalid basis points %q", args[0])
		}
		acct, err := loadAccount(validatorSend.wallet)
		if err != nil {
			return err
		}
		opts, err := validatorSend.sendOpts(0)
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		hash, err := precompile.NewValidator(client, acct).SetCommission(ctx, opts, bp)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("Sent: " + hash.Hex()))
		return waitAndReport(ctx, client, hash)
	},
}

func init() {
	for _, c := range []*cobra.Command{validatorStakeCmd, validatorUnstakeCmd, validatorCommissionCmd} {
		registerSendFlags(c, &validatorSend)
	}
	validatorCmd.AddCommand(validatorListCmd, validatorRewardsCmd, validatorStakeCmd,
		validatorUnstakeCmd, validatorCommissionCmd)
}
