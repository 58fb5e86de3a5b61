package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tempoxyz/tempo-go/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config directory with defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Banner())

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Println(ui.Success("Config written to " + cfg.Dir()))
		fmt.Println()
		fmt.Println(ui.Hint("Add a wallet:        tempo wallet add mine --key <private-key>"))
		fmt.Println(ui.Hint("Point at a node:     tempo config add-rpc https://rpc.tempo.xyz"))
		fmt.Println(ui.Hint("Check your balance:  tempo balance"))
		return nil
	},
}
