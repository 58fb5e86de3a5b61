package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/tempoxyz/tempo-go/internal/config"
	"github.com/tempoxyz/tempo-go/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and edit configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		feeToken := cfg.FeeToken
		if feeToken == "" {
			feeToken = "native"
		}
		fmt.Println(ui.KeyValueBlock(
			"Config ("+cfg.Dir()+")",
			[][2]string{
				{"Default Wallet", cfg.DefaultWallet},
				{"Default RPC", cfg.DefaultRPC},
				{"RPC Algorithm", cfg.RPCAlgorithm},
				{"Fee Token", feeToken},
				{"Watch Interval", fmt.Sprintf("%ds", cfg.WatchInterval)},
				{"Log Level", cfg.LogLevel},
			},
		))
		for _, url := range cfg.RPCs {
			fmt.Println("  " + ui.Addr(url))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Keys:
  default-rpc     RPC URL used when no other endpoint wins
  rpc-algorithm   "fastest" or "first"
  fee-token       default fee token address, or "native"
  watch-interval  poll interval in seconds for tempo watch
  log-level       zerolog level (debug, info, warn, error)`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		switch key {
		case "default-rpc":
			cfg.DefaultRPC = value
		case "rpc-algorithm":
			if value != "fastest" && value != "first" {
				return fmt.Errorf(`rpc-algorithm must be "fastest" or "first"`)
			}
			cfg.RPCAlgorithm = value
		case "fee-token":
			if value == "native" {
				cfg.FeeToken = ""
				break
			}
			if !common.IsHexAddress(value) {
				return fmt.Errorf("invalid fee token address %q", value)
			}
			cfg.FeeToken = value
		case "watch-interval":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fmt.Errorf("watch-interval must be a positive number of seconds")
			}
			cfg.WatchInterval = n
		case "log-level":
			cfg.LogLevel = value
		default:
			return fmt.Errorf("unknown key %q — run `tempo config set --help`", key)
		}

		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s set to %q", key, value)))
		return nil
	},
}

var configAddRPCCmd = &cobra.Command{
	Use:   "add-rpc <url>",
	Short: "Add an RPC endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.AddRPC(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("RPC added: " + args[0]))
		return nil
	},
}

var configRemoveRPCCmd = &cobra.Command{
	Use:   "remove-rpc <url>",
	Short: "Remove an RPC endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveRPC(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("RPC removed: " + args[0]))
		return nil
	},
}

var configAddContractCmd = &cobra.Command{
	Use:   "add-contract <name> <address> <abi-file>",
	Short: "Register a contract ABI for call/events/watch",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, address, abiPath := args[0], args[1], args[2]
		if !common.IsHexAddress(address) {
			return fmt.Errorf("invalid address %q", address)
		}
		abiJSON, err := os.ReadFile(abiPath)
		if err != nil {
			return fmt.Errorf("reading ABI file: %w", err)
		}

		cf, err := cfg.LoadContracts()
		if err != nil {
			return err
		}
		for _, entry := range cf.Contracts {
			if entry.Name == name {
				return fmt.Errorf("contract %q already registered", name)
			}
		}
		cf.Contracts = append(cf.Contracts, config.ContractEntry{
			Name:    name,
			Address: address,
			ABI:     string(abiJSON),
		})
		if err := cfg.SaveContracts(cf); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Contract %q registered at %s", name, ui.Addr(address))))
		return nil
	},
}

var configRemoveContractCmd = &cobra.Command{
	Use:   "remove-contract <name>",
	Short: "Remove a registered contract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cf, err := cfg.LoadContracts()
		if err != nil {
			return err
		}
		kept := cf.Contracts[:0]
		found := false
		for _, entry := range cf.Contracts {
			if entry.Name == name {
				found = true
				continue
			}
			kept = append(kept, entry)
		}
		if !found {
			return fmt.Errorf("contract %q not registered", name)
		}
		cf.Contracts = kept
		if err := cfg.SaveContracts(cf); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Contract %q removed", name)))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configAddRPCCmd, configRemoveRPCCmd,
		configAddContractCmd, configRemoveContractCmd)
}
