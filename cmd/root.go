package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tempoxyz/tempo-go/internal/config"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/tempoxyz/tempo-go/cmd.Version=0.2.0" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	rpcOverride string
	verbose     bool
	log         zerolog.Logger
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "tempo",
	Short: "CLI for the tempo payments chain",
	Long: `tempo — terminal tool for the tempo payments chain.

  Manage secp256k1, P256 and passkey wallets, pay gas in any enrolled
  fee token, batch multiple calls into one atomic transaction, and
  watch decoded events live.

Global flag --rpc overrides the configured endpoint for a single
invocation. Without it the configured endpoints are benchmarked and
the fastest healthy node is used.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		level := zerolog.Disabled
		if verbose {
			level = zerolog.DebugLevel
		} else if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
			level = lvl
		}
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// TEMPO_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("TEMPO_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.tempo)")
	rootCmd.PersistentFlags().StringVar(&rpcOverride, "rpc", "", "RPC endpoint URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Register all sub-commands.
	rootCmd.AddCommand(
		initCmd,
		walletCmd,
		balanceCmd,
		tokenCmd,
		callCmd,
		sendCmd,
		txCmd,
		eventsCmd,
		watchCmd,
		validatorCmd,
		dexCmd,
		configCmd,
	)
}
