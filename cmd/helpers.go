package cmd

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/tempoxyz/tempo-go/internal/chain"
	"github.com/tempoxyz/tempo-go/internal/config"
	"github.com/tempoxyz/tempo-go/internal/contract"
	"github.com/tempoxyz/tempo-go/internal/rpc"
	"github.com/tempoxyz/tempo-go/internal/wallet"
)

// dialClient returns a client for the --rpc override or the best
// configured endpoint.
func dialClient(ctx context.Context) (*chain.Client, error) {
	if rpcOverride != "" {
		return chain.NewClient(rpcOverride, chain.WithLogger(log)), nil
	}
	picker := rpc.NewPicker(rpc.Algorithm(cfg.RPCAlgorithm), cfg.RPCs, log)
	selectCtx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	return picker.Client(selectCtx)
}

// newWalletManager creates a Manager backed by the config-dir JSON store.
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())))
}

// resolveAddress turns a wallet name or hex address into an address.
// An empty input resolves to the default wallet.
func resolveAddress(nameOrAddr string) (common.Address, error) {
	if common.IsHexAddress(nameOrAddr) {
		return common.HexToAddress(nameOrAddr), nil
	}

	mgr := newWalletManager()
	if nameOrAddr == "" {
		w := mgr.Default()
		if w == nil {
			return common.Address{}, fmt.Errorf("no wallet specified — pass an address or set a default:\n  tempo wallet add mine 0x...\n  tempo wallet use mine")
		}
		return common.HexToAddress(w.Address), nil
	}

	w, err := mgr.Get(nameOrAddr)
	if err != nil {
		return common.Address{}, fmt.Errorf("wallet %q not found — run `tempo wallet list` or pass an address directly", nameOrAddr)
	}
	return common.HexToAddress(w.Address), nil
}

// loadSigningWallet loads a wallet by name (or the default) and verifies it
// can sign. Used by every write command.
func loadSigningWallet(name string) (*wallet.Wallet, error) {
	mgr := newWalletManager()

	var w *wallet.Wallet
	if name == "" {
		w = mgr.Default()
		if w == nil {
			return nil, fmt.Errorf("no wallet specified — use --wallet or set a default with `tempo wallet use <name>`")
		}
	} else {
		var err error
		w, err = mgr.Get(name)
		if err != nil {
			return nil, fmt.Errorf("wallet %q not found — run `tempo wallet list`", name)
		}
	}

	if w.Type != wallet.TypeSigning {
		return nil, fmt.Errorf("wallet %q is watch-only and cannot sign\n  Import a key with: tempo wallet add <name> --key <private-key>", w.Name)
	}
	return w, nil
}

// loadAccount resolves a signing wallet into an Account ready to sign.
func loadAccount(name string) (wallet.Account, error) {
	w, err := loadSigningWallet(name)
	if err != nil {
		return nil, err
	}
	return wallet.FromWallet(w, wallet.DefaultKeystore())
}

// Common write-transaction flags, registered by each command that sends.
type sendFlags struct {
	wallet   string
	feeToken string
	feePayer string
	nonceKey uint64
	gasLimit uint64
}

// sendOpts converts the flags into SendOpts, loading the fee payer's
// account when sponsoring is requested. defaultGas is the command's gas
// limit when --gas is unset; 0 defers to per-call estimation.
func (f *sendFlags) sendOpts(defaultGas uint64) (contract.SendOpts, error) {
	opts := contract.SendOpts{
		NonceKey: f.nonceKey,
		GasLimit: f.gasLimit,
	}
	if opts.GasLimit == 0 {
		opts.GasLimit = defaultGas
	}

	switch {
	case f.feeToken == "" && cfg.FeeToken != "":
		opts.FeeToken = common.HexToAddress(cfg.FeeToken)
	case f.feeToken != "" && f.feeToken != "native":
		if !common.IsHexAddress(f.feeToken) {
			return opts, fmt.Errorf("invalid fee token address %q", f.feeToken)
		}
		opts.FeeToken = common.HexToAddress(f.feeToken)
	}

	if f.feePayer != "" {
		payer, err := loadAccount(f.feePayer)
		if err != nil {
			return opts, fmt.Errorf("fee payer: %w", err)
		}
		opts.FeePayer = payer
	}
	return opts, nil
}

// registerSendFlags adds the shared write-transaction flags to a command.
func registerSendFlags(cmd *cobra.Command, f *sendFlags) {
	cmd.Flags().StringVar(&f.wallet, "wallet", "", "signing wallet name (default: config default)")
	cmd.Flags().StringVar(&f.feeToken, "fee-token", "", `fee token address, or "native" to force the native token`)
	cmd.Flags().StringVar(&f.feePayer, "fee-payer", "", "wallet name that sponsors the transaction fee")
	cmd.Flags().Uint64Var(&f.nonceKey, "nonce-key", 0, "2D nonce lane (0 = protocol-managed default lane)")
	cmd.Flags().Uint64Var(&f.gasLimit, "gas", 0, "gas limit override (0 = estimate)")
}

// parseBig parses a decimal or 0x-prefixed big integer.
func parseBig(s string) (*big.Int, error) {
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}
