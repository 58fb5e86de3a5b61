package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"

	"github.com/tempoxyz/tempo-go/internal/chain"
	"github.com/tempoxyz/tempo-go/internal/contract"
	"github.com/tempoxyz/tempo-go/internal/ui"
)

var watchInterval int

var watchCmd = &cobra.Command{
	Use:   "watch [contract]",
	Short: "Watch decoded events live",
	Long: `Stream decoded events in a live terminal view.

Without an argument every built-in contract is watched. Pass a built-in
id, registered name or address to narrow the stream.

  tempo watch
  tempo watch token
  tempo watch 0xMYCONTRACT...`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope := "all built-ins"
		var addr *common.Address
		var abis []gethabi.ABI

		if len(args) == 1 {
			a, resolved, label, err := resolveContract(args[0])
			if err != nil {
				return err
			}
			addr, abis, scope = &a, resolved, label
		} else {
			for _, b := range contract.AllBuiltins() {
				abis = append(abis, b.ABI)
			}
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		interval := time.Duration(watchInterval) * time.Second
		if watchInterval == 0 {
			interval = time.Duration(cfg.WatchInterval) * time.Second
		}

		prog := ui.RunWatch(ui.WatchModel{Scope: scope, RPC: client.URL()})
		go pollEvents(ctx, client, addr, abis, interval, prog)

		_, err = prog.Run()
		return err
	},
}

// eventFeed is the subset of tea.Program the poller needs.
type eventFeed interface {
	Send(msg tea.Msg)
}

// pollEvents tails the chain head and pushes decoded logs into the TUI.
// Returns once ctx is cancelled, which the watch command does when the
// TUI exits.
func pollEvents(ctx context.Context, client *chain.Client, addr *common.Address, abis []gethabi.ABI, interval time.Duration, feed eventFeed) {
	var lastBlock uint64

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		lastBlock = pollOnce(ctx, client, addr, abis, feed, lastBlock)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// pollOnce fetches and forwards everything between the last seen block and
// the current head, returning the new high-water mark.
func pollOnce(ctx context.Context, client *chain.Client, addr *common.Address, abis []gethabi.ABI, feed eventFeed, lastBlock uint64) uint64 {
	head, err := client.BlockNumber(ctx)
	if err != nil {
		feed.Send(ui.StatusMsg{BlockNum: lastBlock, ErrMsg: err.Error()})
		return lastBlock
	}

	if lastBlock == 0 {
		// First pass: start from the current head, don't replay history.
		feed.Send(ui.StatusMsg{BlockNum: head})
		return head
	}
	if head <= lastBlock {
		feed.Send(ui.StatusMsg{BlockNum: head})
		return lastBlock
	}

	feed.Send(ui.StatusMsg{BlockNum: head, Fetching: true})

	filter := chain.LogFilter{
		Address:   addr,
		FromBlock: hexutil.EncodeUint64(lastBlock + 1),
		ToBlock:   hexutil.EncodeUint64(head),
	}
	logs, err := client.GetLogs(ctx, filter)
	if err != nil {
		feed.Send(ui.StatusMsg{BlockNum: head, ErrMsg: err.Error()})
		return lastBlock
	}

	for i := range logs {
		feed.Send(decodeForWatch(&logs[i], abis))
	}

	feed.Send(ui.StatusMsg{BlockNum: head})
	return head
}

// decodeForWatch turns one raw log into a TUI row, degrading gracefully
// when no ABI matches.
func decodeForWatch(log *types.Log, abis []gethabi.ABI) ui.EventMsg {
	label := ui.TruncateHash(log.Address.Hex())
	if b, ok := contract.BuiltinByAddress(log.Address); ok {
		label = b.ID
	}

	msg := ui.EventMsg{
		TxHash:   log.TxHash.Hex(),
		Contract: label,
		BlockNum: log.BlockNumber,
	}

	decoded, err := contract.ParseEventLogs(abis, []*types.Log{log}, false)
	if err != nil || len(decoded) == 0 {
		msg.Name = "unknown"
		msg.Summary = fmt.Sprintf("%d topic(s), %d data bytes", len(log.Topics), len(log.Data))
		return msg
	}
	msg.Name = decoded[0].Name
	msg.Summary = summarizeArgs(decoded[0].Args)
	return msg
}

func init() {
	watchCmd.Flags().IntVar(&watchInterval, "interval", 0, "poll interval in seconds (default: config)")
}
