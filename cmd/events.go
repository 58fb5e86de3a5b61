package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/sha3"

	"github.com/tempoxyz/tempo-go/internal/chain"
	"github.com/tempoxyz/tempo-go/internal/contract"
	"github.com/tempoxyz/tempo-go/internal/ui"
)

var (
	eventsFromBlock uint64
	eventsToBlock   uint64
	eventsName      string
	eventsLimit     int
)

var eventsCmd = &cobra.Command{
	Use:   "events <contract>",
	Short: "Fetch and decode contract events",
	Long: `Fetch logs for a contract and decode them against its ABI.

The contract can be a built-in id (token, dex, amm, fee, reward, policy,
validator), a registered contract name, or a raw address. Raw addresses
are decoded against every known ABI.

Examples:
  tempo events dex --from 100 --to 200
  tempo events 0xTOKEN... --event Transfer --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, abis, label, err := resolveContract(args[0])
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := dialClient(ctx)
		if err != nil {
			return err
		}

		filter := chain.LogFilter{Address: &addr}
		if eventsFromBlock > 0 {
			filter.FromBlock = hexutil.EncodeUint64(eventsFromBlock)
		}
		if eventsToBlock > 0 {
			filter.ToBlock = hexutil.EncodeUint64(eventsToBlock)
		}

		nameFilter := eventsName
		if topic, ok := eventTopic(eventsName); ok {
			filter.Topics = [][]common.Hash{{topic}}
			nameFilter = eventsName[:strings.Index(eventsName, "(")]
		}

		spin := ui.NewSpinner("Fetching logs...")
		spin.Start()
		logs, err := client.GetLogs(ctx, filter)
		spin.Stop()
		if err != nil {
			return err
		}

		logPtrs := make([]*types.Log, len(logs))
		for i := range logs {
			logPtrs[i] = &logs[i]
		}
		decoded, err := contract.ParseEventLogs(abis, logPtrs, false)
		if err != nil {
			return err
		}

		var shown int
		for _, ev := range decoded {
			if nameFilter != "" && ev.Name != nameFilter {
				continue
			}
			if eventsLimit > 0 && shown >= eventsLimit {
				break
			}
			fmt.Printf("%s  %s %s  %s\n",
				ui.Meta(fmt.Sprintf("#%-8d", ev.Log.BlockNumber)),
				ui.Event(label),
				ui.Val(ev.Name),
				ui.Meta(summarizeArgs(ev.Args)),
			)
			shown++
		}
		fmt.Println(ui.Meta(fmt.Sprintf("%d event(s)", shown)))
		return nil
	},
}

// eventTopic hashes a full event signature like
// "Transfer(address,address,uint256)" into its topic0, so the node prunes
// logs server-side instead of the decoder skipping them. Bare event names
// still filter after decoding.
func eventTopic(sig string) (common.Hash, bool) {
	open := strings.Index(sig, "(")
	if open <= 0 || !strings.HasSuffix(sig, ")") {
		return common.Hash{}, false
	}
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return common.BytesToHash(h.Sum(nil)), true
}

// resolveContract maps a builtin id, registered name or address to the
// address plus the ABIs to decode its logs with.
func resolveContract(ref string) (common.Address, []gethabi.ABI, string, error) {
	if b, ok := contract.GetBuiltin(ref); ok {
		return b.Address, []gethabi.ABI{b.ABI}, b.ID, nil
	}

	if common.IsHexAddress(ref) {
		addr := common.HexToAddress(ref)
		if b, ok := contract.BuiltinByAddress(addr); ok {
			return addr, []gethabi.ABI{b.ABI}, b.ID, nil
		}
		// Unknown address: decode against every registered ABI.
		var abis []gethabi.ABI
		for _, b := range contract.AllBuiltins() {
			abis = append(abis, b.ABI)
		}
		abis = append(abis, userContractABIs()...)
		return addr, abis, ui.TruncateHash(ref), nil
	}

	// User-registered contract.
	cf, err := cfg.LoadContracts()
	if err != nil {
		return common.Address{}, nil, "", err
	}
	for _, entry := range cf.Contracts {
		if entry.Name != ref {
			continue
		}
		parsed, err := gethabi.JSON(strings.NewReader(entry.ABI))
		if err != nil {
			return common.Address{}, nil, "", fmt.Errorf("contract %q has an invalid stored ABI: %w", ref, err)
		}
		return common.HexToAddress(entry.Address), []gethabi.ABI{parsed}, entry.Name, nil
	}

	return common.Address{}, nil, "", fmt.Errorf("unknown contract %q — use a built-in id, a registered name or an address", ref)
}

// userContractABIs parses every registered contract ABI, skipping broken ones.
func userContractABIs() []gethabi.ABI {
	cf, err := cfg.LoadContracts()
	if err != nil {
		return nil
	}
	var abis []gethabi.ABI
	for _, entry := range cf.Contracts {
		parsed, err := gethabi.JSON(strings.NewReader(entry.ABI))
		if err != nil {
			continue
		}
		abis = append(abis, parsed)
	}
	return abis
}

// displayEvent is a decoded event reduced to printable parts.
type displayEvent struct {
	Contract string
	Name     string
	Summary  string
}

// decodedReceiptEvents decodes receipt logs against the built-in ABIs.
func decodedReceiptEvents(logs []*types.Log) []displayEvent {
	var out []displayEvent
	for _, ev := range contract.ParseReceiptLogs(logs) {
		label := ui.TruncateHash(ev.Log.Address.Hex())
		if b, ok := contract.BuiltinByAddress(ev.Log.Address); ok {
			label = b.ID
		}
		out = append(out, displayEvent{
			Contract: label,
			Name:     ev.Name,
			Summary:  summarizeArgs(ev.Args),
		})
	}
	return out
}

// summarizeArgs renders decoded event args as "key=value" pairs in
// stable order.
func summarizeArgs(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, formatArg(args[k])))
	}
	return strings.Join(parts, " ")
}

func formatArg(v any) string {
	switch v := v.(type) {
	case common.Address:
		return ui.TruncateHash(v.Hex())
	case common.Hash:
		return ui.TruncateHash(v.Hex())
	case []byte:
		return ui.TruncateHash(fmt.Sprintf("0x%x", v))
	default:
		return fmt.Sprintf("%v", v)
	}
}

func init() {
	eventsCmd.Flags().Uint64Var(&eventsFromBlock, "from", 0, "start block (0 = latest range default)")
	eventsCmd.Flags().Uint64Var(&eventsToBlock, "to", 0, "end block (0 = latest)")
	eventsCmd.Flags().StringVar(&eventsName, "event", "", `only show this event; a full signature like "Transfer(address,address,uint256)" filters server-side`)
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 0, "max events to print (0 = all)")
}
