// check-balances: queries native and fee-token balances for a set of wallets
// against one or more tempo endpoints in parallel and prints a summary table.
//
// Run from the module root:
//
//	go run ./scripts/check-balances [rpc-url ...]
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tempoxyz/tempo-go/internal/chain"
	"github.com/tempoxyz/tempo-go/internal/precompile"
)

// ── config ────────────────────────────────────────────────────────────────────

var wallets = []string{
	"0x802D8097eC1D49808F3c2c866020442891adde57",
	"0x315a352720E52EaDCB62f5e0879D5Fea82B959A4",
	"0x5d1D0b1d5790B1c88cC1e94366D3B242991DC05d",
}

const rpcTimeout = 12 * time.Second

// ── types ─────────────────────────────────────────────────────────────────────

type result struct {
	endpoint string
	wallet   string // short form
	native   string
	feeToken string
	feeBal   string
	err      string
}

// ── main ──────────────────────────────────────────────────────────────────────

func main() {
	endpoints := os.Args[1:]
	if len(endpoints) == 0 {
		endpoints = []string{"http://localhost:8545"}
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)

	for _, url := range endpoints {
		for _, wallet := range wallets {
			wg.Add(1)
			go func(url, wallet string) {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
				defer cancel()

				client := chain.NewClient(url)
				addr := common.HexToAddress(wallet)

				r := result{
					endpoint: shortURL(url),
					wallet:   shortAddr(wallet),
					native:   "—",
					feeToken: "—",
					feeBal:   "—",
				}

				// Quick ping first — skip endpoints that don't respond.
				if _, _, pingErr := client.Ping(ctx); pingErr != nil {
					r.err = "unreachable"
				} else {
					if bal, err := client.GetBalance(ctx, addr); err != nil {
						r.err = shortErr(err)
					} else {
						r.native = trimZeros(precompile.FormatUnits(bal, 18))
					}
					if token, bal, err := client.FeeTokenBalance(ctx, addr); err == nil {
						if token == (common.Address{}) {
							r.feeToken = "native"
						} else {
							r.feeToken = shortAddr(token.Hex())
						}
						r.feeBal = trimZeros(precompile.FormatUnits(bal, 18))
					}
				}

				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}(url, wallet)
		}
	}

	wg.Wait()

	printTable(results)
}

// ── output ────────────────────────────────────────────────────────────────────

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.endpoint != b.endpoint {
			return a.endpoint < b.endpoint
		}
		return a.wallet < b.wallet
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ENDPOINT\tWALLET\tNATIVE\tFEE TOKEN\tFEE BALANCE\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 20)+"\t"+
		strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 18)+"\t"+
		strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 18)+"\t"+
		strings.Repeat("-", 12))

	lastEndpoint := ""
	for _, r := range results {
		if r.endpoint != lastEndpoint {
			if lastEndpoint != "" {
				fmt.Fprintln(w, "\t\t\t\t\t") // blank separator between endpoints
			}
			lastEndpoint = r.endpoint
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.endpoint, r.wallet, r.native, r.feeToken, r.feeBal, r.err)
	}
	w.Flush()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func shortAddr(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func shortURL(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	if len(url) > 20 {
		return url[:20] + "…"
	}
	return url
}

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}

// trimZeros removes trailing zeros after decimal: "0.050000000000000000" → "0.05"
func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
