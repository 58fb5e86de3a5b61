package precompile

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempoxyz/tempo-go/internal/chain"
	"github.com/tempoxyz/tempo-go/internal/contract"
)

// callServer answers eth_call by matching the 4-byte selector against packed
// return values.
func callServer(t *testing.T, returns map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     int               `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck

		var result any
		if req.Method == "eth_call" && len(req.Params) > 0 {
			var msg struct {
				Data hexutil.Bytes `json:"data"`
			}
			json.Unmarshal(req.Params[0], &msg) //nolint:errcheck
			if len(msg.Data) >= 4 {
				result = returns[hexutil.Encode(msg.Data[:4])]
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"jsonrpc": "2.0", "id": req.ID, "result": result,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func selector(fn string) string {
	return hexutil.Encode(TokenABI.Methods[fn].ID)
}

func packOut(t *testing.T, fn string, vals ...any) string {
	t.Helper()
	out, err := TokenABI.Methods[fn].Outputs.Pack(vals...)
	require.NoError(t, err)
	return hexutil.Encode(out)
}

func TestTokenMetadata(t *testing.T) {
	srv := callServer(t, map[string]string{
		selector("name"):     packOut(t, "name", "Tempo USD"),
		selector("symbol"):   packOut(t, "symbol", "USDT0"),
		selector("decimals"): packOut(t, "decimals", uint8(6)),
	})

	tok := NewToken(chain.NewClient(srv.URL), NativeFeeToken, nil)
	md, err := tok.Metadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Tempo USD", md.Name)
	assert.Equal(t, "USDT0", md.Symbol)
	assert.Equal(t, uint8(6), md.Decimals)
}

func TestTokenReads(t *testing.T) {
	srv := callServer(t, map[string]string{
		selector("totalSupply"): packOut(t, "totalSupply", big.NewInt(1_000_000)),
		selector("balanceOf"):   packOut(t, "balanceOf", big.NewInt(500)),
		selector("allowance"):   packOut(t, "allowance", big.NewInt(42)),
	})

	tok := NewToken(chain.NewClient(srv.URL), NativeFeeToken, nil)
	ctx := context.Background()
	owner := common.HexToAddress("0x1111111111111111111111111111111111111111")
	spender := common.HexToAddress("0x2222222222222222222222222222222222222222")

	supply, err := tok.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000), supply)

	bal, err := tok.BalanceOf(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), bal)

	allow, err := tok.Allowance(ctx, owner, spender)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), allow)
}

func TestBuiltinAddressesRegistered(t *testing.T) {
	expect := map[string]common.Address{
		"token":      NativeFeeToken,
		"fee":        FeeManagerAddress,
		"dex":        DexAddress,
		"amm":        AmmAddress,
		"reward":     RewardAddress,
		"policy":     PolicyAddress,
		"validator":  ValidatorAddress,
	}
	for id, addr := range expect {
		b, ok := contract.GetBuiltin(id)
		require.True(t, ok, "builtin %q not registered", id)
		assert.Equal(t, addr, b.Address, "builtin %q", id)
		assert.NotEmpty(t, b.ABI.Methods, "builtin %q has empty ABI", id)

		byAddr, ok := contract.BuiltinByAddress(addr)
		require.True(t, ok)
		assert.Equal(t, id, byAddr.ID)
	}
}

func TestBuiltinAddressesDistinct(t *testing.T) {
	addrs := []common.Address{
		FeeManagerAddress, DexAddress, AmmAddress, RewardAddress,
		PolicyAddress, ValidatorAddress, NativeFeeToken,
	}
	seen := make(map[common.Address]bool)
	for _, a := range addrs {
		assert.False(t, seen[a], "duplicate address %s", a)
		seen[a] = true
	}
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		raw      *big.Int
		decimals uint8
		want     string
	}{
		{big.NewInt(1_500_000), 6, "1.500000"},
		{big.NewInt(1), 6, "0.000001"},
		{big.NewInt(0), 6, "0.000000"},
		{big.NewInt(42), 0, "42"},
		{new(big.Int).Mul(big.NewInt(25), big.NewInt(1e17)), 18, "2.500000000000000000"},
		{nil, 18, "0"}, // null balance / omitted fee amount from the node
		{nil, 0, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUnits(tt.raw, tt.decimals))
	}
}

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in       string
		decimals uint8
		want     *big.Int
	}{
		{"1.5", 6, big.NewInt(1_500_000)},
		{"0.000001", 6, big.NewInt(1)},
		{"42", 0, big.NewInt(42)},
		{"100", 6, big.NewInt(100_000_000)},
	}
	for _, tt := range tests {
		got, err := ParseUnits(tt.in, tt.decimals)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "ParseUnits(%q, %d)", tt.in, tt.decimals)
	}

	_, err := ParseUnits("not-a-number", 6)
	assert.Error(t, err)
}

func TestParseFormatRoundtrip(t *testing.T) {
	for _, s := range []string{"1.500000", "0.000001", "123456.789000"} {
		raw, err := ParseUnits(s, 6)
		require.NoError(t, err)
		assert.Equal(t, s, FormatUnits(raw, 6))
	}
}
