package contract

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
)

func newRPCServer(t *testing.T, results map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int    `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck

		w.Header().Set("Content-Type", "application/json")
		res := results[req.Method]
		if errMsg, isErr := res.(error); isErr {
			json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
				"jsonrpc": "2.0", "id": req.ID,
				"error": map[string]any{"code": -32000, "message": errMsg.Error()},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"jsonrpc": "2.0", "id": req.ID, "result": res,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCallerCall(t *testing.T) {
	a := MustParseABI(testTokenABI)

	// balanceOf returns a single uint256.
	ret, err := a.Methods["balanceOf"].Outputs.Pack(big.NewInt(500))
	require.NoError(t, err)

	srv := newRPCServer(t, map[string]any{"eth_call": hexutil.Encode(ret)})
	caller := NewCaller(chain.NewClient(srv.URL), a)

	out, err := caller.Call(context.Background(),
		common.HexToAddress("0x20c0000000000000000000000000000000000001"),
		"balanceOf", fromAddr)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, big.NewInt(500), out[0])
}

func TestCallerCallOne(t *testing.T) {
	a := MustParseABI(testTokenABI)
	ret, err := a.Methods["balanceOf"].Outputs.Pack(big.NewInt(7))
	require.NoError(t, err)

	srv := newRPCServer(t, map[string]any{"eth_call": hexutil.Encode(ret)})
	caller := NewCaller(chain.NewClient(srv.URL), a)

	v, err := caller.CallOne(context.Background(), common.Address{}, "balanceOf", fromAddr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), v)
}

func TestCallerUnknownFunction(t *testing.T) {
	caller := NewCaller(chain.NewClient("http://localhost:0"), MustParseABI(testTokenABI))
	_, err := caller.Call(context.Background(), common.Address{}, "mintEverything")
	assert.ErrorContains(t, err, "not found in ABI")
}

func TestCallerRejectsWriteFunction(t *testing.T) {
	caller := NewCaller(chain.NewClient("http://localhost:0"), MustParseABI(testTokenABI))
	_, err := caller.Call(context.Background(), common.Address{}, "transfer", toAddr, big.NewInt(1))
	assert.ErrorContains(t, err, "not a read function")
}

func TestCallerBadArgs(t *testing.T) {
	caller := NewCaller(chain.NewClient("http://localhost:0"), MustParseABI(testTokenABI))
	_, err := caller.Call(context.Background(), common.Address{}, "balanceOf", "not-an-address")
	assert.ErrorContains(t, err, "encoding call")
}
