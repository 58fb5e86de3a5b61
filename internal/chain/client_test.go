package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rpcHandler serves canned results keyed by method; methods mapped to an
// rpcErr value produce a JSON-RPC error response.
type rpcErr struct {
	Code    int
	Message string
}

func newTestServer(t *testing.T, results map[string]any) (*httptest.Server, *[]string) {
	t.Helper()
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int    `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		calls = append(calls, req.Method)

		w.Header().Set("Content-Type", "application/json")
		res, ok := results[req.Method]
		if !ok {
			res = nil
		}
		if e, isErr := res.(rpcErr); isErr {
			json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
				"jsonrpc": "2.0", "id": req.ID,
				"error": map[string]any{"code": e.Code, "message": e.Message},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"jsonrpc": "2.0", "id": req.ID, "result": res,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestChainID(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{"eth_chainId": "0x1e61"})
	c := NewClient(srv.URL)

	id, err := c.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7777), id)
}

func TestBlockNumberAndPing(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{"eth_blockNumber": "0xabc"})
	c := NewClient(srv.URL)

	n, err := c.BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(0xabc), n)

	latency, blockNum, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(0xabc), blockNum)
	assert.Greater(t, latency, time.Duration(0))
}

func TestGetBalance(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{"eth_getBalance": "0xde0b6b3a7640000"})
	c := NewClient(srv.URL)

	bal, err := c.GetBalance(context.Background(), common.Address{})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000_000_000_000_000), bal)
}

func TestGetNonceLanes(t *testing.T) {
	srv, calls := newTestServer(t, map[string]any{
		"eth_getTransactionCount": "0x7",
		"tempo_getNonce":          "0x2a",
	})
	c := NewClient(srv.URL)
	addr := common.HexToAddress("0x1234567890abcdef1234567890abcdef12345678")

	// Lane 0 uses the standard namespace.
	n, err := c.GetNonce(context.Background(), addr, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)
	assert.Equal(t, []string{"eth_getTransactionCount"}, *calls)

	// Other lanes go through the tempo extension.
	n, err = c.GetNonce(context.Background(), addr, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), n)
	assert.Equal(t, "tempo_getNonce", (*calls)[1])
}

func TestCallContract(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{"eth_call": "0xdeadbeef"})
	c := NewClient(srv.URL)

	out, err := c.CallContract(context.Background(), common.Address{}, []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, out)
}

func TestEstimateGas(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{"eth_estimateGas": "0x5208"})
	c := NewClient(srv.URL)

	to := common.HexToAddress("0x1111111111111111111111111111111111111111")
	gas, err := c.EstimateGas(context.Background(), common.Address{}, &to, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), gas)
}

func TestRPCError(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{
		"eth_getBalance": rpcErr{Code: -32000, Message: "header not found"},
	})
	c := NewClient(srv.URL)

	_, err := c.GetBalance(context.Background(), common.Address{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header not found")
}

func TestTransactionByHashNotFound(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{"eth_getTransactionByHash": nil})
	c := NewClient(srv.URL)

	_, _, err := c.TransactionByHash(context.Background(), common.HexToHash("0x01"))
	assert.ErrorIs(t, err, ErrTxNotFound)
}

func TestTransactionReceiptPending(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{"eth_getTransactionReceipt": nil})
	c := NewClient(srv.URL)

	rec, err := c.TransactionReceipt(context.Background(), common.HexToHash("0x01"))
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestTransactionReceiptMined(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{"eth_getTransactionReceipt": map[string]any{
		"transactionHash": "0x0000000000000000000000000000000000000000000000000000000000000001",
		"status":          "0x1",
		"blockHash":       "0x0000000000000000000000000000000000000000000000000000000000000002",
		"blockNumber":     "0x64",
		"gasUsed":         "0xc842",
		"logs":            []any{},
		"feeToken":        "0x20c0000000000000000000000000000000000001",
		"feeAmount":       "0x64",
	}})
	c := NewClient(srv.URL)

	rec, err := c.TransactionReceipt(context.Background(), common.HexToHash("0x01"))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Success())
	assert.Equal(t, uint64(0xc842), rec.GasUsed)
	assert.Equal(t, big.NewInt(100), rec.BlockNumber)
	assert.Equal(t, common.HexToAddress("0x20c0000000000000000000000000000000000001"), rec.FeeToken)
	assert.Equal(t, big.NewInt(100), rec.FeeAmount)
}

func TestWaitForReceiptReverted(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{"eth_getTransactionReceipt": map[string]any{
		"transactionHash": "0x0000000000000000000000000000000000000000000000000000000000000001",
		"status":          "0x0",
		"blockHash":       "0x0000000000000000000000000000000000000000000000000000000000000002",
		"blockNumber":     "0x64",
		"gasUsed":         "0x5208",
		"logs":            []any{},
		"feeToken":        "0x0000000000000000000000000000000000000000",
		"feeAmount":       "0x0",
	}})
	c := NewClient(srv.URL)

	rec, err := c.WaitForReceipt(context.Background(), common.HexToHash("0x01"))
	assert.ErrorIs(t, err, ErrTxReverted)
	require.NotNil(t, rec)
	assert.False(t, rec.Success())
}

func TestWaitForReceiptTimeout(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{"eth_getTransactionReceipt": nil})
	c := NewClient(srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.WaitForReceipt(ctx, common.HexToHash("0x01"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGetLogs(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{"eth_getLogs": []any{
		map[string]any{
			"address":          "0x20c0000000000000000000000000000000000001",
			"topics":           []string{"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"},
			"data":             "0x",
			"blockNumber":      "0x10",
			"transactionHash":  "0x0000000000000000000000000000000000000000000000000000000000000003",
			"transactionIndex": "0x0",
			"blockHash":        "0x0000000000000000000000000000000000000000000000000000000000000004",
			"logIndex":         "0x0",
			"removed":          false,
		},
	}})
	c := NewClient(srv.URL)

	addr := common.HexToAddress("0x20c0000000000000000000000000000000000001")
	logs, err := c.GetLogs(context.Background(), LogFilter{
		Address:   &addr,
		FromBlock: "0x1",
		ToBlock:   "latest",
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, addr, logs[0].Address)
	assert.Equal(t, uint64(0x10), logs[0].BlockNumber)
}

func TestSimulateCallRevert(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{
		"eth_call": rpcErr{Code: 3, Message: "execution reverted: insufficient balance"},
	})
	c := NewClient(srv.URL)

	ok, reason, err := c.SimulateCall(context.Background(), common.Address{}, common.Address{}, nil, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, reason, "insufficient balance")
}

func TestSimulateCallSuccess(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{"eth_call": "0x01"})
	c := NewClient(srv.URL)

	ok, ret, err := c.SimulateCall(context.Background(), common.Address{}, common.Address{}, nil, big.NewInt(1))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0x01", ret)
}

func TestExtractRevertReason(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"RPC error 3: execution reverted: nope", "execution reverted: nope"},
		{"RPC error 3: revert", "revert"},
		{"something else entirely", "something else entirely"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractRevertReason(tt.in))
	}
}
