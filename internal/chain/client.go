// Package chain is a minimal JSON-RPC client for tempo nodes. It speaks the
// standard eth_* namespace plus the tempo_* extensions (nonce lanes, fee
// token queries) and decodes type-0x76 transactions and receipts.
package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/tempoxyz/tempo-go/internal/tempotx"
)

// Errors.
var (
	ErrTxNotFound = errors.New("transaction not found")
	ErrTxReverted = errors.New("transaction reverted")
)

// Client is a JSON-RPC client for a tempo node.
type Client struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger attaches a logger; RPC calls are traced at debug level.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.client = h }
}

// NewClient creates a client pointed at url.
func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint this client talks to.
func (c *Client) URL() string { return c.url }

// ChainID returns the chain's ID.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return c.callBig(ctx, "eth_chainId")
}

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.callBig(ctx, "eth_blockNumber")
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// GetBalance returns the native balance for an address.
func (c *Client) GetBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return c.callBig(ctx, "eth_getBalance", addr, "latest")
}

// GetNonce returns the next nonce for an address on nonce lane key. Lane 0
// uses the standard eth_getTransactionCount; other lanes go through the
// tempo_getNonce extension.
func (c *Client) GetNonce(ctx context.Context, addr common.Address, nonceKey uint64) (uint64, error) {
	var (
		n   *big.Int
		err error
	)
	if nonceKey == 0 {
		n, err = c.callBig(ctx, "eth_getTransactionCount", addr, "pending")
	} else {
		n, err = c.callBig(ctx, "tempo_getNonce", addr, hexutil.Uint64(nonceKey))
	}
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// GasPrice returns the current gas price.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	return c.callBig(ctx, "eth_gasPrice")
}

// callMsg is the eth_call / eth_estimateGas parameter shape.
type callMsg struct {
	From  *common.Address `json:"from,omitempty"`
	To    *common.Address `json:"to,omitempty"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
}

// CallContract executes a read-only contract call and returns the raw result.
func (c *Client) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	var out hexutil.Bytes
	err := c.call(ctx, &out, "eth_call", callMsg{To: &to, Data: data}, "latest")
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EstimateGas estimates gas for a single call. Falls back to a conservative
// default when the node cannot estimate.
func (c *Client) EstimateGas(ctx context.Context, from common.Address, to *common.Address, data []byte, value *big.Int) (uint64, error) {
	msg := callMsg{From: &from, To: to, Data: data}
	if value != nil && value.Sign() > 0 {
		msg.Value = (*hexutil.Big)(value)
	}
	var out hexutil.Uint64
	if err := c.call(ctx, &out, "eth_estimateGas", msg, "latest"); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// SendRawTransaction broadcasts an encoded tempo transaction.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	var hash common.Hash
	if err := c.call(ctx, &hash, "eth_sendRawTransaction", hexutil.Bytes(raw)); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// SendTransaction encodes, broadcasts, and returns the hash of a signed
// tempo transaction.
func (c *Client) SendTransaction(ctx context.Context, tx *tempotx.Tx) (common.Hash, error) {
	raw, err := tx.EncodeBinary()
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding transaction: %w", err)
	}
	return c.SendRawTransaction(ctx, raw)
}

// TransactionByHash fetches a transaction and decodes the tempo wire shape.
func (c *Client) TransactionByHash(ctx context.Context, hash common.Hash) (*tempotx.Tx, *tempotx.RPCTransaction, error) {
	var rt *tempotx.RPCTransaction
	if err := c.call(ctx, &rt, "eth_getTransactionByHash", hash); err != nil {
		return nil, nil, err
	}
	if rt == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrTxNotFound, hash)
	}
	tx, err := tempotx.ParseTransaction(rt)
	if err != nil {
		return nil, rt, fmt.Errorf("parsing transaction %s: %w", hash, err)
	}
	return tx, rt, nil
}

// TransactionReceipt fetches the receipt for hash.
// Returns nil, nil while the transaction is pending.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*tempotx.Receipt, error) {
	var rr *tempotx.RPCReceipt
	if err := c.call(ctx, &rr, "eth_getTransactionReceipt", hash); err != nil {
		return nil, err
	}
	if rr == nil {
		return nil, nil // still pending
	}
	return tempotx.ParseReceipt(rr), nil
}

// WaitForReceipt polls until the transaction is mined or ctx expires.
// Returns the receipt and ErrTxReverted if the transaction reverted.
func (c *Client) WaitForReceipt(ctx context.Context, hash common.Hash) (*tempotx.Receipt, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		receipt, err := c.TransactionReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			if !receipt.Success() {
				return receipt, fmt.Errorf("%w (hash: %s)", ErrTxReverted, hash)
			}
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("transaction %s not mined: %w", hash, ctx.Err())
		case <-ticker.C:
		}
	}
}

// LogFilter is the eth_getLogs parameter shape.
type LogFilter struct {
	Address   *common.Address `json:"address,omitempty"`
	Topics    [][]common.Hash `json:"topics,omitempty"`
	FromBlock string          `json:"fromBlock,omitempty"`
	ToBlock   string          `json:"toBlock,omitempty"`
}

// GetLogs queries event logs matching the given filter.
func (c *Client) GetLogs(ctx context.Context, filter LogFilter) ([]types.Log, error) {
	var logs []types.Log
	if err := c.call(ctx, &logs, "eth_getLogs", filter); err != nil {
		return nil, err
	}
	return logs, nil
}

// FeeTokenBalance returns the balance an address holds in its configured fee
// token, via the tempo_feeTokenBalance extension.
func (c *Client) FeeTokenBalance(ctx context.Context, addr common.Address) (token common.Address, balance *big.Int, err error) {
	var out struct {
		Token   common.Address `json:"token"`
		Balance *hexutil.Big   `json:"balance"`
	}
	if err := c.call(ctx, &out, "tempo_feeTokenBalance", addr); err != nil {
		return common.Address{}, nil, err
	}
	return out.Token, (*big.Int)(out.Balance), nil
}

// SimulateCall simulates a call with eth_call. Returns (true, returnData, nil)
// on success or (false, revertReason, nil) if the call reverts. Network errors
// return (false, "", err).
func (c *Client) SimulateCall(ctx context.Context, from common.Address, to common.Address, data []byte, value *big.Int) (bool, string, error) {
	msg := callMsg{From: &from, To: &to, Data: data}
	if value != nil && value.Sign() > 0 {
		msg.Value = (*hexutil.Big)(value)
	}
	var out hexutil.Bytes
	err := c.call(ctx, &out, "eth_call", msg, "latest")
	if err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "revert") || strings.Contains(errMsg, "execution") {
			return false, extractRevertReason(errMsg), nil
		}
		return false, "", err
	}
	return true, hexutil.Encode(out), nil
}

// extractRevertReason tries to pull the revert reason out of an RPC error message.
func extractRevertReason(errMsg string) string {
	// Common pattern: "execution reverted: <reason>"
	if idx := strings.Index(errMsg, "execution reverted:"); idx >= 0 {
		return strings.TrimSpace(errMsg[idx:])
	}
	if idx := strings.Index(errMsg, "revert"); idx >= 0 {
		return strings.TrimSpace(errMsg[idx:])
	}
	return errMsg
}

// Ping tests the RPC endpoint and returns latency + block number.
func (c *Client) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.BlockNumber(ctx)
	latency = time.Since(start)
	return latency, blockNum, err
}

// --- internal JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) callBig(ctx context.Context, method string, params ...any) (*big.Int, error) {
	var out hexutil.Big
	if err := c.call(ctx, &out, method, params...); err != nil {
		return nil, err
	}
	return (*big.Int)(&out), nil
}

// call issues one JSON-RPC request and unmarshals the result into out.
// A JSON null result leaves out untouched.
func (c *Client) call(ctx context.Context, out any, method string, params ...any) error {
	if params == nil {
		params = []any{}
	}
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(string(reqBody)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	c.log.Debug().
		Str("method", method).
		Dur("took", time.Since(start)).
		Msg("rpc call")

	if rpcResp.Error != nil {
		return fmt.Errorf("RPC error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	if string(rpcResp.Result) == "null" || len(rpcResp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("parsing result: %w", err)
	}
	return nil
}
