package contract

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempoxyz/tempo-go/internal/chain"
	"github.com/tempoxyz/tempo-go/internal/tempotx"
	"github.com/tempoxyz/tempo-go/internal/wallet"
)

func testSigner(t *testing.T) wallet.Account {
	t.Helper()
	ks := wallet.NewInMemoryKeystore()
	mgr := wallet.NewManager(wallet.WithInMemoryStore(), wallet.WithKeystore(ks))
	require.NoError(t, mgr.AddWithKey("sender",
		"ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", "secp256k1"))
	w, err := mgr.Get("sender")
	require.NoError(t, err)
	acct, err := wallet.FromWallet(w, ks)
	require.NoError(t, err)
	return acct
}

func TestBuildTx(t *testing.T) {
	srv := newRPCServer(t, map[string]any{
		"eth_chainId":             "0x1e61",
		"eth_gasPrice":            "0x3b9aca00", // 1 gwei
		"eth_getTransactionCount": "0x9",
		"eth_estimateGas":         "0x5208",
	})
	sender := NewSender(chain.NewClient(srv.URL), MustParseABI(testTokenABI), testSigner(t))

	tx, err := sender.BuildTx(context.Background(), SendOpts{},
		tempotx.Call{To: &toAddr, Value: big.NewInt(1)})
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(7777), tx.ChainID)
	assert.Equal(t, uint64(9), tx.Nonce)
	assert.Equal(t, uint64(0), tx.NonceKey)
	assert.Equal(t, uint64(21000), tx.Gas)
	assert.Equal(t, big.NewInt(1_000_000_000), tx.GasTipCap)
	// Fee cap leaves headroom over the quoted price.
	assert.Equal(t, big.NewInt(2_000_000_000), tx.GasFeeCap)
}

func TestBuildTxExplicitGasAndLane(t *testing.T) {
	srv := newRPCServer(t, map[string]any{
		"eth_chainId":    "0x1e61",
		"eth_gasPrice":   "0x3b9aca00",
		"tempo_getNonce": "0x2",
	})
	sender := NewSender(chain.NewClient(srv.URL), MustParseABI(testTokenABI), testSigner(t))

	tx, err := sender.BuildTx(context.Background(),
		SendOpts{NonceKey: 4, GasLimit: 300_000},
		tempotx.Call{To: &toAddr})
	require.NoError(t, err)

	assert.Equal(t, uint64(4), tx.NonceKey)
	assert.Equal(t, uint64(2), tx.Nonce)
	assert.Equal(t, uint64(300_000), tx.Gas)
}

func TestBuildTxEstimateFallback(t *testing.T) {
	srv := newRPCServer(t, map[string]any{
		"eth_chainId":             "0x1e61",
		"eth_gasPrice":            "0x3b9aca00",
		"eth_getTransactionCount": "0x0",
		"eth_estimateGas":         errors.New("execution reverted"),
	})
	sender := NewSender(chain.NewClient(srv.URL), MustParseABI(testTokenABI), testSigner(t))

	tx, err := sender.BuildTx(context.Background(), SendOpts{}, tempotx.Call{To: &toAddr})
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000), tx.Gas)
}

func TestBuildTxNoCalls(t *testing.T) {
	sender := NewSender(chain.NewClient("http://localhost:0"), MustParseABI(testTokenABI), testSigner(t))
	_, err := sender.BuildTx(context.Background(), SendOpts{})
	assert.ErrorIs(t, err, tempotx.ErrNoCalls)
}

func TestSendUnknownFunction(t *testing.T) {
	sender := NewSender(chain.NewClient("http://localhost:0"), MustParseABI(testTokenABI), testSigner(t))
	_, err := sender.Send(context.Background(), toAddr, "selfDestruct")
	assert.ErrorContains(t, err, "not found in ABI")
}

func TestSendRejectsReadFunction(t *testing.T) {
	sender := NewSender(chain.NewClient("http://localhost:0"), MustParseABI(testTokenABI), testSigner(t))
	_, err := sender.Send(context.Background(), toAddr, "balanceOf", fromAddr)
	assert.ErrorContains(t, err, "not a write function")
}
