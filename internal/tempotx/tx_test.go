package tempotx

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempoxyz/tempo-go/internal/sig"
)

func sampleTx() *Tx {
	to := common.HexToAddress("0x9876543210fedcba9876543210fedcba98765432")
	return &Tx{
		ChainID:   big.NewInt(7777),
		NonceKey:  3,
		Nonce:     12,
		GasTipCap: big.NewInt(1_000_000_000),
		GasFeeCap: big.NewInt(2_000_000_000),
		Gas:       60_000,
		Calls: []Call{
			{To: &to, Value: big.NewInt(5), Data: []byte{0xa9, 0x05, 0x9c, 0xbb}},
		},
		FeeToken: common.HexToAddress("0x20c0000000000000000000000000000000000001"),
	}
}

func signTx(t *testing.T, tx *Tx, hexKey string) common.Address {
	t.Helper()
	key, err := crypto.HexToECDSA(hexKey)
	require.NoError(t, err)
	hash, err := tx.SigHash()
	require.NoError(t, err)
	raw, err := crypto.Sign(hash.Bytes(), key)
	require.NoError(t, err)
	tx.Signature = sig.Envelope{Scheme: sig.SchemeSecp256k1, Sig: raw}
	return crypto.PubkeyToAddress(key.PublicKey)
}

const (
	senderKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	payerKey  = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
)

func TestEncodeDecodeRoundtrip(t *testing.T) {
	tx := sampleTx()
	signTx(t, tx, senderKey)

	raw, err := tx.EncodeBinary()
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.Equal(t, byte(TxType), raw[0])

	decoded, err := DecodeBinary(raw)
	require.NoError(t, err)
	assert.Equal(t, tx.ChainID, decoded.ChainID)
	assert.Equal(t, tx.NonceKey, decoded.NonceKey)
	assert.Equal(t, tx.Nonce, decoded.Nonce)
	assert.Equal(t, tx.Gas, decoded.Gas)
	assert.Equal(t, tx.FeeToken, decoded.FeeToken)
	require.Len(t, decoded.Calls, 1)
	assert.Equal(t, *tx.Calls[0].To, *decoded.Calls[0].To)
	assert.Equal(t, tx.Calls[0].Data, decoded.Calls[0].Data)
	assert.Equal(t, tx.Signature.Sig, decoded.Signature.Sig)
}

func TestDecodeBinaryErrors(t *testing.T) {
	_, err := DecodeBinary(nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)

	// EIP-1559 selector instead of ours.
	_, err = DecodeBinary([]byte{0x02, 0xc0})
	assert.ErrorIs(t, err, ErrWrongTxType)

	// Right selector, garbage body.
	_, err = DecodeBinary([]byte{TxType, 0xff, 0xff})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tx := sampleTx()
	tx.Calls = nil
	_, err := tx.EncodeBinary()
	assert.ErrorIs(t, err, ErrNoCalls)

	tx = sampleTx()
	tx.GasFeeCap = nil
	_, err = tx.EncodeBinary()
	assert.ErrorIs(t, err, ErrGasFeeCapNil)

	tx = sampleTx()
	tx.Signature = sig.Envelope{Scheme: 9, Sig: make([]byte, 65)}
	_, err = tx.EncodeBinary()
	assert.ErrorIs(t, err, sig.ErrUnsupportedScheme)
}

func TestSigHashStable(t *testing.T) {
	tx := sampleTx()
	h1, err := tx.SigHash()
	require.NoError(t, err)
	h2, err := tx.SigHash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	// Attaching a signature must not change the sig hash.
	signTx(t, tx, senderKey)
	h3, err := tx.SigHash()
	require.NoError(t, err)
	assert.Equal(t, h1, h3)

	// Changing any committed field must change it.
	tx.Nonce++
	h4, err := tx.SigHash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h4)
}

func TestFeePayerSigHashCommitsToSenderSig(t *testing.T) {
	tx := sampleTx()
	signTx(t, tx, senderKey)

	h1, err := tx.FeePayerSigHash()
	require.NoError(t, err)

	// A different sender signature produces a different fee-payer hash even
	// though the committed fields are identical.
	tx2 := sampleTx()
	signTx(t, tx2, payerKey)
	h2, err := tx2.FeePayerSigHash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	// And both differ from the plain sig hash.
	sh, err := tx.SigHash()
	require.NoError(t, err)
	assert.NotEqual(t, sh, h1)
}

func TestSenderRecovery(t *testing.T) {
	tx := sampleTx()
	want := signTx(t, tx, senderKey)

	got, err := tx.Sender()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSenderUnsigned(t *testing.T) {
	tx := sampleTx()
	_, err := tx.Sender()
	assert.ErrorIs(t, err, ErrUnsigned)
}

func TestFeePayer(t *testing.T) {
	tx := sampleTx()
	signTx(t, tx, senderKey)

	// Self-paid: no fee payer.
	_, ok, err := tx.FeePayer()
	require.NoError(t, err)
	assert.False(t, ok)

	// Sponsor signs the fee-payer hash.
	key, err := crypto.HexToECDSA(payerKey)
	require.NoError(t, err)
	hash, err := tx.FeePayerSigHash()
	require.NoError(t, err)
	tx.FeePayerSig, err = crypto.Sign(hash.Bytes(), key)
	require.NoError(t, err)

	payer, ok, err := tx.FeePayer()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), payer)
}

func TestHashCoversSignatures(t *testing.T) {
	tx := sampleTx()
	signTx(t, tx, senderKey)
	h1, err := tx.Hash()
	require.NoError(t, err)

	key, err := crypto.HexToECDSA(payerKey)
	require.NoError(t, err)
	fpHash, err := tx.FeePayerSigHash()
	require.NoError(t, err)
	tx.FeePayerSig, err = crypto.Sign(fpHash.Bytes(), key)
	require.NoError(t, err)

	h2, err := tx.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestCost(t *testing.T) {
	tx := sampleTx()
	to := common.HexToAddress("0x1111111111111111111111111111111111111111")
	tx.Calls = append(tx.Calls, Call{To: &to, Value: big.NewInt(95)})

	// 60000 * 2e9 + 5 + 95
	want := new(big.Int).Mul(big.NewInt(60_000), big.NewInt(2_000_000_000))
	want.Add(want, big.NewInt(100))
	assert.Equal(t, want, tx.Cost())
}

func TestCostNilFields(t *testing.T) {
	to := common.HexToAddress("0x1111111111111111111111111111111111111111")
	tx := &Tx{
		Gas:   60_000,
		Calls: []Call{{To: &to}, {To: &to, Value: big.NewInt(7)}},
	}
	// Unpriced and partially unvalued transactions still cost their values.
	assert.Equal(t, big.NewInt(7), tx.Cost())
}

func TestContractCreationCall(t *testing.T) {
	tx := sampleTx()
	tx.Calls = []Call{{Value: new(big.Int), Data: []byte{0x60, 0x80, 0x60, 0x40}}}
	signTx(t, tx, senderKey)

	raw, err := tx.EncodeBinary()
	require.NoError(t, err)
	decoded, err := DecodeBinary(raw)
	require.NoError(t, err)
	require.Len(t, decoded.Calls, 1)
	assert.Nil(t, decoded.Calls[0].To)
	assert.Equal(t, tx.Calls[0].Data, decoded.Calls[0].Data)
}

func TestKeyAuthRoundtrip(t *testing.T) {
	tx := sampleTx()
	tx.KeyAuth = &KeyAuthorization{
		Scheme:    sig.SchemeP256,
		PublicKey: make([]byte, 65),
		Expiry:    1_900_000_000,
		Signature: make([]byte, 65),
	}
	tx.KeyAuth.PublicKey[0] = 0x04
	signTx(t, tx, senderKey)

	raw, err := tx.EncodeBinary()
	require.NoError(t, err)
	decoded, err := DecodeBinary(raw)
	require.NoError(t, err)
	require.NotNil(t, decoded.KeyAuth)
	assert.Equal(t, sig.SchemeP256, decoded.KeyAuth.Scheme)
	assert.Equal(t, uint64(1_900_000_000), decoded.KeyAuth.Expiry)
}

func TestAccessListRoundtrip(t *testing.T) {
	tx := sampleTx()
	tx.AccessList = types.AccessList{{
		Address:     common.HexToAddress("0x2222222222222222222222222222222222222222"),
		StorageKeys: []common.Hash{common.HexToHash("0x01")},
	}}
	signTx(t, tx, senderKey)

	raw, err := tx.EncodeBinary()
	require.NoError(t, err)
	decoded, err := DecodeBinary(raw)
	require.NoError(t, err)
	require.Len(t, decoded.AccessList, 1)
	assert.Equal(t, tx.AccessList[0].Address, decoded.AccessList[0].Address)
	assert.Equal(t, tx.AccessList[0].StorageKeys, decoded.AccessList[0].StorageKeys)
}
