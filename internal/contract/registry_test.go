package contract

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	addr := common.HexToAddress("0x00000000000000000000000000000000000000fe")
	RegisterBuiltin(Builtin{
		ID:      "registrytest",
		Name:    "Registry Test",
		Address: addr,
		ABI:     MustParseABI(testTokenABI),
	})

	b, ok := GetBuiltin("registrytest")
	require.True(t, ok)
	assert.Equal(t, "Registry Test", b.Name)
	assert.Contains(t, b.ABI.Events, "Transfer")

	byAddr, ok := BuiltinByAddress(addr)
	require.True(t, ok)
	assert.Equal(t, "registrytest", byAddr.ID)

	_, ok = GetBuiltin("nonexistent")
	assert.False(t, ok)
	_, ok = BuiltinByAddress(common.HexToAddress("0xdead"))
	assert.False(t, ok)
}

func TestAllBuiltinsSorted(t *testing.T) {
	all := AllBuiltins()
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}

func TestMustParseABIPanics(t *testing.T) {
	assert.Panics(t, func() { MustParseABI("{not json") })
}
