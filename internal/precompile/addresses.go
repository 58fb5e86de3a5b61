// Package precompile holds the typed action modules for the tempo chain's
// built-in contracts. Each contract lives at a fixed address in the 0x7e
// range and registers its ABI with the contract registry at init time, so
// event logs from any built-in can be decoded generically.
package precompile

import "github.com/ethereum/go-ethereum/common"

// Fixed addresses of the tempo built-in contracts.
var (
	FeeManagerAddress = common.HexToAddress("0x7e00000000000000000000000000000000000001")
	DexAddress        = common.HexToAddress("0x7e00000000000000000000000000000000000002")
	AmmAddress        = common.HexToAddress("0x7e00000000000000000000000000000000000003")
	RewardAddress     = common.HexToAddress("0x7e00000000000000000000000000000000000004")
	PolicyAddress     = common.HexToAddress("0x7e00000000000000000000000000000000000005")
	ValidatorAddress  = common.HexToAddress("0x7e00000000000000000000000000000000000006")

	// NativeFeeToken is the chain's canonical TIP-20 stable token, the
	// default fee token for accounts that never set one.
	NativeFeeToken = common.HexToAddress("0x7e00000000000000000000000000000000000007")
)
