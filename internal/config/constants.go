package config

import "time"

// Gas limits used as EstimateGas fallbacks when the node cannot simulate the tx.
// These are conservative upper bounds; actual gas used will be lower.
const (
	GasLimitTransfer     = uint64(60_000)  // TIP-20 transfer or burn
	GasLimitMint         = uint64(80_000)  // TIP-20 mint
	GasLimitContractCall = uint64(200_000) // generic contract state-change call
	GasLimitSwap         = uint64(300_000) // DEX swap or order placement
)

// Timeout constants used across cmd packages.
const (
	RPCSelectTimeout = 10 * time.Second // endpoint benchmark / RPC selection
	TxConfirmTimeout = 3 * time.Minute  // standard transaction confirmation wait
)
