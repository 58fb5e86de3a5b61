package config

// Config holds all tempo CLI configuration.
type Config struct {
	DefaultWallet string   `json:"default_wallet"`
	DefaultRPC    string   `json:"default_rpc"`
	RPCs          []string `json:"rpcs"`
	RPCAlgorithm  string   `json:"rpc_algorithm"`  // "fastest" | "first"
	FeeToken      string   `json:"fee_token"`      // default fee token address; empty = native
	WatchInterval int      `json:"watch_interval"` // seconds
	LogLevel      string   `json:"log_level"`      // zerolog level name

	// internal: config dir path used for Save()
	configDir string
}

// ContractEntry is a user-registered contract (beyond the built-ins).
type ContractEntry struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	ABI     string `json:"abi"` // raw ABI JSON
}

// ContractsFile is the structure of contracts.json.
type ContractsFile struct {
	Contracts []ContractEntry `json:"contracts"`
}
