// Package contract provides the generic contract-interaction primitives:
// read calls, tempo-envelope writes, and ABI event-log decoding. Encoding
// semantics are owned by go-ethereum's accounts/abi package; this package
// only routes typed calls through it.
package contract

import (
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Builtin describes a built-in contract whose ABI is embedded in the binary.
// New built-ins register themselves via init() in their own file — just
// create a <name>.go under internal/precompile and call RegisterBuiltin().
type Builtin struct {
	ID          string         // machine key, e.g. "token", "dex"
	Name        string         // human label
	Description string         // one-line summary
	Address     common.Address // fixed precompile address
	ABI         abi.ABI        // parsed ABI, ready to use
}

var builtinRegistry = map[string]Builtin{}

// MustParseABI parses an ABI JSON document, panicking on malformed input.
// Built-in ABIs are compile-time constants, so a parse failure is a bug.
func MustParseABI(abiJSON string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic("invalid builtin ABI: " + err.Error())
	}
	return parsed
}

// RegisterBuiltin adds a built-in ABI to the global registry.
// Call this from init() in the file that defines the ABI.
func RegisterBuiltin(b Builtin) {
	builtinRegistry[b.ID] = b
}

// GetBuiltin returns a built-in by ID. ok is false if not found.
func GetBuiltin(id string) (Builtin, bool) {
	b, ok := builtinRegistry[id]
	return b, ok
}

// BuiltinByAddress returns the built-in registered at addr, if any.
func BuiltinByAddress(addr common.Address) (Builtin, bool) {
	for _, b := range builtinRegistry {
		if b.Address == addr {
			return b, true
		}
	}
	return Builtin{}, false
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []Builtin {
	out := make([]Builtin, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
