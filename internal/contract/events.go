package contract

import (
	"errors"
	"fmt"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrEventNotFound is returned when a log's topic0 matches no event in the
// ABI being decoded against.
var ErrEventNotFound = errors.New("event not found")

// DecodedEvent is one event log decoded against an ABI.
type DecodedEvent struct {
	Name string
	Args map[string]any
	Log  types.Log
}

// DecodeEventLog matches a raw log against the ABI's events by topic0 and
// decodes its parameters: indexed arguments come from the topics (dynamic
// indexed types surface as their 32-byte hash), the rest from the data blob.
func DecodeEventLog(contractABI gethabi.ABI, log types.Log) (*DecodedEvent, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("%w: log has no topics", ErrEventNotFound)
	}

	event, err := contractABI.EventByID(log.Topics[0])
	if err != nil {
		return nil, fmt.Errorf("%w: topic %s", ErrEventNotFound, log.Topics[0])
	}

	args := make(map[string]any)
	if len(log.Data) > 0 {
		if err := contractABI.UnpackIntoMap(args, event.Name, log.Data); err != nil {
			return nil, fmt.Errorf("decoding event %q data: %w", event.Name, err)
		}
	}

	var indexed gethabi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if len(indexed) != len(log.Topics)-1 {
		return nil, fmt.Errorf("decoding event %q: %d indexed args but %d topics", event.Name, len(indexed), len(log.Topics)-1)
	}
	if len(indexed) > 0 {
		if err := gethabi.ParseTopicsIntoMap(args, indexed, log.Topics[1:]); err != nil {
			return nil, fmt.Errorf("decoding event %q topics: %w", event.Name, err)
		}
	}

	return &DecodedEvent{Name: event.Name, Args: args, Log: log}, nil
}

// ParseEventLogs decodes every log that matches one of the given ABIs. In
// strict mode a log that matches no ABI fails the whole parse; otherwise
// unmatched logs are skipped (receipts routinely interleave events from
// several contracts).
func ParseEventLogs(abis []gethabi.ABI, logs []*types.Log, strict bool) ([]*DecodedEvent, error) {
	var out []*DecodedEvent
	for _, log := range logs {
		if log == nil {
			continue
		}
		decoded, err := decodeAgainst(abis, *log)
		if err != nil {
			if errors.Is(err, ErrEventNotFound) && !strict {
				continue
			}
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, nil
}

// ParseReceiptLogs decodes a receipt's logs against every registered builtin
// ABI, skipping logs from unknown contracts.
func ParseReceiptLogs(logs []*types.Log) []*DecodedEvent {
	abis := make([]gethabi.ABI, 0)
	for _, b := range AllBuiltins() {
		abis = append(abis, b.ABI)
	}
	out, _ := ParseEventLogs(abis, logs, false)
	return out
}

func decodeAgainst(abis []gethabi.ABI, log types.Log) (*DecodedEvent, error) {
	var lastErr error
	for _, a := range abis {
		decoded, err := DecodeEventLog(a, log)
		if err == nil {
			return decoded, nil
		}
		lastErr = err
		if !errors.Is(err, ErrEventNotFound) {
			return nil, err
		}
	}
	if lastErr == nil {
		lastErr = ErrEventNotFound
	}
	return nil, lastErr
}
