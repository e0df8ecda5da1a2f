package mapping

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"marketScope/internal/contract"
	"marketScope/internal/model"
)

var (
	// ErrSchemaMismatch means a log does not carry the parameters its event declares.
	ErrSchemaMismatch = errors.New("event schema mismatch")
	// ErrUnknownEvent means topic0 does not belong to the market contract.
	ErrUnknownEvent = errors.New("unknown event")
)

// Mapper turns market contract logs into event rows.
type Mapper struct {
	events map[common.Hash]abi.Event
	byName map[string]common.Hash
}

// NewMapper builds a Mapper over every event of the market ABI.
func NewMapper() (*Mapper, error) {
	parsed, err := contract.MarketABI()
	if err != nil {
		return nil, fmt.Errorf("parse market abi: %w", err)
	}

	m := &Mapper{
		events: make(map[common.Hash]abi.Event, len(parsed.Events)),
		byName: make(map[string]common.Hash, len(parsed.Events)),
	}
	for name, event := range parsed.Events {
		m.events[event.ID] = event
		m.byName[name] = event.ID
	}
	return m, nil
}

// Topics returns the topic0 of every mapped event, sorted for stable filters.
func (m *Mapper) Topics() []common.Hash {
	out := make([]common.Hash, 0, len(m.events))
	for id := range m.events {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Big().Cmp(out[j].Big()) < 0
	})
	return out
}

// Topic returns the topic0 of the named event.
func (m *Mapper) Topic(name string) (common.Hash, bool) {
	id, ok := m.byName[name]
	return id, ok
}

// CanMap reports whether the log's topic0 is a known market event.
func (m *Mapper) CanMap(log types.Log) bool {
	if len(log.Topics) == 0 {
		return false
	}
	_, ok := m.events[log.Topics[0]]
	return ok
}

// Map builds the row for one log. It is a pure function of its inputs.
func (m *Mapper) Map(log types.Log, blockTimestamp uint64) (model.EventRecord, error) {
	if len(log.Topics) == 0 {
		return model.EventRecord{}, fmt.Errorf("%w: missing topic0", ErrSchemaMismatch)
	}
	event, ok := m.events[log.Topics[0]]
	if !ok {
		return model.EventRecord{}, fmt.Errorf("%w: %s", ErrUnknownEvent, log.Topics[0].Hex())
	}

	raw, err := unpackEvent(event, log)
	if err != nil {
		return model.EventRecord{}, err
	}

	params := make(map[string]interface{}, len(event.Inputs))
	for _, arg := range event.Inputs {
		value, ok := raw[arg.Name]
		if !ok {
			return model.EventRecord{}, fmt.Errorf("%w: %s missing %s", ErrSchemaMismatch, event.Name, arg.Name)
		}
		normalized, err := normalizeValue(value)
		if err != nil {
			return model.EventRecord{}, fmt.Errorf("%w: %s.%s: %v", ErrSchemaMismatch, event.Name, arg.Name, err)
		}
		params[arg.Name] = normalized
	}

	record := model.EventRecord{
		ID:              RecordID(log.TxHash, log.Index),
		EventType:       event.Name,
		Contract:        log.Address.Hex(),
		Params:          params,
		BlockNumber:     log.BlockNumber,
		BlockHash:       log.BlockHash.Hex(),
		BlockTimestamp:  blockTimestamp,
		TransactionHash: log.TxHash.Hex(),
		LogIndex:        uint64(log.Index),
	}

	if id, ok := raw["marketId"].(*big.Int); ok {
		if !id.IsUint64() {
			return model.EventRecord{}, fmt.Errorf("%w: %s.marketId overflows uint64", ErrSchemaMismatch, event.Name)
		}
		marketID := id.Uint64()
		record.MarketID = &marketID
	}

	return record, nil
}

// RecordID is the transaction hash with the 4-byte big-endian log index appended.
func RecordID(txHash common.Hash, logIndex uint) string {
	buf := make([]byte, common.HashLength+4)
	copy(buf, txHash.Bytes())
	binary.BigEndian.PutUint32(buf[common.HashLength:], uint32(logIndex))
	return hexutil.Encode(buf)
}

func unpackEvent(event abi.Event, log types.Log) (map[string]interface{}, error) {
	indexed := indexedArguments(event.Inputs)
	if len(log.Topics) != len(indexed)+1 {
		return nil, fmt.Errorf("%w: %s expected %d topics, got %d", ErrSchemaMismatch, event.Name, len(indexed)+1, len(log.Topics))
	}

	out := make(map[string]interface{}, len(event.Inputs))
	if err := abi.ParseTopicsIntoMap(out, indexed, log.Topics[1:]); err != nil {
		return nil, fmt.Errorf("%w: %s topics: %v", ErrSchemaMismatch, event.Name, err)
	}

	nonIndexed := event.Inputs.NonIndexed()
	if len(nonIndexed) > 0 {
		if err := nonIndexed.UnpackIntoMap(out, log.Data); err != nil {
			return nil, fmt.Errorf("%w: %s data: %v", ErrSchemaMismatch, event.Name, err)
		}
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
