package events

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"marketScope/internal/indexer"
	"marketScope/internal/mapping"
	"marketScope/internal/model"
)

// LogReader is the subset of the chain client used to scan logs directly.
type LogReader interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topics [][]common.Hash) ([]types.Log, error)
}

// ChainSource reads market history straight from contract logs.
type ChainSource struct {
	chain      LogReader
	mapper     *mapping.Mapper
	contract   common.Address
	startBlock uint64
	chunkSize  uint64
}

// NewChainSource scans from startBlock to the chain head in chunks of chunkSize blocks.
// A zero chunkSize scans the whole range in one request.
func NewChainSource(chain LogReader, mapper *mapping.Mapper, contract common.Address, startBlock, chunkSize uint64) *ChainSource {
	return &ChainSource{
		chain:      chain,
		mapper:     mapper,
		contract:   contract,
		startBlock: startBlock,
		chunkSize:  chunkSize,
	}
}

func (s *ChainSource) Trades(ctx context.Context, marketID uint64) ([]model.Trade, error) {
	records, err := s.records(ctx, model.EventTradeExecuted, marketID)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	return tradesFromRecords(records)
}

func (s *ChainSource) FreeClaims(ctx context.Context, marketID uint64) ([]model.FreeClaim, error) {
	records, err := s.records(ctx, model.EventFreeTokensClaimed, marketID)
	if err != nil {
		return nil, fmt.Errorf("load free claims: %w", err)
	}
	return claimsFromRecords(records)
}

func (s *ChainSource) records(ctx context.Context, eventName string, marketID uint64) ([]model.EventRecord, error) {
	topic, ok := s.mapper.Topic(eventName)
	if !ok {
		return nil, fmt.Errorf("unknown event: %s", eventName)
	}

	latest, err := s.chain.LatestBlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("get latest block: %w", err)
	}
	ranges, err := indexer.ScanRanges(s.startBlock, latest, s.chunkSize)
	if err != nil {
		return nil, err
	}
	if len(ranges) == 0 {
		return nil, nil
	}

	topics := [][]common.Hash{
		{topic},
		{common.BigToHash(new(big.Int).SetUint64(marketID))},
	}

	var out []model.EventRecord
	for _, blockRange := range ranges {
		logs, err := s.chain.FilterLogs(ctx, blockRange.From, blockRange.To, []common.Address{s.contract}, topics)
		if err != nil {
			return nil, fmt.Errorf("filter logs %d-%d: %w", blockRange.From, blockRange.To, err)
		}
		for _, log := range logs {
			if log.Removed {
				continue
			}
			ts, err := s.chain.BlockTimestamp(ctx, log.BlockNumber)
			if err != nil {
				return nil, fmt.Errorf("block timestamp %d: %w", log.BlockNumber, err)
			}
			record, err := s.mapper.Map(log, ts)
			if err != nil {
				return nil, err
			}
			out = append(out, record)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BlockNumber != out[j].BlockNumber {
			return out[i].BlockNumber < out[j].BlockNumber
		}
		return out[i].LogIndex < out[j].LogIndex
	})
	return out, nil
}
