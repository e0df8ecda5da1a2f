package indexer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"marketScope/internal/mapping"
	"marketScope/internal/metrics"
	"marketScope/internal/model"
	"marketScope/internal/storage"
)

// ChainReader is the subset of the chain client the runner needs.
type ChainReader interface {
	GetChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topics [][]common.Hash) ([]types.Log, error)
}

// RunConfig holds runtime settings for the indexer.
type RunConfig struct {
	FromBlock    uint64
	ToBlock      uint64
	Contract     common.Address
	Topics       []common.Hash
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// Stats summarises one run.
type Stats struct {
	Batches    int
	Stored     int
	Duplicates int
	Unknown    int
	LastBlock  uint64
}

// Runner streams contract logs from the chain, maps them and writes the rows to storage.
type Runner struct {
	cfg        RunConfig
	chain      ChainReader
	storage    storage.Storage
	mapper     *mapping.Mapper
	checkpoint CheckpointStore
	logger     *zap.Logger
	seen       map[string]struct{}
}

// NewRunner builds a Runner with its dependencies. checkpoint may be nil.
func NewRunner(
	cfg RunConfig,
	chainClient ChainReader,
	storageSink storage.Storage,
	mapper *mapping.Mapper,
	checkpoint CheckpointStore,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		chain:      chainClient,
		storage:    storageSink,
		mapper:     mapper,
		checkpoint: checkpoint,
		logger:     logger,
		seen:       make(map[string]struct{}),
	}
}

// Run executes the indexing loop.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	if r.chain == nil {
		return stats, fmt.Errorf("chain client is nil")
	}
	if r.storage == nil {
		return stats, fmt.Errorf("storage is nil")
	}
	if r.mapper == nil {
		return stats, fmt.Errorf("mapper is nil")
	}
	if r.cfg.BatchSize == 0 {
		return stats, fmt.Errorf("batch size must be greater than zero")
	}
	if r.cfg.Contract == (common.Address{}) {
		return stats, fmt.Errorf("contract address is required")
	}

	chainID, err := r.chain.GetChainID(ctx)
	if err != nil {
		return stats, fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return stats, fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}
	chainIDValue := chainID.Uint64()

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.chain.LatestBlockNumber(ctx)
		if err != nil {
			return stats, fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if r.checkpoint != nil {
		last, ok, err := r.checkpoint.Load(ctx)
		if err != nil {
			return stats, err
		}
		if ok && last >= from {
			from = last + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", last), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return stats, nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return stats, err
	}

	topics := r.cfg.Topics
	if len(topics) == 0 {
		topics = r.mapper.Topics()
	}

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		r.logger.Debug("fetch logs", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))

		logs, err := r.filterLogsWithRetry(ctx, blockRange.From, blockRange.To, topics)
		if err != nil {
			return stats, fmt.Errorf("filter logs: %w", err)
		}

		records := make([]model.EventRecord, 0, len(logs))
		for _, log := range logs {
			if log.Removed {
				continue
			}
			if !r.mapper.CanMap(log) {
				stats.Unknown++
				continue
			}

			ts, err := r.blockTimestampWithRetry(ctx, log.BlockNumber)
			if err != nil {
				return stats, fmt.Errorf("block timestamp %d: %w", log.BlockNumber, err)
			}

			record, err := r.mapper.Map(log, ts)
			if err != nil {
				if errors.Is(err, mapping.ErrUnknownEvent) {
					stats.Unknown++
					continue
				}
				return stats, fmt.Errorf("map log %s:%d: %w", log.TxHash.Hex(), log.Index, err)
			}
			if r.isDuplicate(record.ID) {
				stats.Duplicates++
				continue
			}
			record.ChainID = chainIDValue
			records = append(records, record)
		}

		if err := r.storage.PutEventBatch(ctx, records); err != nil {
			return stats, fmt.Errorf("store events: %w", err)
		}
		for _, record := range records {
			metrics.EventsIndexedTotal.WithLabelValues(record.EventType).Inc()
		}

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(ctx, blockRange.To); err != nil {
				return stats, err
			}
		}

		stats.Batches++
		stats.Stored += len(records)
		stats.LastBlock = blockRange.To
		metrics.IndexerLatestBlock.Set(float64(blockRange.To))

		r.logger.Info("batch complete", zap.Int("events", len(records)), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
	}

	return stats, nil
}

func (r *Runner) retryPolicy(op string) retryPolicy {
	return retryPolicy{
		Op:         op,
		MaxRetries: r.cfg.MaxRetries,
		BaseDelay:  r.cfg.RetryBackoff,
		Logger:     r.logger,
	}
}

func (r *Runner) filterLogsWithRetry(ctx context.Context, fromBlock, toBlock uint64, topics []common.Hash) ([]types.Log, error) {
	var logs []types.Log
	err := withRetry(ctx, r.retryPolicy("filter_logs"), func(ctx context.Context) error {
		var err error
		logs, err = r.chain.FilterLogs(ctx, fromBlock, toBlock, []common.Address{r.cfg.Contract}, [][]common.Hash{topics})
		if err != nil {
			r.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		}
		return err
	})
	return logs, err
}

func (r *Runner) blockTimestampWithRetry(ctx context.Context, blockNumber uint64) (uint64, error) {
	var ts uint64
	err := withRetry(ctx, r.retryPolicy("block_timestamp"), func(ctx context.Context) error {
		var err error
		ts, err = r.chain.BlockTimestamp(ctx, blockNumber)
		if err != nil {
			r.logger.Warn("block timestamp fetch failed", zap.Error(err), zap.Uint64("block_number", blockNumber))
		}
		return err
	})
	return ts, err
}

func (r *Runner) isDuplicate(id string) bool {
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}
