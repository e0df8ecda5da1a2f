package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"marketScope/internal/config"
	"marketScope/internal/indexer"
	"marketScope/internal/mapping"
	"marketScope/internal/storage"
	"marketScope/internal/storage/postgres"
	"marketScope/internal/storage/sqlite"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index market contract events",
		RunE:  runIndex,
	}

	addChainFlags(cmd)
	cmd.Flags().Uint64("from", 0, "start block (inclusive)")
	cmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	cmd.Flags().StringSlice("events", nil, "event names to index (comma-separated), empty means all")
	cmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	cmd.Flags().String("store", config.StoreJSONL, "storage backend (jsonl, postgres, sqlite)")
	cmd.Flags().String("out", "./data/events.jsonl", "output JSONL path")
	cmd.Flags().String("sqlite-path", "./data/events.db", "SQLite database path")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path (jsonl store)")
	cmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	cmd.Flags().String("state-name", "market-events", "indexer_state row name (SQL stores)")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")

	return cmd
}

func runIndex(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadIndex(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	mapper, err := mapping.NewMapper()
	if err != nil {
		return err
	}
	topics, err := indexer.ResolveTopics(mapper, cfg.Events)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, address, err := openChain(ctx, cfg.Chain)
	if err != nil {
		return err
	}
	defer chainClient.Close()

	sink, checkpoint, closeStore, err := openSink(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		Contract:     address,
		Topics:       topics,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, chainClient, sink, mapper, checkpoint, logger)

	logger.Info("indexer start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("contract", address.Hex()),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Int("topics", len(topics)),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("store", cfg.Store),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
	)

	stats, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("indexer done",
		zap.Int("batches", stats.Batches),
		zap.Int("stored", stats.Stored),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("unknown", stats.Unknown),
		zap.Uint64("last_block", stats.LastBlock),
	)
	return nil
}

func openSink(ctx context.Context, cfg config.IndexConfig) (storage.Storage, indexer.CheckpointStore, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		var checkpoint indexer.CheckpointStore
		if cfg.CheckpointEnabled {
			checkpoint = &indexer.DBCheckpointStore{Store: store, Name: cfg.StateName}
		}
		return store, checkpoint, store.Close, nil
	case config.StoreSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		var checkpoint indexer.CheckpointStore
		if cfg.CheckpointEnabled {
			checkpoint = &indexer.DBCheckpointStore{Store: store, Name: cfg.StateName}
		}
		return store, checkpoint, func() { store.Close() }, nil
	default:
		var checkpoint indexer.CheckpointStore
		if cfg.CheckpointEnabled {
			checkpoint = indexer.NewFileCheckpointStore(cfg.Checkpoint)
		}
		return storage.NewJsonlStorage(cfg.Out), checkpoint, func() {}, nil
	}
}
