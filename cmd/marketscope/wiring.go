package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"marketScope/internal/cache"
	"marketScope/internal/chain"
	"marketScope/internal/config"
	"marketScope/internal/contract"
	"marketScope/internal/events"
	"marketScope/internal/indexer"
	"marketScope/internal/mapping"
	"marketScope/internal/storage/postgres"
	"marketScope/internal/storage/sqlite"
)

// backend bundles the upstream clients shared by the API commands.
type backend struct {
	chain    *chain.Client
	reader   *contract.Reader
	source   events.Source
	contract common.Address
	closers  []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openChain(ctx context.Context, cfg config.Chain) (*chain.Client, common.Address, error) {
	address, err := indexer.ParseAddress(cfg.Contract)
	if err != nil {
		return nil, common.Address{}, err
	}
	client, err := chain.NewClient(ctx, cfg.RPCURL, chain.Options{
		RatePerSecond: cfg.RPCRate,
		Burst:         cfg.RPCBurst,
	})
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("connect rpc: %w", err)
	}
	return client, address, nil
}

func openBackend(ctx context.Context, cfg config.ServeConfig, logger *zap.Logger) (*backend, error) {
	client, address, err := openChain(ctx, cfg.Chain)
	if err != nil {
		return nil, err
	}
	b := &backend{chain: client, contract: address}
	b.closers = append(b.closers, client.Close)

	b.reader, err = contract.NewReader(client, address)
	if err != nil {
		b.Close()
		return nil, err
	}

	switch cfg.EventSource {
	case config.SourcePostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, store.Close)
		b.source = events.NewStoreSource(store)
	case config.SourceSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { store.Close() })
		b.source = events.NewStoreSource(store)
	default:
		mapper, err := mapping.NewMapper()
		if err != nil {
			b.Close()
			return nil, err
		}
		b.source = events.NewChainSource(client, mapper, address, cfg.StartBlock, cfg.LogChunk)
	}

	logger.Info("backend ready",
		zap.String("contract", address.Hex()),
		zap.String("event_source", cfg.EventSource),
		zap.Float64("rpc_rate", cfg.RPCRate),
	)
	return b, nil
}

func openCache(ctx context.Context, cfg config.ServeConfig) (cache.Cache, func(), error) {
	if cfg.Cache != config.CacheRedis {
		return cache.NewMemory(), func() {}, nil
	}
	rc, err := cache.NewRedis(ctx, cache.RedisConfig{
		URL:       cfg.RedisURL,
		Password:  cfg.RedisPassword,
		Namespace: cfg.RedisNamespace,
	})
	if err != nil {
		return nil, nil, err
	}
	return rc, func() { rc.Close() }, nil
}
