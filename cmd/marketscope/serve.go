package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"marketScope/internal/analytics"
	"marketScope/internal/api"
	"marketScope/internal/config"
	"marketScope/internal/distribution"
	"marketScope/internal/pricing"
	"marketScope/internal/withdrawals"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the market HTTP API",
		RunE:  runServe,
	}

	addChainFlags(cmd)
	addSourceFlags(cmd)
	cmd.Flags().String("listen", ":8080", "HTTP listen address")
	cmd.Flags().String("cache", config.CacheMemory, "cache backend (memory, redis)")
	cmd.Flags().String("redis-url", "", "Redis URL for the redis cache")
	cmd.Flags().String("redis-password", "", "Redis password override")
	cmd.Flags().String("redis-namespace", "marketscope:", "Redis key prefix")
	cmd.Flags().Duration("analytics-ttl", 5*time.Minute, "analytics cache TTL")
	cmd.Flags().Duration("price-ttl", 30*time.Second, "current price cache TTL")
	cmd.Flags().Duration("request-timeout", 60*time.Second, "per-request deadline, 0 disables")
	cmd.Flags().Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")

	return cmd
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("event-source", config.SourceChain, "where trade and claim events are read from (chain, postgres, sqlite)")
	cmd.Flags().Uint64("start-block", 0, "contract deployment block for chain event scans")
	cmd.Flags().Uint64("log-chunk", 0, "blocks per eth_getLogs request for chain scans, 0 means one request")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().String("sqlite-path", "./data/events.db", "SQLite database path")
	cmd.Flags().Int("scan-batch-size", 10, "markets inspected concurrently by the withdrawal scanner")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	store, closeCache, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	server := api.NewServer(api.Deps{
		Scanner:   withdrawals.NewScanner(b.reader, cfg.ScanBatchSize, logger.Named("withdrawals")),
		Analytics: analytics.NewService(b.source, b.reader, store, cfg.AnalyticsTTL, logger.Named("analytics")),
		Prices:    pricing.NewService(b.reader, b.source, store, cfg.PriceTTL, logger.Named("pricing")),
		Previewer: distribution.NewPreviewer(b.reader, b.source, logger.Named("distribution")),
		Decimals:  b.reader,
	}, logger.Named("api"), cfg.RequestTimeout)

	logger.Info("serve start",
		zap.String("listen", cfg.Listen),
		zap.String("cache", cfg.Cache),
		zap.Duration("analytics_ttl", cfg.AnalyticsTTL),
		zap.Duration("price_ttl", cfg.PriceTTL),
	)
	return server.Run(ctx, cfg.Listen, cfg.ShutdownTimeout)
}
