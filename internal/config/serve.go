package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Event sources accepted by the serve command.
const (
	SourceChain    = "chain"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

// Cache backends accepted by the serve command.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// ServeConfig holds configuration for the HTTP API and the one-shot query commands.
type ServeConfig struct {
	Chain
	Listen          string
	EventSource     string
	StartBlock      uint64
	LogChunk        uint64
	PGDSN           string
	SQLitePath      string
	Cache           string
	RedisURL        string
	RedisPassword   string
	RedisNamespace  string
	AnalyticsTTL    time.Duration
	PriceTTL        time.Duration
	ScanBatchSize   int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"listen":           ":8080",
		"event-source":     SourceChain,
		"log-chunk":        uint64(0),
		"sqlite-path":      "./data/events.db",
		"cache":            CacheMemory,
		"redis-namespace":  "marketscope:",
		"analytics-ttl":    5 * time.Minute,
		"price-ttl":        30 * time.Second,
		"scan-batch-size":  10,
		"request-timeout":  60 * time.Second,
		"shutdown-timeout": 10 * time.Second,
	})
	if err != nil {
		return ServeConfig{}, err
	}

	cfg := ServeConfig{
		Chain:           chainFrom(v),
		Listen:          v.GetString("listen"),
		EventSource:     v.GetString("event-source"),
		StartBlock:      v.GetUint64("start-block"),
		LogChunk:        v.GetUint64("log-chunk"),
		PGDSN:           v.GetString("pg-dsn"),
		SQLitePath:      v.GetString("sqlite-path"),
		Cache:           v.GetString("cache"),
		RedisURL:        v.GetString("redis-url"),
		RedisPassword:   v.GetString("redis-password"),
		RedisNamespace:  v.GetString("redis-namespace"),
		AnalyticsTTL:    v.GetDuration("analytics-ttl"),
		PriceTTL:        v.GetDuration("price-ttl"),
		ScanBatchSize:   v.GetInt("scan-batch-size"),
		RequestTimeout:  v.GetDuration("request-timeout"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
		LogLevel:        v.GetString("log-level"),
	}

	return cfg, nil
}

// Validate checks required values and option combinations.
func (c ServeConfig) Validate() error {
	if err := c.Chain.validate(); err != nil {
		return err
	}
	switch c.EventSource {
	case SourceChain:
	case SourcePostgres:
		if c.PGDSN == "" {
			return fmt.Errorf("pg dsn is required for postgres event source")
		}
	case SourceSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite event source")
		}
	default:
		return fmt.Errorf("unknown event source %q", c.EventSource)
	}
	switch c.Cache {
	case CacheMemory:
	case CacheRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("redis url is required for redis cache")
		}
	default:
		return fmt.Errorf("unknown cache %q", c.Cache)
	}
	return nil
}
