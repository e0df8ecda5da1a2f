package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Storage backends accepted by the index command.
const (
	StoreJSONL    = "jsonl"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// IndexConfig holds configuration for the index command.
type IndexConfig struct {
	Chain
	FromBlock         uint64
	ToBlock           uint64
	Events            []string
	BatchSize         uint64
	Store             string
	Out               string
	SQLitePath        string
	PGDSN             string
	Checkpoint        string
	CheckpointEnabled bool
	StateName         string
	MaxRetries        int
	RetryBackoff      time.Duration
	LogLevel          string
}

// LoadIndex merges config file, environment variables, and flags into IndexConfig.
func LoadIndex(cfgFile string, flags *pflag.FlagSet) (IndexConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"batch-size":         uint64(2000),
		"store":              StoreJSONL,
		"out":                "./data/events.jsonl",
		"sqlite-path":        "./data/events.db",
		"checkpoint":         "./data/checkpoint.json",
		"checkpoint-enabled": true,
		"state-name":         "market-events",
		"max-retries":        5,
		"retry-backoff":      500 * time.Millisecond,
	})
	if err != nil {
		return IndexConfig{}, err
	}

	cfg := IndexConfig{
		Chain:             chainFrom(v),
		FromBlock:         v.GetUint64("from"),
		ToBlock:           v.GetUint64("to"),
		Events:            getStringSlice(v, "events"),
		BatchSize:         v.GetUint64("batch-size"),
		Store:             v.GetString("store"),
		Out:               v.GetString("out"),
		SQLitePath:        v.GetString("sqlite-path"),
		PGDSN:             v.GetString("pg-dsn"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		StateName:         v.GetString("state-name"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}

// Validate checks required values and option combinations.
func (c IndexConfig) Validate() error {
	if err := c.Chain.validate(); err != nil {
		return err
	}
	if c.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	switch c.Store {
	case StoreJSONL:
		if c.Out == "" {
			return fmt.Errorf("out path is required for jsonl store")
		}
	case StorePostgres:
		if c.PGDSN == "" {
			return fmt.Errorf("pg dsn is required for postgres store")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	return nil
}
