package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// MigrateConfig holds configuration for the migrate command.
type MigrateConfig struct {
	PGDSN     string
	Direction string
	LogLevel  string
}

// LoadMigrate merges config file, environment variables, and flags into MigrateConfig.
func LoadMigrate(cfgFile string, flags *pflag.FlagSet) (MigrateConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"direction": "up",
	})
	if err != nil {
		return MigrateConfig{}, err
	}

	cfg := MigrateConfig{
		PGDSN:     v.GetString("pg-dsn"),
		Direction: v.GetString("direction"),
		LogLevel:  v.GetString("log-level"),
	}
	if cfg.PGDSN == "" {
		return MigrateConfig{}, fmt.Errorf("pg dsn is required")
	}
	return cfg, nil
}
