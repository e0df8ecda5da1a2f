package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketScope/internal/metrics"
)

// Cache stores opaque values with a per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// InvalidatePrefix removes every key starting with prefix and returns how many were removed.
	InvalidatePrefix(ctx context.Context, prefix string) (int, error)
}

// Typed stores JSON-encoded values of one type under a fixed TTL.
type Typed[T any] struct {
	backend Cache
	name    string
	ttl     time.Duration
}

// NewTyped wraps backend. name labels lookup metrics.
func NewTyped[T any](backend Cache, name string, ttl time.Duration) *Typed[T] {
	return &Typed[T]{backend: backend, name: name, ttl: ttl}
}

// TTL returns the entry lifetime.
func (t *Typed[T]) TTL() time.Duration {
	return t.ttl
}

func (t *Typed[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	raw, ok, err := t.backend.Get(ctx, key)
	if err != nil {
		metrics.CacheLookupsTotal.WithLabelValues(t.name, "error").Inc()
		return zero, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if !ok {
		metrics.CacheLookupsTotal.WithLabelValues(t.name, "miss").Inc()
		return zero, false, nil
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		metrics.CacheLookupsTotal.WithLabelValues(t.name, "error").Inc()
		return zero, false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	metrics.CacheLookupsTotal.WithLabelValues(t.name, "hit").Inc()
	return value, true, nil
}

func (t *Typed[T]) Set(ctx context.Context, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := t.backend.Set(ctx, key, raw, t.ttl); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (t *Typed[T]) InvalidatePrefix(ctx context.Context, prefix string) (int, error) {
	return t.backend.InvalidatePrefix(ctx, prefix)
}
