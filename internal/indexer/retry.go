package indexer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"marketScope/internal/contract"
	"marketScope/internal/mapping"
	"marketScope/internal/metrics"
)

const (
	defaultRetryDelay = 100 * time.Millisecond
	maxRetryDelay     = 30 * time.Second
)

// retryPolicy configures withRetry for one upstream operation.
type retryPolicy struct {
	Op         string
	MaxRetries int
	BaseDelay  time.Duration
	Logger     *zap.Logger
}

// permanent reports errors that a retry cannot fix: logs that do not match the
// pinned ABI, contract returns that fail to decode, and caller cancellation.
func permanent(err error) bool {
	var decodeErr *contract.DecodeError
	switch {
	case errors.Is(err, mapping.ErrSchemaMismatch),
		errors.Is(err, mapping.ErrUnknownEvent),
		errors.As(err, &decodeErr),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}

// withRetry runs fn until it succeeds, returns a permanent error, or exhausts
// MaxRetries. The delay doubles after each failure, capped at maxRetryDelay.
func withRetry(ctx context.Context, policy retryPolicy, fn func(context.Context) error) error {
	maxRetries := policy.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	delay := policy.BaseDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	logger := policy.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				metrics.IndexerRetriesTotal.WithLabelValues(policy.Op, "recovered").Inc()
			}
			return nil
		}
		if permanent(err) {
			metrics.IndexerRetriesTotal.WithLabelValues(policy.Op, "permanent").Inc()
			return err
		}
		if attempt >= maxRetries {
			metrics.IndexerRetriesTotal.WithLabelValues(policy.Op, "exhausted").Inc()
			return err
		}

		logger.Debug("retrying",
			zap.String("op", policy.Op),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		metrics.IndexerRetriesTotal.WithLabelValues(policy.Op, "retry").Inc()

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}
