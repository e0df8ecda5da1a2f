package analytics

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"marketScope/internal/amount"
	"marketScope/internal/cache"
	"marketScope/internal/events"
	"marketScope/internal/metrics"
	"marketScope/internal/model"
)

// DefaultCacheTTL is how long an aggregated payload is served from cache.
const DefaultCacheTTL = 5 * time.Minute

// DecimalsReader reports the betting token's decimals.
type DecimalsReader interface {
	TokenDecimals(ctx context.Context) (uint8, error)
}

// Service serves cached market analytics.
type Service struct {
	source   events.Source
	decimals DecimalsReader
	cache    *cache.Typed[model.MarketAnalytics]
	logger   *zap.Logger
	now      func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand replaces the generator used for synthetic series.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// NewService builds a Service. decimals may be nil, in which case 18 is assumed.
func NewService(source events.Source, decimals DecimalsReader, backend cache.Cache, ttl time.Duration, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	s := &Service{
		source:   source,
		decimals: decimals,
		cache:    cache.NewTyped[model.MarketAnalytics](backend, "analytics", ttl),
		logger:   logger,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cacheKey(marketID uint64, timeRange string) string {
	return fmt.Sprintf("%s%s", marketPrefix(marketID), timeRange)
}

func marketPrefix(marketID uint64) string {
	return fmt.Sprintf("analytics:%d:", marketID)
}

// Get returns the analytics of one market over timeRange.
// Upstream failures degrade to a synthetic series that is not cached.
func (s *Service) Get(ctx context.Context, marketID uint64, timeRange string) (model.MarketAnalytics, error) {
	if timeRange == "" {
		timeRange = DefaultTimeRange
	}
	window, err := ParseTimeRange(timeRange)
	if err != nil {
		return model.MarketAnalytics{}, err
	}

	key := cacheKey(marketID, timeRange)
	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("analytics cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return cached, nil
	}

	now := s.now()
	trades, err := s.source.Trades(ctx, marketID)
	if err != nil {
		s.logger.Warn("load trades failed, serving fallback", zap.Uint64("market_id", marketID), zap.Error(err))
		metrics.FallbacksTotal.WithLabelValues("analytics").Inc()
		return s.fallback(marketID, timeRange, now), nil
	}

	decimals := s.tokenDecimals(ctx)
	samples := FilterSince(SamplesFromTrades(trades, decimals), now, window)

	var result model.MarketAnalytics
	if len(samples) == 0 {
		s.logger.Debug("no trades in range, serving fallback", zap.Uint64("market_id", marketID), zap.String("time_range", timeRange))
		result = s.fallback(marketID, timeRange, now)
	} else {
		result = Aggregate(marketID, timeRange, samples, now)
	}

	if err := s.cache.Set(ctx, key, result); err != nil {
		s.logger.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

// InvalidateMarket clears every cached range of one market.
func (s *Service) InvalidateMarket(ctx context.Context, marketID uint64) (int, error) {
	cleared, err := s.cache.InvalidatePrefix(ctx, marketPrefix(marketID))
	if err != nil {
		return 0, fmt.Errorf("invalidate market %d: %w", marketID, err)
	}
	return cleared, nil
}

func (s *Service) fallback(marketID uint64, timeRange string, now time.Time) model.MarketAnalytics {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return Fallback(marketID, timeRange, now, s.rng)
}

func (s *Service) tokenDecimals(ctx context.Context) uint8 {
	if s.decimals == nil {
		return amount.DefaultDecimals
	}
	decimals, err := s.decimals.TokenDecimals(ctx)
	if err != nil {
		s.logger.Warn("token decimals unavailable, assuming default", zap.Error(err))
		return amount.DefaultDecimals
	}
	return decimals
}
