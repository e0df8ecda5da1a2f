package pricing

import (
	"context"
	"fmt"
	"math/big"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"marketScope/internal/amount"
	"marketScope/internal/cache"
	"marketScope/internal/contract"
	"marketScope/internal/events"
	"marketScope/internal/metrics"
	"marketScope/internal/model"
)

// DefaultCacheTTL is how long a quote is served from cache.
const DefaultCacheTTL = 30 * time.Second

// OptionReader reads option state from the market contract.
type OptionReader interface {
	MarketOption(ctx context.Context, marketID, optionID uint64) (contract.MarketOption, error)
	TokenDecimals(ctx context.Context) (uint8, error)
}

// Service quotes the current option prices of binary markets.
type Service struct {
	reader OptionReader
	source events.Source
	cache  *cache.Typed[model.CurrentPrice]
	logger *zap.Logger
	now    func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand replaces the generator used for mock quotes.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

func NewService(reader OptionReader, source events.Source, backend cache.Cache, ttl time.Duration, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	s := &Service{
		reader: reader,
		source: source,
		cache:  cache.NewTyped[model.CurrentPrice](backend, "price", ttl),
		logger: logger,
		now:    time.Now,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cacheKey(marketID uint64) string {
	return fmt.Sprintf("price:%d", marketID)
}

// Current returns the quote of one market. It never fails: upstream errors yield a mock quote.
func (s *Service) Current(ctx context.Context, marketID uint64) model.CurrentPrice {
	key := cacheKey(marketID)
	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("price cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return cached
	}

	quote, err := s.quote(ctx, marketID)
	if err != nil {
		s.logger.Warn("price quote failed, serving mock", zap.Uint64("market_id", marketID), zap.Error(err))
		metrics.FallbacksTotal.WithLabelValues("price").Inc()
		return s.mock()
	}

	if err := s.cache.Set(ctx, key, quote); err != nil {
		s.logger.Warn("price cache write failed", zap.String("key", key), zap.Error(err))
	}
	return quote
}

func (s *Service) quote(ctx context.Context, marketID uint64) (model.CurrentPrice, error) {
	optionA, err := s.reader.MarketOption(ctx, marketID, 0)
	if err != nil {
		return model.CurrentPrice{}, fmt.Errorf("option A: %w", err)
	}
	optionB, err := s.reader.MarketOption(ctx, marketID, 1)
	if err != nil {
		return model.CurrentPrice{}, fmt.Errorf("option B: %w", err)
	}

	decimals, err := s.reader.TokenDecimals(ctx)
	if err != nil {
		s.logger.Debug("token decimals unavailable, assuming default", zap.Error(err))
		decimals = amount.DefaultDecimals
	}

	shares := new(big.Int).Add(orZero(optionA.TotalShares), orZero(optionB.TotalShares))
	out := model.CurrentPrice{
		CurrentPriceA: amount.Probability(optionA.CurrentPrice),
		CurrentPriceB: amount.Probability(optionB.CurrentPrice),
		TotalShares:   amount.Format(shares, decimals),
		Timestamp:     s.now().UnixMilli(),
	}

	if s.source != nil {
		trades, err := s.source.Trades(ctx, marketID)
		if err != nil {
			return model.CurrentPrice{}, fmt.Errorf("last trade: %w", err)
		}
		if n := len(trades); n > 0 {
			last := trades[n-1]
			out.LastTrade = &model.LastTrade{
				OptionID:  last.OptionID,
				Buyer:     last.Buyer.Hex(),
				Seller:    last.Seller.Hex(),
				Price:     amount.Format(last.Price, amount.PriceScale),
				Quantity:  amount.Format(last.Quantity, decimals),
				Timestamp: last.Timestamp,
				TxHash:    last.TxHash,
			}
		}
	}
	return out, nil
}

func (s *Service) mock() model.CurrentPrice {
	s.rngMu.Lock()
	priceA := amount.Round(0.3+s.rng.Float64()*0.4, 3)
	shares := 1000 + s.rng.Intn(9000)
	s.rngMu.Unlock()

	return model.CurrentPrice{
		CurrentPriceA: priceA,
		CurrentPriceB: amount.Round(1-priceA, 3),
		TotalShares:   fmt.Sprintf("%d", shares),
		Timestamp:     s.now().UnixMilli(),
	}
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
