package analytics

import (
	"context"
	"errors"
	"math/big"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketScope/internal/cache"
	"marketScope/internal/model"
)

type fakeSource struct {
	trades []model.Trade
	err    error
	calls  int
}

func (f *fakeSource) Trades(context.Context, uint64) ([]model.Trade, error) {
	f.calls++
	return f.trades, f.err
}

func (f *fakeSource) FreeClaims(context.Context, uint64) ([]model.FreeClaim, error) {
	return nil, nil
}

type fixedDecimals uint8

func (d fixedDecimals) TokenDecimals(context.Context) (uint8, error) { return uint8(d), nil }

func newTestService(source *fakeSource, now time.Time) *Service {
	return NewService(source, fixedDecimals(6), cache.NewMemory(), time.Minute, nil,
		WithClock(func() time.Time { return now }),
		WithRand(rand.New(rand.NewSource(9))),
	)
}

func TestServiceCachesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{trades: []model.Trade{
		{OptionID: 0, Quantity: big.NewInt(3_000_000), Timestamp: uint64(now.Add(-time.Hour).Unix())},
		{OptionID: 1, Quantity: big.NewInt(1_000_000), Timestamp: uint64(now.Add(-time.Hour).Unix())},
	}}
	svc := newTestService(source, now)

	first, err := svc.Get(ctx, 4, "7d")
	require.NoError(t, err)
	require.Len(t, first.PriceHistory, 1)
	assert.Equal(t, 0.75, first.PriceHistory[0].OptionA)
	assert.Equal(t, 4.0, first.TotalVolume)

	_, err = svc.Get(ctx, 4, "7d")
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)

	_, err = svc.Get(ctx, 4, "all")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)

	cleared, err := svc.InvalidateMarket(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, cleared)

	_, err = svc.Get(ctx, 4, "7d")
	require.NoError(t, err)
	assert.Equal(t, 3, source.calls)
}

func TestServiceFallbackOnUpstreamError(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{err: errors.New("rpc down")}
	svc := newTestService(source, time.Now())

	out, err := svc.Get(ctx, 1, "30d")
	require.NoError(t, err)
	assert.Len(t, out.PriceHistory, 7)

	_, err = svc.Get(ctx, 1, "30d")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls, "fallback payloads are not cached")
}

func TestServiceEmptyMarketFallback(t *testing.T) {
	out, err := newTestService(&fakeSource{}, time.Now()).Get(context.Background(), 2, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeRange, out.TimeRange)
	assert.Len(t, out.VolumeHistory, 7)
}

func TestServiceRejectsUnknownRange(t *testing.T) {
	_, err := newTestService(&fakeSource{}, time.Now()).Get(context.Background(), 2, "90d")
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}
