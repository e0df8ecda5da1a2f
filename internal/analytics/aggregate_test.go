package analytics

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int, hour int) uint64 {
	return uint64(time.Date(2024, 3, d, hour, 0, 0, 0, time.UTC).Unix())
}

func TestAggregateRunningPrice(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	samples := []Sample{
		{Timestamp: day(2, 9), IsOptionA: false, Amount: 10},
		{Timestamp: day(1, 10), IsOptionA: true, Amount: 30},
		{Timestamp: day(1, 11), IsOptionA: false, Amount: 10},
		{Timestamp: day(3, 8), IsOptionA: true, Amount: 0},
	}

	out := Aggregate(7, "all", samples, now)

	require.Len(t, out.PriceHistory, 3)
	assert.Equal(t, "2024-03-01", out.PriceHistory[0].Date)
	assert.Equal(t, 0.75, out.PriceHistory[0].OptionA)
	assert.Equal(t, 0.25, out.PriceHistory[0].OptionB)
	// Cumulative 30 of 50, not the day's 0 of 10.
	assert.Equal(t, 0.6, out.PriceHistory[1].OptionA)
	assert.Equal(t, 0.6, out.PriceHistory[2].OptionA)

	assert.Equal(t, 50.0, out.TotalVolume)
	assert.Equal(t, 4, out.TotalTrades)
	assert.Equal(t, 0.0, out.PriceChange24h)
	// 10 -> 0
	assert.Equal(t, -1.0, out.VolumeChange24h)
	assert.Equal(t, 40.0, out.VolumeHistory[0].Volume)
	assert.Equal(t, 30.0, out.VolumeHistory[0].VolumeA)
}

func TestAggregatePricesSumToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	var samples []Sample
	for i := 0; i < 200; i++ {
		samples = append(samples, Sample{
			Timestamp: day(1+rng.Intn(20), rng.Intn(24)),
			IsOptionA: rng.Intn(3) == 0,
			Amount:    rng.Float64() * 97,
		})
	}
	out := Aggregate(1, "all", samples, time.Now())
	for _, p := range out.PriceHistory {
		assert.GreaterOrEqual(t, p.OptionA, 0.0)
		assert.LessOrEqual(t, p.OptionA, 1.0)
		assert.LessOrEqual(t, math.Abs(p.OptionA+p.OptionB-1), 0.001, p.Date)
	}
}

func TestVolumeChangeConventions(t *testing.T) {
	now := time.Now()
	zeroToPositive := Aggregate(1, "all", []Sample{
		{Timestamp: day(1, 1), IsOptionA: true, Amount: 0},
		{Timestamp: day(2, 1), IsOptionA: true, Amount: 5},
	}, now)
	assert.Equal(t, 1.0, zeroToPositive.VolumeChange24h)

	zeroToZero := Aggregate(1, "all", []Sample{
		{Timestamp: day(1, 1), Amount: 0},
		{Timestamp: day(2, 1), Amount: 0},
	}, now)
	assert.Equal(t, 0.0, zeroToZero.VolumeChange24h)

	single := Aggregate(1, "all", []Sample{{Timestamp: day(1, 1), IsOptionA: true, Amount: 3}}, now)
	assert.Equal(t, 0.0, single.PriceChange24h)
	assert.Equal(t, 0.0, single.VolumeChange24h)
}

func TestFallbackShape(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	out := Fallback(3, "7d", now, rand.New(rand.NewSource(1)))

	require.Len(t, out.PriceHistory, 7)
	require.Len(t, out.VolumeHistory, 7)
	assert.Equal(t, "2024-03-04", out.PriceHistory[0].Date)
	assert.Equal(t, "2024-03-10", out.PriceHistory[6].Date)
	for _, p := range out.PriceHistory {
		assert.LessOrEqual(t, math.Abs(p.OptionA+p.OptionB-1), 0.001)
		assert.Greater(t, p.Volume, 0.0)
	}
	assert.Equal(t, uint64(3), out.MarketID)
}

func TestFilterSinceAndTimeRange(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	samples := []Sample{
		{Timestamp: uint64(now.Add(-2 * time.Hour).Unix())},
		{Timestamp: uint64(now.Add(-48 * time.Hour).Unix())},
	}

	window, err := ParseTimeRange("24h")
	require.NoError(t, err)
	assert.Len(t, FilterSince(samples, now, window), 1)

	window, err = ParseTimeRange("all")
	require.NoError(t, err)
	assert.Len(t, FilterSince(samples, now, window), 2)

	_, err = ParseTimeRange("1y")
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}
