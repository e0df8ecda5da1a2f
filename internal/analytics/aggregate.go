package analytics

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"marketScope/internal/amount"
	"marketScope/internal/model"
)

const dayLayout = "2006-01-02"

// ErrInvalidTimeRange is returned for a time range outside 24h, 7d, 30d and all.
var ErrInvalidTimeRange = errors.New("invalid time range")

// DefaultTimeRange is used when the caller does not pick one.
const DefaultTimeRange = "7d"

var timeRanges = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"all": 0,
}

// ParseTimeRange returns the lookback window of a range name. "all" has no window.
func ParseTimeRange(name string) (time.Duration, error) {
	if name == "" {
		name = DefaultTimeRange
	}
	window, ok := timeRanges[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeRange, name)
	}
	return window, nil
}

// Sample is one trade reduced to what the aggregation needs.
type Sample struct {
	Timestamp uint64
	IsOptionA bool
	Amount    float64
}

// SamplesFromTrades scales trade quantities into token units.
func SamplesFromTrades(trades []model.Trade, decimals uint8) []Sample {
	samples := make([]Sample, 0, len(trades))
	for _, trade := range trades {
		samples = append(samples, Sample{
			Timestamp: trade.Timestamp,
			IsOptionA: trade.IsOptionA(),
			Amount:    amount.ToFloat(trade.Quantity, decimals),
		})
	}
	return samples
}

// FilterSince keeps samples at or after since. A zero window keeps everything.
func FilterSince(samples []Sample, now time.Time, window time.Duration) []Sample {
	if window <= 0 {
		return samples
	}
	since := now.Add(-window).Unix()
	out := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if int64(s.Timestamp) >= since {
			out = append(out, s)
		}
	}
	return out
}

type dayBucket struct {
	date    string
	start   time.Time
	volumeA float64
	volumeB float64
	trades  int
}

// Aggregate builds daily price and volume history from samples.
// Each day's price is the running share of option A volume up to and including that day.
func Aggregate(marketID uint64, timeRange string, samples []Sample, now time.Time) model.MarketAnalytics {
	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	var buckets []*dayBucket
	index := make(map[string]*dayBucket)
	for _, s := range sorted {
		ts := time.Unix(int64(s.Timestamp), 0).UTC()
		date := ts.Format(dayLayout)
		b, ok := index[date]
		if !ok {
			b = &dayBucket{date: date, start: time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)}
			index[date] = b
			buckets = append(buckets, b)
		}
		if s.IsOptionA {
			b.volumeA += s.Amount
		} else {
			b.volumeB += s.Amount
		}
		b.trades++
	}

	out := model.MarketAnalytics{
		MarketID:      marketID,
		TimeRange:     timeRange,
		PriceHistory:  make([]model.PricePoint, 0, len(buckets)),
		VolumeHistory: make([]model.VolumePoint, 0, len(buckets)),
		LastUpdated:   now.UnixMilli(),
	}

	var runningA, runningTotal float64
	for _, b := range buckets {
		dayVolume := b.volumeA + b.volumeB
		runningA += b.volumeA
		runningTotal += dayVolume

		priceA := 0.5
		if runningTotal > 0 {
			priceA = runningA / runningTotal
		}
		priceA = amount.Round(priceA, 3)

		out.PriceHistory = append(out.PriceHistory, model.PricePoint{
			Date:      b.date,
			Timestamp: b.start.UnixMilli(),
			OptionA:   priceA,
			OptionB:   amount.Round(1-priceA, 3),
			Volume:    amount.Round(dayVolume, 6),
			Trades:    b.trades,
		})
		out.VolumeHistory = append(out.VolumeHistory, model.VolumePoint{
			Date:    b.date,
			Volume:  amount.Round(dayVolume, 6),
			VolumeA: amount.Round(b.volumeA, 6),
			VolumeB: amount.Round(b.volumeB, 6),
			Trades:  b.trades,
		})
		out.TotalTrades += b.trades
	}
	out.TotalVolume = amount.Round(runningTotal, 6)
	applyChanges(&out)
	return out
}

// Fallback returns a synthetic seven day series with the same shape as real output.
func Fallback(marketID uint64, timeRange string, now time.Time, rng *rand.Rand) model.MarketAnalytics {
	out := model.MarketAnalytics{
		MarketID:      marketID,
		TimeRange:     timeRange,
		PriceHistory:  make([]model.PricePoint, 0, 7),
		VolumeHistory: make([]model.VolumePoint, 0, 7),
		LastUpdated:   now.UnixMilli(),
	}

	today := now.UTC()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	price := 0.5
	var total float64
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		price += (rng.Float64() - 0.5) * 0.1
		if price < 0.05 {
			price = 0.05
		}
		if price > 0.95 {
			price = 0.95
		}
		priceA := amount.Round(price, 3)
		volume := amount.Round(100+rng.Float64()*1000, 6)
		volumeA := amount.Round(volume*priceA, 6)
		trades := 1 + rng.Intn(20)

		out.PriceHistory = append(out.PriceHistory, model.PricePoint{
			Date:      day.Format(dayLayout),
			Timestamp: day.UnixMilli(),
			OptionA:   priceA,
			OptionB:   amount.Round(1-priceA, 3),
			Volume:    volume,
			Trades:    trades,
		})
		out.VolumeHistory = append(out.VolumeHistory, model.VolumePoint{
			Date:    day.Format(dayLayout),
			Volume:  volume,
			VolumeA: volumeA,
			VolumeB: amount.Round(volume-volumeA, 6),
			Trades:  trades,
		})
		total += volume
		out.TotalTrades += trades
	}
	out.TotalVolume = amount.Round(total, 6)
	applyChanges(&out)
	return out
}

func applyChanges(out *model.MarketAnalytics) {
	n := len(out.PriceHistory)
	if n < 2 {
		return
	}
	last, prev := out.PriceHistory[n-1], out.PriceHistory[n-2]
	out.PriceChange24h = amount.Round(last.OptionA-prev.OptionA, 3)

	lastVol, prevVol := out.VolumeHistory[n-1].Volume, out.VolumeHistory[n-2].Volume
	switch {
	case prevVol > 0:
		out.VolumeChange24h = amount.Round((lastVol-prevVol)/prevVol, 4)
	case lastVol > 0:
		out.VolumeChange24h = 1
	default:
		out.VolumeChange24h = 0
	}
}
