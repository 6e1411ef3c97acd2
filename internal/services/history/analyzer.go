package history

import (
	"sort"
	"time"

	"github.com/smartninja/priceagent/internal/models"
)

// historyTrendDeadband is the minimum oldest-to-newest change, as a
// fraction, before history metrics report a trend. Wider than the
// narrative analyzer's band so dashboards only surface sustained moves.
const historyTrendDeadband = 0.05

// Analyzer computes derived statistics over stored price history.
// The zero value is not usable; construct with NewAnalyzer.
type Analyzer struct {
	now func() time.Time
}

// NewAnalyzer creates an Analyzer using the wall clock for rolling
// windows.
func NewAnalyzer() *Analyzer {
	return &Analyzer{now: time.Now}
}

// NewAnalyzerAt creates an Analyzer with a fixed clock. Used by tests
// and by replays over historical data.
func NewAnalyzerAt(now func() time.Time) *Analyzer {
	return &Analyzer{now: now}
}

// Metrics computes statistics over the entries. An empty input yields
// Count 0 with nil statistics; input where every entry lacks a usable
// price yields a non-empty Err, since bad data is not the same as no
// data.
func (a *Analyzer) Metrics(entries []models.PriceEntry) models.HistoryMetrics {
	if len(entries) == 0 {
		return models.HistoryMetrics{Count: 0, Trend: models.TrendUnknown}
	}

	var prices []float64
	var timestamped []models.PriceEntry
	for _, e := range entries {
		if e.Price <= 0 {
			continue
		}
		prices = append(prices, e.Price)
		if !e.Timestamp.IsZero() {
			timestamped = append(timestamped, e)
		}
	}

	if len(prices) == 0 {
		return models.HistoryMetrics{
			Count: len(entries),
			Trend: models.TrendUnknown,
			Err:   "no usable prices in history entries",
		}
	}

	low, high := prices[0], prices[0]
	sum := 0.0
	for _, p := range prices {
		if p < low {
			low = p
		}
		if p > high {
			high = p
		}
		sum += p
	}
	avg := sum / float64(len(prices))
	spread := high - low

	metrics := models.HistoryMetrics{
		Count:        len(entries),
		MinPrice:     &low,
		MaxPrice:     &high,
		AveragePrice: &avg,
		PriceRange:   &spread,
		Trend:        a.trend(timestamped),
	}

	now := a.now()
	metrics.Rolling7dAverage = rollingAverage(timestamped, now.AddDate(0, 0, -7))
	metrics.Rolling30dAvg = rollingAverage(timestamped, now.AddDate(0, 0, -30))

	return metrics
}

// trend compares the newest and oldest timestamped prices with the
// ±5% dead-band. Fewer than two timestamped entries is stable.
func (a *Analyzer) trend(entries []models.PriceEntry) string {
	if len(entries) < 2 {
		return models.TrendStable
	}

	sorted := make([]models.PriceEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	newest := sorted[0].Price
	oldest := sorted[len(sorted)-1].Price
	change := (newest - oldest) / oldest

	switch {
	case change < -historyTrendDeadband:
		return models.TrendDecreasing
	case change > historyTrendDeadband:
		return models.TrendIncreasing
	default:
		return models.TrendStable
	}
}

// rollingAverage is the mean price of entries at or after cutoff, nil
// when the window is empty.
func rollingAverage(entries []models.PriceEntry, cutoff time.Time) *float64 {
	sum := 0.0
	count := 0
	for _, e := range entries {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		sum += e.Price
		count++
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}
