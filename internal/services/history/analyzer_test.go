package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartninja/priceagent/internal/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func entry(price float64, ts time.Time) models.PriceEntry {
	return models.PriceEntry{Model: "iPhone 15", Price: price, Currency: "USD", Country: "US", Timestamp: ts}
}

func TestMetricsEmptyHistory(t *testing.T) {
	a := NewAnalyzer()

	m := a.Metrics(nil)

	assert.Equal(t, 0, m.Count)
	assert.Nil(t, m.MinPrice)
	assert.Nil(t, m.AveragePrice)
	assert.Equal(t, models.TrendUnknown, m.Trend)
	assert.Empty(t, m.Err)
}

func TestMetricsAllMalformedIsError(t *testing.T) {
	a := NewAnalyzer()
	now := time.Now()

	m := a.Metrics([]models.PriceEntry{
		{Model: "iPhone 15", Price: 0, Timestamp: now},
		{Model: "iPhone 15", Price: -10, Timestamp: now},
	})

	assert.Equal(t, 2, m.Count)
	assert.NotEmpty(t, m.Err)
	assert.Equal(t, models.TrendUnknown, m.Trend)
	assert.Nil(t, m.AveragePrice)
}

func TestMetricsStatistics(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	a := NewAnalyzerAt(fixedClock(now))

	m := a.Metrics([]models.PriceEntry{
		entry(900, now.AddDate(0, 0, -3)),
		entry(1000, now.AddDate(0, 0, -2)),
		entry(1100, now.AddDate(0, 0, -1)),
	})

	require.NotNil(t, m.MinPrice)
	require.NotNil(t, m.MaxPrice)
	require.NotNil(t, m.AveragePrice)
	require.NotNil(t, m.PriceRange)
	assert.Equal(t, 3, m.Count)
	assert.Equal(t, 900.0, *m.MinPrice)
	assert.Equal(t, 1100.0, *m.MaxPrice)
	assert.Equal(t, 1000.0, *m.AveragePrice)
	assert.Equal(t, 200.0, *m.PriceRange)
}

func TestMetricsRollingWindows(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	a := NewAnalyzerAt(fixedClock(now))

	m := a.Metrics([]models.PriceEntry{
		entry(1200, now.AddDate(0, 0, -45)), // outside both windows
		entry(1000, now.AddDate(0, 0, -20)), // 30d only
		entry(800, now.AddDate(0, 0, -3)),   // both
		entry(700, now.AddDate(0, 0, -1)),   // both
	})

	require.NotNil(t, m.Rolling7dAverage)
	require.NotNil(t, m.Rolling30dAvg)
	assert.InDelta(t, 750.0, *m.Rolling7dAverage, 0.001)
	assert.InDelta(t, (1000.0+800+700)/3, *m.Rolling30dAvg, 0.001)
}

func TestMetricsTenDayDrop(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	a := NewAnalyzerAt(fixedClock(now))

	m := a.Metrics([]models.PriceEntry{
		entry(1000, now.AddDate(0, 0, -10)),
		entry(940, now),
	})

	assert.Equal(t, models.TrendDecreasing, m.Trend)
	require.NotNil(t, m.Rolling30dAvg)
	assert.InDelta(t, 970.0, *m.Rolling30dAvg, 0.001)
}

func TestMetricsRollingWindowEmpty(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	a := NewAnalyzerAt(fixedClock(now))

	m := a.Metrics([]models.PriceEntry{
		entry(1200, now.AddDate(0, 0, -60)),
		entry(1100, now.AddDate(0, 0, -50)),
	})

	assert.Nil(t, m.Rolling7dAverage)
	assert.Nil(t, m.Rolling30dAvg)
	require.NotNil(t, m.AveragePrice)
	assert.Equal(t, 1150.0, *m.AveragePrice)
}

func TestMetricsTrendDeadband(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	a := NewAnalyzerAt(fixedClock(now))

	tests := []struct {
		name   string
		oldest float64
		newest float64
		want   string
	}{
		{"clear decrease", 1000, 900, models.TrendDecreasing},
		{"clear increase", 1000, 1100, models.TrendIncreasing},
		{"inside deadband down", 1000, 960, models.TrendStable},
		{"inside deadband up", 1000, 1040, models.TrendStable},
		{"just past deadband", 1000, 949, models.TrendDecreasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := a.Metrics([]models.PriceEntry{
				entry(tt.oldest, now.AddDate(0, 0, -5)),
				entry(tt.newest, now.AddDate(0, 0, -1)),
			})
			assert.Equal(t, tt.want, m.Trend)
		})
	}
}

func TestMetricsSingleEntryStable(t *testing.T) {
	a := NewAnalyzer()

	m := a.Metrics([]models.PriceEntry{entry(999, time.Now())})

	assert.Equal(t, models.TrendStable, m.Trend)
}

func TestBaselineSelection(t *testing.T) {
	avg, low, high := 100.0, 80.0, 120.0
	m := models.HistoryMetrics{AveragePrice: &avg, MinPrice: &low, MaxPrice: &high}

	assert.Equal(t, 100.0, m.Baseline(models.CompareAverage))
	assert.Equal(t, 80.0, m.Baseline(models.CompareLowest))
	assert.Equal(t, 120.0, m.Baseline(models.CompareHighest))
	assert.Equal(t, 0.0, m.Baseline(models.CompareRolling7d))
	assert.Equal(t, 0.0, m.Baseline("bogus"))
}
