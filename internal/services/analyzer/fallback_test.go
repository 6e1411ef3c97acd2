package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smartninja/priceagent/internal/models"
)

func TestFallbackSummarizeBasics(t *testing.T) {
	f := NewFallback()
	now := time.Now()

	offers := []models.Offer{
		{Model: "Pixel 9", Price: 650, Store: "BestBuy", Region: "north-america", Timestamp: now.Add(-2 * time.Hour)},
		{Model: "Pixel 9", Price: 700, Store: "Amazon", Region: "north-america", Timestamp: now.Add(-time.Hour)},
		{Model: "Pixel 9", Price: 600, Store: "Walmart", Region: "europe", Timestamp: now},
	}

	result := f.Summarize(offers)

	assert.Contains(t, result, "[FALLBACK ANALYSIS]")
	assert.Contains(t, result, "$650.00")
	assert.Contains(t, result, "ranging from $600.00 to $700.00")
	assert.Contains(t, result, "3 different retailers")
	assert.Contains(t, result, "2 different regions")
}

func TestFallbackSummarizeEmpty(t *testing.T) {
	f := NewFallback()
	assert.Contains(t, f.Summarize(nil), "No price data available")
}

func TestFallbackSkipsUnusablePrices(t *testing.T) {
	f := NewFallback()
	offers := []models.Offer{
		{Model: "Pixel 9", Price: 0, Store: "Amazon"},
		{Model: "Pixel 9", Price: -5, Store: "BestBuy"},
	}
	assert.Contains(t, f.Summarize(offers), "Insufficient data")
}

func TestFallbackTrendDeadband(t *testing.T) {
	f := NewFallback()

	tests := []struct {
		name   string
		prices []float64
		want   string
	}{
		{"clear drop", []float64{1000, 950, 900}, models.TrendDecreasing},
		{"clear rise", []float64{900, 950, 1000}, models.TrendIncreasing},
		{"within deadband", []float64{1000, 1005, 1010}, models.TrendStable},
		{"at lower edge", []float64{1000, 981}, models.TrendStable},
		{"just past lower edge", []float64{1000, 979}, models.TrendDecreasing},
		{"single price", []float64{500}, models.TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.trend(tt.prices))
		})
	}
}

func TestFallbackJustificationBuyOnDecrease(t *testing.T) {
	f := NewFallback()
	now := time.Now()
	offers := []models.Offer{
		{Model: "Galaxy S24", Price: 900, Store: "Amazon", Timestamp: now.Add(-48 * time.Hour)},
		{Model: "Galaxy S24", Price: 850, Store: "BestBuy", Timestamp: now.Add(-24 * time.Hour)},
		{Model: "Galaxy S24", Price: 800, Store: "Walmart", Timestamp: now},
	}

	result := f.SummarizeWithJustification(offers)

	assert.Contains(t, result, "Galaxy S24")
	assert.Contains(t, result, "DECISION: BUY")
	assert.Contains(t, result, "Current price: $800.00")
}

func TestFallbackJustificationWaitOnIncrease(t *testing.T) {
	f := NewFallback()
	now := time.Now()
	offers := []models.Offer{
		{Model: "Galaxy S24", Price: 800, Store: "Amazon", Timestamp: now.Add(-48 * time.Hour)},
		{Model: "Galaxy S24", Price: 850, Store: "BestBuy", Timestamp: now.Add(-24 * time.Hour)},
		{Model: "Galaxy S24", Price: 900, Store: "Walmart", Timestamp: now},
	}

	result := f.SummarizeWithJustification(offers)

	assert.Contains(t, result, "DECISION: WAIT")
	assert.Contains(t, result, "Price trend: Increasing")
}

func TestFallbackOrdersByTimestamp(t *testing.T) {
	f := NewFallback()
	now := time.Now()
	// Newest price is lowest even though it appears first in the slice.
	offers := []models.Offer{
		{Model: "Galaxy S24", Price: 700, Store: "Walmart", Timestamp: now},
		{Model: "Galaxy S24", Price: 900, Store: "Amazon", Timestamp: now.Add(-48 * time.Hour)},
		{Model: "Galaxy S24", Price: 800, Store: "BestBuy", Timestamp: now.Add(-24 * time.Hour)},
	}

	result := f.SummarizeWithJustification(offers)

	assert.Contains(t, result, "DECISION: BUY")
	assert.Contains(t, result, "Current price: $700.00")
}
