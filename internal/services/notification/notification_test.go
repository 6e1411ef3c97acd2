package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/models"
)

func metricsWith(avg float64) *models.HistoryMetrics {
	return &models.HistoryMetrics{Count: 5, AveragePrice: &avg}
}

func TestEvaluateRulesThreshold(t *testing.T) {
	rules := []models.AlertRule{{
		Model:            "iPhone 15",
		Country:          "US",
		Enabled:          true,
		ThresholdPercent: 10,
		ComparedTo:       models.CompareAverage,
	}}

	tests := []struct {
		name      string
		price     float64
		triggered bool
	}{
		{"far below average", 850, true},  // 15% below 1000
		{"exactly at threshold", 900, true},
		{"inside threshold", 950, false}, // 5% below
		{"far above average", 1150, true},
		{"at average", 1000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := models.PriceEntry{Model: "iPhone 15", Price: tt.price, Country: "US"}
			alerts := EvaluateRules("iPhone 15", "US", entry, metricsWith(1000), rules)

			if tt.triggered {
				require.Len(t, alerts, 1)
				assert.Equal(t, 1000.0, alerts[0].ComparisonValue)
				assert.Equal(t, models.CompareAverage, alerts[0].ComparedTo)
			} else {
				assert.Empty(t, alerts)
			}
		})
	}
}

func TestEvaluateRulesPercentDiffSign(t *testing.T) {
	rules := []models.AlertRule{{Enabled: true, ThresholdPercent: 5, ComparedTo: models.CompareAverage}}

	below := EvaluateRules("iPhone 15", "US", models.PriceEntry{Price: 900}, metricsWith(1000), rules)
	require.Len(t, below, 1)
	assert.Greater(t, below[0].PercentDiff, 0.0, "price below baseline must have positive diff")

	above := EvaluateRules("iPhone 15", "US", models.PriceEntry{Price: 1100}, metricsWith(1000), rules)
	require.Len(t, above, 1)
	assert.Less(t, above[0].PercentDiff, 0.0, "price above baseline must have negative diff")
}

func TestEvaluateRulesSkipsDisabledAndMismatched(t *testing.T) {
	rules := []models.AlertRule{
		{Model: "iPhone 15", Enabled: false, ThresholdPercent: 5, ComparedTo: models.CompareAverage},
		{Model: "Pixel 9", Enabled: true, ThresholdPercent: 5, ComparedTo: models.CompareAverage},
		{Model: "iPhone 15", Country: "UK", Enabled: true, ThresholdPercent: 5, ComparedTo: models.CompareAverage},
	}

	entry := models.PriceEntry{Model: "iPhone 15", Price: 800, Country: "US"}
	alerts := EvaluateRules("iPhone 15", "US", entry, metricsWith(1000), rules)

	assert.Empty(t, alerts)
}

func TestEvaluateRulesGlobalCountry(t *testing.T) {
	rules := []models.AlertRule{{
		Model: "iPhone 15", Country: "global", Enabled: true,
		ThresholdPercent: 5, ComparedTo: models.CompareAverage,
	}}

	entry := models.PriceEntry{Model: "iPhone 15", Price: 800, Country: "US"}
	alerts := EvaluateRules("iPhone 15", "US", entry, metricsWith(1000), rules)

	assert.Len(t, alerts, 1)
}

func TestEvaluateRulesMissingBaseline(t *testing.T) {
	rules := []models.AlertRule{{Enabled: true, ThresholdPercent: 5, ComparedTo: models.CompareRolling7d}}

	// Average present but the rolling 7d baseline is nil.
	alerts := EvaluateRules("iPhone 15", "US", models.PriceEntry{Price: 800}, metricsWith(1000), rules)

	assert.Empty(t, alerts)
}

func TestConsoleNotifierSend(t *testing.T) {
	n := NewConsoleNotifier(arbor.NewLogger())

	ok, err := n.Send(context.Background(), []models.TriggeredAlert{
		{Model: "iPhone 15", Price: 799, PercentDiff: 12.5, ComparedTo: models.CompareAverage},
	})

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWebhookNotifierSend(t *testing.T) {
	var received webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, arbor.NewLogger())

	ok, err := n.Send(context.Background(), []models.TriggeredAlert{
		{Model: "iPhone 15", Price: 799, PercentDiff: 12.5, ComparedTo: models.CompareAverage},
	})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "price_alert", received.Type)
	assert.Equal(t, "iPhone 15", received.Model)
	assert.Equal(t, "lower", received.Direction)
}

func TestWebhookNotifierFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, arbor.NewLogger())

	ok, err := n.Send(context.Background(), []models.TriggeredAlert{{Model: "iPhone 15", Price: 799}})

	assert.False(t, ok)
	assert.Error(t, err)
}
