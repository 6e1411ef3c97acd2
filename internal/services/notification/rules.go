package notification

import (
	"time"

	"github.com/smartninja/priceagent/internal/models"
)

// EvaluateRules returns the alerts triggered by a price point against
// the supplied metrics and rules. PercentDiff is positive when the
// current price sits below the baseline.
func EvaluateRules(model, country string, entry models.PriceEntry, metrics *models.HistoryMetrics, rules []models.AlertRule) []models.TriggeredAlert {
	if metrics == nil {
		return nil
	}

	var triggered []models.TriggeredAlert
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		if !rule.AppliesTo(model, country) {
			continue
		}

		baseline := metrics.Baseline(rule.ComparedTo)
		if baseline == 0 {
			continue
		}

		percentDiff := (baseline - entry.Price) / baseline * 100
		if abs(percentDiff) < rule.ThresholdPercent {
			continue
		}

		triggered = append(triggered, models.TriggeredAlert{
			Model:           model,
			Country:         country,
			Price:           entry.Price,
			ComparisonValue: baseline,
			ComparedTo:      rule.ComparedTo,
			PercentDiff:     percentDiff,
			Threshold:       rule.ThresholdPercent,
			Timestamp:       time.Now(),
		})
	}
	return triggered
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
