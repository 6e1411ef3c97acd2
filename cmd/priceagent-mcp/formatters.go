package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/smartninja/priceagent/internal/models"
)

// formatPipelineResult formats a full pipeline result as markdown
func formatPipelineResult(result *models.PipelineResult) string {
	var sb strings.Builder

	if result.Err != "" {
		sb.WriteString(fmt.Sprintf("## Price Check Failed\n\n**Error:** %s\n", result.Err))
		if result.Stage != "" {
			sb.WriteString(fmt.Sprintf("**Stage:** %s\n", result.Stage))
		}
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("## Price Check: %s (%s)\n\n", result.Model, result.Country))
	sb.WriteString(fmt.Sprintf("**Websites checked:** %d\n", result.WebsiteCount))
	sb.WriteString(fmt.Sprintf("**Price points found:** %d\n", result.DataPoints))
	if result.AveragePrice > 0 {
		sb.WriteString(fmt.Sprintf("**Average price:** $%.2f\n", result.AveragePrice))
	}
	if result.PriceTrend != "" {
		sb.WriteString(fmt.Sprintf("**Price trend:** %s\n", result.PriceTrend))
	}
	sb.WriteString("\n")

	if rec := result.Recommendation; rec != nil {
		sb.WriteString("### Recommendation\n\n")
		if rec.BestOffer != nil {
			sb.WriteString(fmt.Sprintf("**Best offer:** %s at $%.2f\n", rec.BestOffer.Store, rec.BestOffer.Price))
			if rec.BestOffer.URL != "" {
				sb.WriteString(fmt.Sprintf("**URL:** %s\n", rec.BestOffer.URL))
			}
		}
		sb.WriteString(fmt.Sprintf("**Confidence:** %.0f%%\n\n", rec.Confidence*100))
		sb.WriteString(rec.Recommendation)
		sb.WriteString("\n")
	}

	if len(result.Alerts) > 0 {
		sb.WriteString(fmt.Sprintf("\n### Alerts Triggered (%d)\n\n", len(result.Alerts)))
		for _, alert := range result.Alerts {
			sb.WriteString(fmt.Sprintf("- $%.2f is %.1f%% below the %s price ($%.2f)\n",
				alert.Price, alert.PercentDiff, alert.ComparedTo, alert.ComparisonValue))
		}
	}
	if result.NotificationError != "" {
		sb.WriteString(fmt.Sprintf("\n**Notification warning:** %s\n", result.NotificationError))
	}

	return sb.String()
}

// formatOffers formats scraped offers as markdown
func formatOffers(model string, offers []models.Offer) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Offers for %s (%d found)\n\n", model, len(offers)))

	if len(offers) == 0 {
		sb.WriteString("No offers found.\n")
		return sb.String()
	}

	for i, offer := range offers {
		sb.WriteString(fmt.Sprintf("### %d. %s\n", i+1, offer.Store))
		sb.WriteString(fmt.Sprintf("**Price:** %.2f %s\n", offer.Price, offer.Currency))
		if offer.Rating > 0 {
			sb.WriteString(fmt.Sprintf("**Rating:** %.1f\n", offer.Rating))
		}
		if offer.InStock != nil {
			if *offer.InStock {
				sb.WriteString("**Availability:** in stock\n")
			} else {
				sb.WriteString("**Availability:** out of stock\n")
			}
		}
		if offer.URL != "" {
			sb.WriteString(fmt.Sprintf("**URL:** %s\n", offer.URL))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatHistory formats price history entries with their metrics as markdown
func formatHistory(model string, entries []models.PriceEntry, metrics models.HistoryMetrics) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Price History: %s (%d entries)\n\n", model, len(entries)))

	if metrics.Count > 0 && metrics.Err == "" {
		sb.WriteString("### Metrics\n\n")
		if metrics.AveragePrice != nil {
			sb.WriteString(fmt.Sprintf("**Average:** $%.2f\n", *metrics.AveragePrice))
		}
		if metrics.MinPrice != nil && metrics.MaxPrice != nil {
			sb.WriteString(fmt.Sprintf("**Range:** $%.2f - $%.2f\n", *metrics.MinPrice, *metrics.MaxPrice))
		}
		if metrics.Rolling7dAverage != nil {
			sb.WriteString(fmt.Sprintf("**7-day average:** $%.2f\n", *metrics.Rolling7dAverage))
		}
		if metrics.Rolling30dAvg != nil {
			sb.WriteString(fmt.Sprintf("**30-day average:** $%.2f\n", *metrics.Rolling30dAvg))
		}
		sb.WriteString(fmt.Sprintf("**Trend:** %s\n\n", metrics.Trend))
	} else if metrics.Err != "" {
		sb.WriteString(fmt.Sprintf("**Metrics unavailable:** %s\n\n", metrics.Err))
	}

	if len(entries) == 0 {
		sb.WriteString("No history recorded.\n")
		return sb.String()
	}

	sb.WriteString("### Entries (newest first)\n\n")
	for _, entry := range entries {
		sb.WriteString(fmt.Sprintf("- %s: %.2f %s at %s (%s)\n",
			entry.Timestamp.Format("2006-01-02"), entry.Price, entry.Currency, entry.Source, entry.Country))
	}

	return sb.String()
}

// formatAlertHistories formats triggered alerts as markdown
func formatAlertHistories(histories []models.AlertHistory) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Triggered Alerts (%d)\n\n", len(histories)))

	if len(histories) == 0 {
		sb.WriteString("No alerts have been triggered.\n")
		return sb.String()
	}

	for _, h := range histories {
		direction := "below"
		if h.Alert.PercentDiff < 0 {
			direction = "above"
		}
		sb.WriteString(fmt.Sprintf("### %s - %s\n", h.Alert.Model, h.CreatedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("**Price:** $%.2f (%.1f%% %s the %s price of $%.2f)\n",
			h.Alert.Price, abs(h.Alert.PercentDiff), direction, h.Alert.ComparedTo, h.Alert.ComparisonValue))

		var delivered []string
		for channel, ok := range h.Channels {
			if ok {
				delivered = append(delivered, channel)
			}
		}
		if len(delivered) > 0 {
			sb.WriteString(fmt.Sprintf("**Delivered via:** %s\n", strings.Join(delivered, ", ")))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
