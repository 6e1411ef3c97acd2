package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/smartninja/priceagent/internal/models"
)

// Dead-band for the narrative fallback trend: first-to-last changes
// inside ±2% are reported as stable so noise is not flagged as a trend.
// This is intentionally distinct from the ±5% history-metrics
// dead-band, which serves the dashboard rather than narrative text.
const fallbackTrendDeadband = 0.02

const genericFailureMessage = "[FALLBACK ANALYSIS] Unable to analyze price data. " +
	"Consider comparing prices across retailers and monitoring changes over time for better purchase decisions."

// Fallback is the deterministic, statistics-based analyzer used when
// the generative-text path is unavailable or insufficient. It never
// returns an error: any internal failure degrades to a fixed generic
// message.
type Fallback struct {
	deadband float64
}

// NewFallback creates a Fallback with the default ±2% trend dead-band.
func NewFallback() *Fallback {
	return &Fallback{deadband: fallbackTrendDeadband}
}

// Summarize produces a narrative analysis of the offers.
func (f *Fallback) Summarize(offers []models.Offer) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = genericFailureMessage
		}
	}()

	if len(offers) == 0 {
		return "[FALLBACK ANALYSIS] No price data available for analysis."
	}

	prices := f.orderedPrices(offers)
	if len(prices) == 0 {
		return "[FALLBACK ANALYSIS] Insufficient data for price analysis. Try adding more regions or products."
	}

	stores := map[string]int{}
	regions := map[string]int{}
	for _, o := range offers {
		if o.Store != "" {
			stores[o.Store]++
		}
		if r := regionOf(o); r != "" {
			regions[r]++
		}
	}

	avg := mean(prices)
	low, high := minMax(prices)

	var insights []string
	insights = append(insights, "[FALLBACK ANALYSIS] Based on the available data, we can provide the following insights.")
	insights = append(insights, fmt.Sprintf("The average price is $%.2f, with prices ranging from $%.2f to $%.2f.", avg, low, high))

	if len(prices) > 1 {
		if high-low > avg*0.2 {
			insights = append(insights, "There is significant price variation between stores. Consider comparing prices before purchasing.")
		} else {
			insights = append(insights, "Prices are relatively consistent across stores.")
		}
	}

	if len(stores) > 1 {
		insights = append(insights, fmt.Sprintf("Available at %d different retailers.", len(stores)))
	}
	if len(regions) > 1 {
		insights = append(insights, fmt.Sprintf("Price data from %d different regions.", len(regions)))
	}

	switch f.trend(prices) {
	case models.TrendDecreasing:
		insights = append(insights, "Based on the decreasing price trend, this may be a good time to buy.")
	case models.TrendIncreasing:
		insights = append(insights, "With prices trending upward, you may want to wait for potential drops.")
	case models.TrendStable:
		insights = append(insights, "Prices appear stable, suggesting standard market conditions.")
	default:
		insights = append(insights, "Based on the price trends, consider monitoring prices over time for better insights.")
	}

	return strings.Join(insights, " ")
}

// SummarizeWithJustification produces the structured BUY/WAIT variant,
// schema-compatible with the generative justification prompt.
func (f *Fallback) SummarizeWithJustification(offers []models.Offer) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = genericFailureMessage
		}
	}()

	if len(offers) == 0 {
		return "[FALLBACK ANALYSIS] No price data available for analysis."
	}

	prices := f.orderedPrices(offers)
	if len(prices) == 0 {
		return "[FALLBACK ANALYSIS] No valid price data available."
	}

	model := commonModel(offers)
	current := prices[len(prices)-1]
	avg := mean(prices)
	trend := f.trend(prices)

	var decision, justification string
	if trend == models.TrendDecreasing || current < avg*0.95 {
		decision = "BUY"
		diff := 0.0
		if avg > 0 {
			diff = (avg - current) / avg * 100
		}
		justification = fmt.Sprintf(
			"- Current price: $%.2f\n- Average price: $%.2f (%.1f%% lower)\n- Price trend: %s\n- Market context: Limited historical data available",
			current, avg, diff, capitalize(trend))
	} else {
		decision = "WAIT"
		diff := 0.0
		if avg > 0 {
			diff = (current - avg) / avg * 100
		}
		justification = fmt.Sprintf(
			"- Current price: $%.2f\n- Average price: $%.2f (%.1f%% higher)\n- Price trend: %s\n- Market context: Limited historical data available",
			current, avg, diff, capitalize(trend))
	}

	return fmt.Sprintf(
		"[FALLBACK ANALYSIS] Based on the available data for %s, prices are %s.\n\nDECISION: %s\nJUSTIFICATION:\n%s\n\nThis analysis is based on limited data and should be considered a basic approximation.",
		model, trend, decision, justification)
}

// orderedPrices extracts usable prices ordered by timestamp where
// timestamps exist, falling back to input order otherwise.
func (f *Fallback) orderedPrices(offers []models.Offer) []float64 {
	timestamped := make([]models.Offer, 0, len(offers))
	allTimestamped := true
	for _, o := range offers {
		if !o.HasPrice() {
			continue
		}
		if o.Timestamp.IsZero() {
			allTimestamped = false
			continue
		}
		timestamped = append(timestamped, o)
	}

	if allTimestamped && len(timestamped) > 0 {
		sort.SliceStable(timestamped, func(i, j int) bool {
			return timestamped[i].Timestamp.Before(timestamped[j].Timestamp)
		})
		prices := make([]float64, 0, len(timestamped))
		for _, o := range timestamped {
			prices = append(prices, o.Price)
		}
		return prices
	}

	var prices []float64
	for _, o := range offers {
		if o.HasPrice() {
			prices = append(prices, o.Price)
		}
	}
	return prices
}

// trend classifies first-vs-last movement with the ±2% dead-band.
func (f *Fallback) trend(prices []float64) string {
	if len(prices) <= 1 {
		return models.TrendStable
	}
	first := prices[0]
	last := prices[len(prices)-1]
	switch {
	case last < first*(1-f.deadband):
		return models.TrendDecreasing
	case last > first*(1+f.deadband):
		return models.TrendIncreasing
	default:
		return models.TrendStable
	}
}

func regionOf(o models.Offer) string {
	if o.Region != "" {
		return o.Region
	}
	return o.Country
}

func commonModel(offers []models.Offer) string {
	counts := map[string]int{}
	for _, o := range offers {
		if o.Model != "" {
			counts[o.Model]++
		}
	}
	best, bestCount := "Unknown Model", 0
	for m, c := range counts {
		if c > bestCount {
			best, bestCount = m, c
		}
	}
	return best
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	low, high := values[0], values[0]
	for _, v := range values[1:] {
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
	}
	return low, high
}
