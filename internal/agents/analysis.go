package agents

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/models"
	"github.com/smartninja/priceagent/internal/services/analyzer"
)

// shortTermTrendDeadband is the ±2% band inside which scraped offers
// are considered to show a stable trend.
const shortTermTrendDeadband = 0.02

// AnalysisAgent turns raw offers into an analysis: generated or
// fallback narrative text plus deterministic statistics. It never
// fails the stage for analysis-quality reasons; empty input yields a
// zero-confidence result.
type AnalysisAgent struct {
	engine *analyzer.Engine
	events interfaces.EventService
	logger arbor.ILogger
}

// NewAnalysisAgent creates an AnalysisAgent.
func NewAnalysisAgent(engine *analyzer.Engine, events interfaces.EventService, logger arbor.ILogger) *AnalysisAgent {
	return &AnalysisAgent{engine: engine, events: events, logger: logger}
}

// Execute analyzes the scraped offers.
func (a *AnalysisAgent) Execute(ctx context.Context, offers []models.Offer) (*models.AnalysisResult, error) {
	if len(offers) == 0 {
		return &models.AnalysisResult{
			Analysis:    "No price data available for analysis.",
			Confidence:  0.0,
			Reasoning:   "No data was provided for analysis.",
			Explanation: "No price data available",
			Offers:      nil,
		}, nil
	}

	a.publish(ctx, interfaces.EventAnalysisStarted, map[string]interface{}{"offers": len(offers)})

	detail := computeStatistics(offers)
	detail.Trend = detectShortTermTrend(offers)

	text := a.engine.Analyze(ctx, offers)
	fallbackUsed := strings.Contains(text, "[FALLBACK ANALYSIS]")

	confidence := 0.75
	if fallbackUsed {
		confidence = 0.5
	}

	result := &models.AnalysisResult{
		Analysis:     text,
		Confidence:   confidence,
		Reasoning:    buildReasoning(detail),
		Explanation:  buildExplanation(detail),
		FallbackUsed: fallbackUsed,
		Detailed:     detail,
		Offers:       offers,
	}

	a.publish(ctx, interfaces.EventAnalysisCompleted, map[string]interface{}{
		"fallback_used": fallbackUsed,
		"trend":         detail.Trend,
	})

	a.logger.Info().
		Int("offers", len(offers)).
		Bool("fallback", fallbackUsed).
		Str("trend", detail.Trend).
		Msg("Analysis completed")

	return result, nil
}

func (a *AnalysisAgent) publish(ctx context.Context, eventType interfaces.EventType, payload interface{}) {
	if a.events == nil {
		return
	}
	_ = a.events.Publish(ctx, interfaces.Event{Type: eventType, Payload: payload})
}

// computeStatistics derives price statistics over offers with usable
// prices. Offers without a positive price are skipped, not treated as
// zero.
func computeStatistics(offers []models.Offer) *models.AnalysisDetail {
	var prices []float64
	stores := map[string]bool{}
	for _, o := range offers {
		if o.HasPrice() {
			prices = append(prices, o.Price)
		}
		if o.Store != "" {
			stores[o.Store] = true
		}
	}

	detail := &models.AnalysisDetail{StoreCount: len(stores)}
	if len(prices) == 0 {
		return detail
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

	detail.AveragePrice = avg
	detail.LowestPrice = low
	detail.HighestPrice = high
	if len(prices) > 1 {
		detail.PriceRange = high - low

		variance := 0.0
		for _, p := range prices {
			variance += (p - avg) * (p - avg)
		}
		detail.PriceStdDev = math.Sqrt(variance / float64(len(prices)-1))
	}
	return detail
}

// detectShortTermTrend classifies first-to-last price movement across
// timestamped offers with the ±2% dead-band. Empty when fewer than two
// offers carry timestamps.
func detectShortTermTrend(offers []models.Offer) string {
	var timestamped []models.Offer
	for _, o := range offers {
		if o.HasPrice() && !o.Timestamp.IsZero() {
			timestamped = append(timestamped, o)
		}
	}
	if len(timestamped) <= 1 {
		return ""
	}

	sort.SliceStable(timestamped, func(i, j int) bool {
		return timestamped[i].Timestamp.Before(timestamped[j].Timestamp)
	})

	first := timestamped[0].Price
	last := timestamped[len(timestamped)-1].Price
	switch {
	case last > first*(1+shortTermTrendDeadband):
		return models.TrendIncreasing
	case first > last*(1+shortTermTrendDeadband):
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

func buildReasoning(detail *models.AnalysisDetail) string {
	if detail.StoreCount == 0 && detail.AveragePrice == 0 {
		return "Insufficient price data for detailed reasoning."
	}
	reasoning := fmt.Sprintf("Analysis based on offers from %d stores with an average price of $%.2f.", detail.StoreCount, detail.AveragePrice)
	if detail.Trend != "" {
		reasoning += fmt.Sprintf(" Short-term price movement is %s.", detail.Trend)
	}
	return reasoning
}

func buildExplanation(detail *models.AnalysisDetail) string {
	var explanation string
	if detail.StoreCount > 0 && detail.LowestPrice > 0 {
		diff := detail.HighestPrice - detail.LowestPrice
		if diff > 0 {
			pct := diff / detail.LowestPrice * 100
			explanation = fmt.Sprintf("Price varies by $%.2f (±%.1f%%)", diff, pct)
		} else {
			explanation = fmt.Sprintf("All stores selling at $%.2f", detail.LowestPrice)
		}
	} else {
		explanation = "Price data unavailable"
	}

	switch detail.Trend {
	case models.TrendIncreasing:
		explanation += ", prices trending upward"
	case models.TrendDecreasing:
		explanation += ", prices trending downward"
	case models.TrendStable:
		explanation += ", prices stable recently"
	}
	return explanation
}
