package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/models"
)

// reputableStores carry a scoring bonus for reliability of listings
// and fulfillment.
var reputableStores = map[string]bool{
	"Amazon":  true,
	"Apple":   true,
	"BestBuy": true,
	"Walmart": true,
	"Target":  true,
}

// RecommendationAgent selects the best offer by overall value rather
// than lowest price, and produces user-facing recommendation text.
type RecommendationAgent struct {
	events interfaces.EventService
	logger arbor.ILogger
}

// NewRecommendationAgent creates a RecommendationAgent.
func NewRecommendationAgent(events interfaces.EventService, logger arbor.ILogger) *RecommendationAgent {
	return &RecommendationAgent{events: events, logger: logger}
}

// Execute selects the best offer from the analyzed data. Empty offer
// data is a valid terminal result carried inside the Recommendation,
// not a Go error.
func (a *RecommendationAgent) Execute(ctx context.Context, analysis *models.AnalysisResult) (*models.Recommendation, error) {
	if analysis == nil {
		return nil, fmt.Errorf("recommendation requires analysis data")
	}

	if len(analysis.Offers) == 0 {
		return &models.Recommendation{
			Err:            "No price data available for recommendation",
			Recommendation: "Unable to provide recommendations due to lack of price data.",
		}, nil
	}

	a.publish(ctx, interfaces.EventRecommendationStarted, map[string]interface{}{"offers": len(analysis.Offers)})

	best := findBestOffer(analysis.Offers)
	if best == nil {
		return &models.Recommendation{
			Err:            "No price data available for recommendation",
			Recommendation: "Unable to provide recommendations due to lack of price data.",
		}, nil
	}

	detail := analysis.Detailed
	if detail == nil {
		detail = computeStatistics(analysis.Offers)
	}

	rec := &models.Recommendation{
		BestOffer:      best,
		Recommendation: recommendationText(best, detail, analysis.Analysis),
		Confidence:     recommendationConfidence(best, detail),
		Reasoning:      detailedReasoning(best, detail),
		Explanation:    conciseExplanation(best, detail),
		Detailed: map[string]interface{}{
			"best_offer":    best,
			"price_trend":   detail.Trend,
			"store_count":   detail.StoreCount,
			"average_price": detail.AveragePrice,
			"value_score":   best.ValueScore,
		},
	}

	a.publish(ctx, interfaces.EventRecommendationComplete, map[string]interface{}{
		"store":      best.Store,
		"price":      best.Price,
		"confidence": rec.Confidence,
	})

	a.logger.Info().
		Str("store", best.Store).
		Float64("price", best.Price).
		Float64("value_score", best.ValueScore).
		Float64("confidence", rec.Confidence).
		Msg("Recommendation completed")

	return rec, nil
}

func (a *RecommendationAgent) publish(ctx context.Context, eventType interfaces.EventType, payload interface{}) {
	if a.events == nil {
		return
	}
	_ = a.events.Publish(ctx, interfaces.Event{Type: eventType, Payload: payload})
}

// findBestOffer scores every priced offer and returns the highest
// scorer. Offers without a usable price cannot win.
func findBestOffer(offers []models.Offer) *models.ScoredOffer {
	lowest := 0.0
	for _, o := range offers {
		if !o.HasPrice() {
			continue
		}
		if lowest == 0 || o.Price < lowest {
			lowest = o.Price
		}
	}
	if lowest == 0 {
		return nil
	}

	var best *models.ScoredOffer
	bestScore := 0.0
	for _, o := range offers {
		if !o.HasPrice() {
			continue
		}
		score := valueScore(o, lowest)
		if best == nil || score > bestScore {
			bestScore = score
			best = &models.ScoredOffer{
				Price:      o.Price,
				Store:      o.Store,
				URL:        o.URL,
				InStock:    o.Available(),
				Rating:     o.Rating,
				ValueScore: score,
			}
		}
	}
	return best
}

// valueScore combines price closeness, rating, availability, and
// store reputation into one ranking number. Price contributes up to
// 50 points, rating up to 40, stock +30/-40, reputation +15.
func valueScore(o models.Offer, lowest float64) float64 {
	score := 0.0

	diffPct := (o.Price - lowest) / (lowest + 0.01) * 100
	var priceScore float64
	if diffPct < 1.5 {
		priceScore = 50
	} else {
		capped := diffPct / 20
		if capped > 0.9 {
			capped = 0.9
		}
		priceScore = 50 * (1 - capped)
	}
	if priceScore > 0 {
		score += priceScore
	}

	if o.Rating >= 1 {
		score += 40 * (o.Rating - 1) / 4
	}

	if o.InStock != nil {
		if *o.InStock {
			score += 30
		} else {
			score -= 40
		}
	}

	if reputableStores[o.Store] {
		score += 15
	}

	return score
}

// recommendationConfidence turns offer quality into a probability-like
// confidence in [0,1].
func recommendationConfidence(best *models.ScoredOffer, detail *models.AnalysisDetail) float64 {
	confidence := 0.5

	switch {
	case best.ValueScore > 70:
		confidence += 0.2
	case best.ValueScore > 50:
		confidence += 0.1
	case best.ValueScore < 30:
		confidence -= 0.1
	}

	if detail.AveragePrice > 0 {
		switch {
		case best.Price < detail.AveragePrice*0.9:
			confidence += 0.15
		case best.Price < detail.AveragePrice*0.95:
			confidence += 0.1
		case best.Price > detail.AveragePrice*1.1:
			confidence -= 0.15
		}
	}

	if best.InStock {
		confidence += 0.1
	} else {
		confidence -= 0.3
	}

	if reputableStores[best.Store] {
		confidence += 0.1
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

func recommendationText(best *models.ScoredOffer, detail *models.AnalysisDetail, analysisText string) string {
	store := best.Store
	if store == "" {
		store = "Unknown"
	}
	text := fmt.Sprintf("The best offer is from %s at $%.2f. ", store, best.Price)

	if detail.AveragePrice > 0 && best.Price < detail.AveragePrice*0.95 {
		percentBelow := (detail.AveragePrice - best.Price) / detail.AveragePrice * 100
		text += fmt.Sprintf("This is a good deal, as it's %.1f%% below the average price of $%.2f. ", percentBelow, detail.AveragePrice)
	}

	switch detail.Trend {
	case models.TrendDecreasing:
		text += "Prices have been decreasing recently, so you might benefit from waiting for further drops. "
	case models.TrendIncreasing:
		text += "Prices have been increasing, so it might be good to buy soon before further increases. "
	case models.TrendStable:
		text += "Prices have been stable, indicating a consistent market value. "
	}

	text += "Based on factors including price, store reputation, and availability, this represents the best overall value. "

	if len(analysisText) > 20 {
		snippet := analysisText
		if idx := strings.Index(snippet, "."); idx >= 0 {
			snippet = snippet[:idx+1]
		}
		if len(snippet) < 100 {
			text += "Market analysis: " + snippet
		}
	}

	return text
}

func detailedReasoning(best *models.ScoredOffer, detail *models.AnalysisDetail) string {
	reasoning := "Recommendation based on evaluation of "
	if detail.StoreCount > 0 {
		reasoning += fmt.Sprintf("%d different stores. ", detail.StoreCount)
	} else {
		reasoning += "available price data. "
	}

	if best.Price > 0 && detail.AveragePrice > 0 {
		diff := best.Price - detail.AveragePrice
		percent := diff / detail.AveragePrice * 100
		switch {
		case percent > -1 && percent < 1:
			reasoning += fmt.Sprintf("The recommended price ($%.2f) is very close to the average market price ($%.2f). ", best.Price, detail.AveragePrice)
		case diff < 0:
			reasoning += fmt.Sprintf("The recommended price ($%.2f) is %.1f%% below the average market price ($%.2f). ", best.Price, -percent, detail.AveragePrice)
		default:
			reasoning += fmt.Sprintf("The recommended price ($%.2f) is %.1f%% above the average market price ($%.2f), but offers better value when considering other factors. ", best.Price, percent, detail.AveragePrice)
		}
	}

	switch detail.Trend {
	case models.TrendDecreasing:
		reasoning += "Market analysis indicates prices are on a downward trend, suggesting possible better deals in the future. "
	case models.TrendIncreasing:
		reasoning += "Market analysis shows prices are trending upward, making this a good time to purchase. "
	case models.TrendStable:
		reasoning += "The price trend is stable, indicating the market has reached equilibrium for this product. "
	}

	reasoning += "This recommendation prioritizes overall value by considering multiple factors including price competitiveness, store reputation, product availability, and customer ratings. "

	if best.ValueScore > 0 {
		reasoning += fmt.Sprintf("The selected offer received a value score of %.1f out of a possible 100 points, ", best.ValueScore)
		switch {
		case best.ValueScore > 80:
			reasoning += "placing it significantly above other options in overall value. "
		case best.ValueScore > 60:
			reasoning += "placing it above most alternatives in overall value. "
		default:
			reasoning += "making it the best available option despite limitations. "
		}
	}

	return reasoning
}

func conciseExplanation(best *models.ScoredOffer, detail *models.AnalysisDetail) string {
	store := best.Store
	if store == "" {
		store = "Unknown"
	}
	explanation := fmt.Sprintf("Best value: %s at $%.2f. ", store, best.Price)

	switch {
	case detail.AveragePrice > 0 && best.Price < detail.AveragePrice*0.95:
		explanation += "Price below market average. "
	case best.Rating > 4.5:
		explanation += "Top-rated option. "
	case best.InStock:
		explanation += "In-stock and ready to ship. "
	}

	switch detail.Trend {
	case models.TrendDecreasing:
		explanation += "Consider waiting for further price drops."
	case models.TrendIncreasing:
		explanation += "Consider buying soon before prices increase further."
	case models.TrendStable:
		explanation += "Prices stable, good time to buy."
	}

	return explanation
}
