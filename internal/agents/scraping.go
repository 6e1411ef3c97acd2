package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/models"
)

// ScrapingAgent retrieves raw offers from the planned websites. Fetch
// failures are absorbed: a site that cannot be scraped contributes
// zero offers rather than failing the stage.
type ScrapingAgent struct {
	scraper interfaces.Scraper
	events  interfaces.EventService
	timeout time.Duration
	logger  arbor.ILogger
}

// NewScrapingAgent creates a ScrapingAgent. timeout bounds one full
// scrape pass.
func NewScrapingAgent(scraper interfaces.Scraper, events interfaces.EventService, timeout time.Duration, logger arbor.ILogger) *ScrapingAgent {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ScrapingAgent{scraper: scraper, events: events, timeout: timeout, logger: logger}
}

// Execute scrapes offers from the planned websites.
func (a *ScrapingAgent) Execute(ctx context.Context, plan *models.PlanningResult) ([]models.Offer, error) {
	if plan == nil || plan.Model == "" {
		return nil, fmt.Errorf("scraping requires planned model information")
	}
	if plan.Country == "" {
		return nil, fmt.Errorf("scraping requires planned country information")
	}

	a.publish(ctx, interfaces.EventScrapeStarted, map[string]interface{}{
		"model":    plan.Model,
		"country":  plan.Country,
		"websites": len(plan.Websites),
	})

	offers, err := a.scraper.Scrape(ctx, plan.Model, plan.Country, plan.Websites, a.timeout)
	if err != nil {
		return nil, fmt.Errorf("scraping stage failed: %w", err)
	}

	a.publish(ctx, interfaces.EventScrapeCompleted, map[string]interface{}{
		"model":  plan.Model,
		"offers": len(offers),
	})

	a.logger.Info().
		Str("model", plan.Model).
		Int("offers", len(offers)).
		Msg("Scraping completed")

	return offers, nil
}

func (a *ScrapingAgent) publish(ctx context.Context, eventType interfaces.EventType, payload interface{}) {
	if a.events == nil {
		return
	}
	_ = a.events.Publish(ctx, interfaces.Event{Type: eventType, Payload: payload})
}
