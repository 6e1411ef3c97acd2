package agents

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/models"
	"github.com/smartninja/priceagent/internal/services/sites"
)

// productCategories maps model-name keywords to a product category.
var productCategories = []struct {
	category string
	keywords []string
}{
	{"phone", []string{"iphone", "galaxy", "pixel", "xiaomi"}},
	{"laptop", []string{"macbook", "thinkpad", "xps", "surface", "zenbook"}},
	{"tablet", []string{"ipad", "galaxy tab"}},
	{"desktop", []string{"imac", "mac", "surface studio"}},
	{"wearable", []string{"watch", "galaxy watch", "fitbit"}},
}

// PlanningAgent determines which retail domains to target for a
// request. An empty website list is a legitimate output; the
// orchestrator decides what to do with it.
type PlanningAgent struct {
	selector *sites.Selector
	logger   arbor.ILogger
}

// NewPlanningAgent creates a PlanningAgent.
func NewPlanningAgent(selector *sites.Selector, logger arbor.ILogger) *PlanningAgent {
	return &PlanningAgent{selector: selector, logger: logger}
}

// Execute plans the scraping targets for the request.
func (a *PlanningAgent) Execute(ctx context.Context, req models.PipelineRequest) (*models.PlanningResult, error) {
	websites, err := a.selector.Select(req)
	if err != nil {
		return nil, err
	}

	result := &models.PlanningResult{
		Websites:    websites,
		Model:       req.Model,
		Country:     req.Country,
		Category:    categoryOf(req.Model),
		Region:      req.Region,
		Preferences: req.Preferences,
	}

	a.logger.Info().
		Str("model", req.Model).
		Str("country", req.Country).
		Str("category", result.Category).
		Int("websites", len(websites)).
		Msg("Planning completed")

	return result, nil
}

// categoryOf classifies the product from keywords in the model name.
// Earlier categories win when keywords overlap, so "Surface" is a
// laptop and "Surface Studio" still matches laptop first.
func categoryOf(model string) string {
	lower := strings.ToLower(model)
	for _, pc := range productCategories {
		for _, keyword := range pc.keywords {
			if strings.Contains(lower, keyword) {
				return pc.category
			}
		}
	}
	return "unknown"
}
