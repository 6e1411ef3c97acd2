package interfaces

import (
	"context"
	"time"

	"github.com/smartninja/priceagent/internal/models"
)

// Scraper retrieves current offers for a product model in a country.
// Implementations must tolerate country codes they have no specialized
// logic for, falling back to generic behavior, and must treat the
// timeout as a hard bound: a timed-out fetch degrades to whatever
// offers were collected, never an unbounded wait.
type Scraper interface {
	Scrape(ctx context.Context, model, country string, websites []string, timeout time.Duration) ([]models.Offer, error)
}
