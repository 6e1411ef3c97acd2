package analyzer

import (
	"fmt"
	"strings"

	"github.com/smartninja/priceagent/internal/models"
)

// Formatter turns offer records into a human-readable summary string
// suitable for inclusion in a generation prompt.
type Formatter interface {
	Format(offers []models.Offer) (string, error)
}

// PriceFormatter is the default Formatter implementation.
type PriceFormatter struct{}

// NewPriceFormatter creates a PriceFormatter.
func NewPriceFormatter() *PriceFormatter {
	return &PriceFormatter{}
}

// Format renders one line per priced offer. Offers without a usable
// price are skipped rather than aborting the whole summary.
func (f *PriceFormatter) Format(offers []models.Offer) (string, error) {
	if len(offers) == 0 {
		return "", nil
	}

	var lines []string
	for _, offer := range offers {
		if !offer.HasPrice() {
			continue
		}

		line := fmt.Sprintf("%s: $%.2f", storeOrUnknown(offer), offer.Price)
		if !offer.Timestamp.IsZero() {
			line += " on " + offer.Timestamp.Format("2006-01-02")
		}
		if offer.Model != "" {
			line += " for " + offer.Model
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return "No valid price data available", nil
	}

	return "Price Data:\n" + strings.Join(lines, "\n"), nil
}

func storeOrUnknown(o models.Offer) string {
	if o.Store != "" {
		return o.Store
	}
	return "Unknown"
}
