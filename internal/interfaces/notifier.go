package interfaces

import (
	"context"

	"github.com/smartninja/priceagent/internal/models"
)

// Notifier evaluates alert rules against a price point and delivers
// triggered alerts. Delivery failure is reported via the error return;
// callers decide whether it invalidates anything (the pipeline does not).
type Notifier interface {
	// CheckRules returns the alerts triggered by the given price point
	// against the supplied metrics and rules.
	CheckRules(ctx context.Context, model, country string, entry models.PriceEntry, metrics *models.HistoryMetrics, rules []models.AlertRule) ([]models.TriggeredAlert, error)

	// Send delivers triggered alerts, returning false when any channel failed.
	Send(ctx context.Context, alerts []models.TriggeredAlert) (bool, error)
}
