package notification

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/models"
)

// ConsoleNotifier logs triggered alerts. It is the default notifier
// when no webhook is configured.
type ConsoleNotifier struct {
	logger arbor.ILogger
}

// NewConsoleNotifier creates a ConsoleNotifier.
func NewConsoleNotifier(logger arbor.ILogger) interfaces.Notifier {
	return &ConsoleNotifier{logger: logger}
}

func (n *ConsoleNotifier) CheckRules(ctx context.Context, model, country string, entry models.PriceEntry, metrics *models.HistoryMetrics, rules []models.AlertRule) ([]models.TriggeredAlert, error) {
	return EvaluateRules(model, country, entry, metrics, rules), nil
}

func (n *ConsoleNotifier) Send(ctx context.Context, alerts []models.TriggeredAlert) (bool, error) {
	for _, alert := range alerts {
		direction := "higher"
		if alert.PercentDiff > 0 {
			direction = "lower"
		}
		n.logger.Info().
			Str("model", alert.Model).
			Str("country", alert.Country).
			Float64("price", alert.Price).
			Str("compared_to", alert.ComparedTo).
			Msg(fmt.Sprintf("PRICE ALERT: %s is now $%.2f, which is %.1f%% %s than the %s price",
				alert.Model, alert.Price, abs(alert.PercentDiff), direction, alert.ComparedTo))
	}
	return true, nil
}
