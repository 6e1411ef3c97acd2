package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/models"
)

// MultiNotifier fans alert delivery out to several channels. Rule
// evaluation runs once; delivery failures are collected per channel so
// one broken webhook never silences the console.
type MultiNotifier struct {
	notifiers []interfaces.Notifier
}

// NewMultiNotifier composes notifiers into one. At least one notifier
// is expected; an empty composition evaluates rules but delivers nothing.
func NewMultiNotifier(notifiers ...interfaces.Notifier) interfaces.Notifier {
	return &MultiNotifier{notifiers: notifiers}
}

// CheckRules implements interfaces.Notifier.
func (m *MultiNotifier) CheckRules(ctx context.Context, model, country string, entry models.PriceEntry, metrics *models.HistoryMetrics, rules []models.AlertRule) ([]models.TriggeredAlert, error) {
	return EvaluateRules(model, country, entry, metrics, rules), nil
}

// Send implements interfaces.Notifier. Every channel is attempted even
// when an earlier one fails.
func (m *MultiNotifier) Send(ctx context.Context, alerts []models.TriggeredAlert) (bool, error) {
	allOK := true
	var failures []string
	for _, n := range m.notifiers {
		ok, err := n.Send(ctx, alerts)
		if err != nil {
			failures = append(failures, err.Error())
		}
		if !ok {
			allOK = false
		}
	}

	if len(failures) > 0 {
		return allOK, fmt.Errorf("alert delivery: %s", strings.Join(failures, "; "))
	}
	return allOK, nil
}
