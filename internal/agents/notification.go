package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/common"
	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/models"
	"github.com/smartninja/priceagent/internal/services/history"
)

// NotificationResult reports the outcome of the notification stage.
type NotificationResult struct {
	Alerts         []models.TriggeredAlert `json:"alerts_triggered"`
	Errors         []string                `json:"notification_errors,omitempty"`
	RulesEvaluated int                     `json:"rules_evaluated"`
	RulesTriggered int                     `json:"rules_triggered"`
}

// NotificationAgent persists scraped prices into history, evaluates
// alert rules against the refreshed metrics, and delivers triggered
// alerts. Per-rule and per-channel failures are collected, never
// propagated; the caller decides whether errors matter.
type NotificationAgent struct {
	storage  interfaces.StorageManager
	notifier interfaces.Notifier
	analyzer *history.Analyzer
	events   interfaces.EventService
	logger   arbor.ILogger
}

// NewNotificationAgent creates a NotificationAgent.
func NewNotificationAgent(storage interfaces.StorageManager, notifier interfaces.Notifier, analyzer *history.Analyzer, events interfaces.EventService, logger arbor.ILogger) *NotificationAgent {
	return &NotificationAgent{
		storage:  storage,
		notifier: notifier,
		analyzer: analyzer,
		events:   events,
		logger:   logger,
	}
}

// Execute records the offers into price history and checks alert
// rules against the best current price.
func (a *NotificationAgent) Execute(ctx context.Context, model, country string, offers []models.Offer, rec *models.Recommendation) (*NotificationResult, error) {
	if model == "" {
		return nil, fmt.Errorf("notification requires model information")
	}

	result := &NotificationResult{}

	entry, err := a.recordOffers(ctx, model, country, offers, rec, result)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return result, nil
	}

	metrics, rules, err := a.loadContext(ctx, model, country)
	if err != nil {
		return nil, err
	}
	result.RulesEvaluated = len(rules)
	if len(rules) == 0 {
		a.logger.Debug().Str("model", model).Msg("No alert rules configured")
		return result, nil
	}

	alerts, err := a.notifier.CheckRules(ctx, model, country, *entry, metrics, rules)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("rule evaluation failed: %v", err))
		return result, nil
	}
	if len(alerts) == 0 {
		return result, nil
	}

	result.Alerts = alerts
	result.RulesTriggered = len(alerts)
	a.deliver(ctx, alerts, result)

	return result, nil
}

// recordOffers appends the representative price point to history. The
// recommendation's best offer wins; otherwise the lowest scraped
// price stands in.
func (a *NotificationAgent) recordOffers(ctx context.Context, model, country string, offers []models.Offer, rec *models.Recommendation, result *NotificationResult) (*models.PriceEntry, error) {
	offer := representativeOffer(offers, rec)
	if offer == nil {
		return nil, nil
	}

	entry := models.EntryFromOffer(*offer)
	entry.Model = model
	if country != "" {
		entry.Country = country
	}

	id, err := a.storage.HistoryStore().Append(ctx, entry)
	if err != nil {
		// History persistence failing must not block alerting on the
		// in-memory price point.
		result.Errors = append(result.Errors, fmt.Sprintf("failed to record price history: %v", err))
		a.logger.Warn().Err(err).Str("model", model).Msg("Failed to record price history")
	} else {
		entry.ID = id
	}
	return &entry, nil
}

func (a *NotificationAgent) loadContext(ctx context.Context, model, country string) (*models.HistoryMetrics, []models.AlertRule, error) {
	entries, err := a.storage.HistoryStore().Query(ctx, model, country, 0, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load price history: %w", err)
	}
	metrics := a.analyzer.Metrics(entries)

	rules, err := a.storage.AlertStore().Rules(ctx, model, country)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load alert rules: %w", err)
	}

	enabled := rules[:0]
	for _, r := range rules {
		if r.Enabled {
			enabled = append(enabled, r)
		}
	}
	return &metrics, enabled, nil
}

// deliver sends alerts and records alert history. Delivery and
// persistence failures land in result.Errors.
func (a *NotificationAgent) deliver(ctx context.Context, alerts []models.TriggeredAlert, result *NotificationResult) {
	ok, err := a.notifier.Send(ctx, alerts)
	delivered := err == nil && ok
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("alert delivery failed: %v", err))
	} else if !ok {
		result.Errors = append(result.Errors, "alert delivery reported failure")
	}

	for _, alert := range alerts {
		a.publishAlert(ctx, alert)

		h := models.AlertHistory{
			ID:        common.NewAlertID(),
			Alert:     alert,
			Channels:  map[string]bool{"default": delivered},
			CreatedAt: time.Now(),
		}
		if err := a.storage.AlertStore().SaveAlertHistory(ctx, h); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to save alert history: %v", err))
		}
	}

	a.logger.Info().
		Int("alerts", len(alerts)).
		Bool("delivered", delivered).
		Msg("Alerts processed")
}

func (a *NotificationAgent) publishAlert(ctx context.Context, alert models.TriggeredAlert) {
	if a.events == nil {
		return
	}
	_ = a.events.Publish(ctx, interfaces.Event{Type: interfaces.EventAlertTriggered, Payload: alert})
}

// representativeOffer picks the price point recorded into history:
// the recommendation's best offer when present, otherwise the lowest
// priced scrape.
func representativeOffer(offers []models.Offer, rec *models.Recommendation) *models.Offer {
	if rec != nil && rec.BestOffer != nil && rec.BestOffer.Price > 0 {
		for i := range offers {
			if offers[i].Price == rec.BestOffer.Price && offers[i].Store == rec.BestOffer.Store {
				return &offers[i]
			}
		}
		return &models.Offer{
			Price: rec.BestOffer.Price,
			Store: rec.BestOffer.Store,
			URL:   rec.BestOffer.URL,
		}
	}

	var lowest *models.Offer
	for i := range offers {
		if !offers[i].HasPrice() {
			continue
		}
		if lowest == nil || offers[i].Price < lowest.Price {
			lowest = &offers[i]
		}
	}
	return lowest
}
