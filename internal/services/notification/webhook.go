package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/models"
)

// WebhookNotifier posts triggered alerts to a configured webhook URL.
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
	logger     arbor.ILogger
}

// webhookPayload is the JSON body posted per alert.
type webhookPayload struct {
	Type        string                `json:"type"`
	Model       string                `json:"model"`
	Price       float64               `json:"price"`
	ComparedTo  string                `json:"compared_to"`
	PercentDiff float64               `json:"percent_diff"`
	Direction   string                `json:"direction"`
	Timestamp   string                `json:"timestamp"`
	Details     models.TriggeredAlert `json:"details"`
}

// NewWebhookNotifier creates a WebhookNotifier targeting url.
func NewWebhookNotifier(url string, logger arbor.ILogger) interfaces.Notifier {
	return &WebhookNotifier{
		webhookURL: url,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (n *WebhookNotifier) CheckRules(ctx context.Context, model, country string, entry models.PriceEntry, metrics *models.HistoryMetrics, rules []models.AlertRule) ([]models.TriggeredAlert, error) {
	return EvaluateRules(model, country, entry, metrics, rules), nil
}

func (n *WebhookNotifier) Send(ctx context.Context, alerts []models.TriggeredAlert) (bool, error) {
	for _, alert := range alerts {
		direction := "higher"
		if alert.PercentDiff > 0 {
			direction = "lower"
		}

		payload := webhookPayload{
			Type:        "price_alert",
			Model:       alert.Model,
			Price:       alert.Price,
			ComparedTo:  alert.ComparedTo,
			PercentDiff: alert.PercentDiff,
			Direction:   direction,
			Timestamp:   time.Now().Format(time.RFC3339),
			Details:     alert,
		}

		body, err := json.Marshal(payload)
		if err != nil {
			return false, fmt.Errorf("failed to encode alert payload: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
		if err != nil {
			return false, fmt.Errorf("failed to build webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			n.logger.Warn().Err(err).Str("url", n.webhookURL).Msg("Webhook alert delivery failed")
			return false, fmt.Errorf("webhook delivery failed: %w", err)
		}
		resp.Body.Close()

		if resp.StatusCode >= 400 {
			n.logger.Warn().
				Int("status", resp.StatusCode).
				Str("url", n.webhookURL).
				Msg("Webhook alert rejected")
			return false, fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
	}
	return true, nil
}
