package agents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/models"
	"github.com/smartninja/priceagent/internal/services/history"
	"github.com/smartninja/priceagent/internal/services/notification"
)

type memHistoryStore struct {
	entries   []models.PriceEntry
	appendErr error
}

func (m *memHistoryStore) Append(ctx context.Context, entry models.PriceEntry) (string, error) {
	if m.appendErr != nil {
		return "", m.appendErr
	}
	entry.ID = "entry-1"
	m.entries = append(m.entries, entry)
	return entry.ID, nil
}

func (m *memHistoryStore) Query(ctx context.Context, model, country string, window time.Duration, limit int) ([]models.PriceEntry, error) {
	var out []models.PriceEntry
	for _, e := range m.entries {
		if e.Model == model {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memHistoryStore) QueryPage(ctx context.Context, model, country string, cursor, limit int) ([]models.PriceEntry, error) {
	return m.Query(ctx, model, country, 0, limit)
}

type memAlertStore struct {
	rules     []models.AlertRule
	histories []models.AlertHistory
}

func (m *memAlertStore) SaveRule(ctx context.Context, rule models.AlertRule) error { return nil }

func (m *memAlertStore) Rules(ctx context.Context, model, country string) ([]models.AlertRule, error) {
	return m.rules, nil
}

func (m *memAlertStore) DeleteRule(ctx context.Context, id string) error { return nil }

func (m *memAlertStore) SaveAlertHistory(ctx context.Context, h models.AlertHistory) error {
	m.histories = append(m.histories, h)
	return nil
}

func (m *memAlertStore) AlertHistories(ctx context.Context, model string, limit int) ([]models.AlertHistory, error) {
	return m.histories, nil
}

type memStorage struct {
	history *memHistoryStore
	alerts  *memAlertStore
}

func (m *memStorage) HistoryStore() interfaces.HistoryStore { return m.history }
func (m *memStorage) AlertStore() interfaces.AlertStore     { return m.alerts }
func (m *memStorage) Close() error                          { return nil }

func seededStorage(rules ...models.AlertRule) *memStorage {
	now := time.Now()
	store := &memStorage{
		history: &memHistoryStore{},
		alerts:  &memAlertStore{rules: rules},
	}
	// Pre-existing history establishes a $1000 average baseline.
	for i, price := range []float64{990, 1000, 1010} {
		store.history.entries = append(store.history.entries, models.PriceEntry{
			ID:        "seed",
			Model:     "iPhone 15",
			Price:     price,
			Country:   "US",
			Timestamp: now.AddDate(0, 0, -(i + 1)),
		})
	}
	return store
}

func newNotificationAgent(storage *memStorage) *NotificationAgent {
	logger := arbor.NewLogger()
	return NewNotificationAgent(storage, notification.NewConsoleNotifier(logger), history.NewAnalyzer(), nil, logger)
}

func TestNotificationAgentRecordsAndTriggers(t *testing.T) {
	storage := seededStorage(models.AlertRule{
		ID: "r1", Enabled: true, ThresholdPercent: 5, ComparedTo: models.CompareAverage,
	})
	agent := newNotificationAgent(storage)
	offers := []models.Offer{{Model: "iPhone 15", Price: 850, Store: "Amazon", Country: "US"}}
	rec := &models.Recommendation{BestOffer: &models.ScoredOffer{Price: 850, Store: "Amazon"}}

	result, err := agent.Execute(context.Background(), "iPhone 15", "US", offers, rec)

	require.NoError(t, err)
	assert.Equal(t, 1, result.RulesEvaluated)
	require.Len(t, result.Alerts, 1)
	assert.Equal(t, 850.0, result.Alerts[0].Price)
	assert.Greater(t, result.Alerts[0].PercentDiff, 5.0)
	assert.Empty(t, result.Errors)

	// The scraped price landed in history.
	last := storage.history.entries[len(storage.history.entries)-1]
	assert.Equal(t, 850.0, last.Price)
	assert.Equal(t, "Amazon", last.Source)

	// The triggered alert was recorded with delivery status.
	require.Len(t, storage.alerts.histories, 1)
	assert.True(t, storage.alerts.histories[0].Channels["default"])
}

func TestNotificationAgentBelowThreshold(t *testing.T) {
	storage := seededStorage(models.AlertRule{
		ID: "r1", Enabled: true, ThresholdPercent: 20, ComparedTo: models.CompareAverage,
	})
	agent := newNotificationAgent(storage)
	offers := []models.Offer{{Model: "iPhone 15", Price: 950, Store: "Amazon", Country: "US"}}

	result, err := agent.Execute(context.Background(), "iPhone 15", "US", offers, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, result.RulesEvaluated)
	assert.Empty(t, result.Alerts)
	assert.Empty(t, storage.alerts.histories)
}

func TestNotificationAgentDisabledRulesExcluded(t *testing.T) {
	storage := seededStorage(models.AlertRule{
		ID: "r1", Enabled: false, ThresholdPercent: 1, ComparedTo: models.CompareAverage,
	})
	agent := newNotificationAgent(storage)
	offers := []models.Offer{{Model: "iPhone 15", Price: 500, Store: "Amazon", Country: "US"}}

	result, err := agent.Execute(context.Background(), "iPhone 15", "US", offers, nil)

	require.NoError(t, err)
	assert.Equal(t, 0, result.RulesEvaluated)
	assert.Empty(t, result.Alerts)
}

func TestNotificationAgentAppendFailureNonFatal(t *testing.T) {
	storage := seededStorage(models.AlertRule{
		ID: "r1", Enabled: true, ThresholdPercent: 5, ComparedTo: models.CompareAverage,
	})
	storage.history.appendErr = errors.New("disk full")
	agent := newNotificationAgent(storage)
	offers := []models.Offer{{Model: "iPhone 15", Price: 850, Store: "Amazon", Country: "US"}}

	result, err := agent.Execute(context.Background(), "iPhone 15", "US", offers, nil)

	// Alerting proceeds on the in-memory price point.
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "failed to record price history")
	require.Len(t, result.Alerts, 1)
	assert.Equal(t, 850.0, result.Alerts[0].Price)
}

func TestNotificationAgentRequiresModel(t *testing.T) {
	agent := newNotificationAgent(seededStorage())

	_, err := agent.Execute(context.Background(), "", "US", nil, nil)

	assert.Error(t, err)
}

func TestNotificationAgentNoOffers(t *testing.T) {
	agent := newNotificationAgent(seededStorage())

	result, err := agent.Execute(context.Background(), "iPhone 15", "US", nil, nil)

	require.NoError(t, err)
	assert.Empty(t, result.Alerts)
	assert.Equal(t, 0, result.RulesEvaluated)
}

func TestRepresentativeOffer(t *testing.T) {
	offers := []models.Offer{
		{Price: 900, Store: "Amazon", URL: "https://amazon.com/p1"},
		{Price: 880, Store: "Unknown Store"},
	}

	// Recommendation's best offer wins over the cheapest scrape.
	rec := &models.Recommendation{BestOffer: &models.ScoredOffer{Price: 900, Store: "Amazon"}}
	picked := representativeOffer(offers, rec)
	require.NotNil(t, picked)
	assert.Equal(t, "Amazon", picked.Store)
	assert.Equal(t, "https://amazon.com/p1", picked.URL)

	// Without a recommendation the lowest price stands in.
	picked = representativeOffer(offers, nil)
	require.NotNil(t, picked)
	assert.Equal(t, 880.0, picked.Price)

	assert.Nil(t, representativeOffer(nil, nil))
}
