package interfaces

import (
	"context"
	"time"

	"github.com/smartninja/priceagent/internal/models"
)

// HistoryStore persists price observations append-only and serves
// newest-first queries. Appends assign fresh identifiers; there is no
// update-in-place.
type HistoryStore interface {
	// Append stores a price entry and returns its generated ID.
	Append(ctx context.Context, entry models.PriceEntry) (string, error)

	// Query returns entries for (model, country) with timestamps inside
	// the window ending now, newest-first, at most limit entries
	// (limit <= 0 means no cap).
	Query(ctx context.Context, model, country string, window time.Duration, limit int) ([]models.PriceEntry, error)

	// QueryPage returns entries newest-first starting at offset cursor.
	QueryPage(ctx context.Context, model, country string, cursor, limit int) ([]models.PriceEntry, error)
}

// AlertStore persists alert rules and triggered-alert history.
type AlertStore interface {
	SaveRule(ctx context.Context, rule models.AlertRule) error
	Rules(ctx context.Context, model, country string) ([]models.AlertRule, error)
	DeleteRule(ctx context.Context, id string) error

	SaveAlertHistory(ctx context.Context, h models.AlertHistory) error
	AlertHistories(ctx context.Context, model string, limit int) ([]models.AlertHistory, error)
}

// StorageManager provides access to all storage interfaces.
type StorageManager interface {
	HistoryStore() HistoryStore
	AlertStore() AlertStore
	Close() error
}
