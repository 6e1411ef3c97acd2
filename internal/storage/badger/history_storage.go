package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/smartninja/priceagent/internal/common"
	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/models"
)

// HistoryStorage implements the HistoryStore interface for Badger.
// Entries are append-only: every stored entry gets a fresh ID and is
// never updated in place.
type HistoryStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewHistoryStorage creates a new HistoryStorage instance
func NewHistoryStorage(db *BadgerDB, logger arbor.ILogger) interfaces.HistoryStore {
	return &HistoryStorage{
		db:     db,
		logger: logger,
	}
}

func (s *HistoryStorage) Append(ctx context.Context, entry models.PriceEntry) (string, error) {
	if entry.Model == "" {
		return "", fmt.Errorf("price entry model is required")
	}
	if entry.Price <= 0 {
		return "", fmt.Errorf("price entry must have a positive price")
	}

	entry.ID = common.NewEntryID()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.Country == "" {
		entry.Country = "global"
	}

	if err := s.db.Store().Insert(entry.ID, entry); err != nil {
		return "", fmt.Errorf("failed to store price entry: %w", err)
	}

	s.logger.Debug().
		Str("entry_id", entry.ID).
		Str("model", entry.Model).
		Str("country", entry.Country).
		Msg("Price entry stored")

	return entry.ID, nil
}

func (s *HistoryStorage) Query(ctx context.Context, model, country string, window time.Duration, limit int) ([]models.PriceEntry, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	query := badgerhold.Where("Model").Eq(model).Index("Model")
	if country != "" && country != "global" {
		query = query.And("Country").Eq(country)
	}
	if window > 0 {
		cutoff := time.Now().Add(-window)
		query = query.And("Timestamp").Ge(cutoff)
	}
	query = query.SortBy("Timestamp").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.PriceEntry
	if err := s.db.Store().Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	return entries, nil
}

func (s *HistoryStorage) QueryPage(ctx context.Context, model, country string, cursor, limit int) ([]models.PriceEntry, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if limit <= 0 {
		limit = 50
	}

	query := badgerhold.Where("Model").Eq(model).Index("Model")
	if country != "" && country != "global" {
		query = query.And("Country").Eq(country)
	}
	query = query.SortBy("Timestamp").Reverse().Limit(limit)
	if cursor > 0 {
		query = query.Skip(cursor)
	}

	var entries []models.PriceEntry
	if err := s.db.Store().Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to query price history page: %w", err)
	}
	return entries, nil
}
