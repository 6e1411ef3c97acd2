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

// AlertStorage implements the AlertStore interface for Badger
type AlertStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAlertStorage creates a new AlertStorage instance
func NewAlertStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AlertStore {
	return &AlertStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AlertStorage) SaveRule(ctx context.Context, rule models.AlertRule) error {
	if rule.ThresholdPercent <= 0 {
		return fmt.Errorf("alert rule threshold must be positive")
	}
	if rule.ID == "" {
		rule.ID = common.NewAlertID()
	}

	if err := s.db.Store().Upsert(rule.ID, rule); err != nil {
		return fmt.Errorf("failed to save alert rule: %w", err)
	}

	s.logger.Debug().
		Str("rule_id", rule.ID).
		Str("model", rule.Model).
		Str("compared_to", rule.ComparedTo).
		Msg("Alert rule saved")

	return nil
}

func (s *AlertStorage) Rules(ctx context.Context, model, country string) ([]models.AlertRule, error) {
	var all []models.AlertRule
	if err := s.db.Store().Find(&all, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to load alert rules: %w", err)
	}

	if model == "" && country == "" {
		return all, nil
	}

	matched := make([]models.AlertRule, 0, len(all))
	for _, rule := range all {
		if rule.AppliesTo(model, country) {
			matched = append(matched, rule)
		}
	}
	return matched, nil
}

func (s *AlertStorage) DeleteRule(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("rule ID is required")
	}
	if err := s.db.Store().Delete(id, models.AlertRule{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("alert rule not found: %s", id)
		}
		return fmt.Errorf("failed to delete alert rule: %w", err)
	}
	return nil
}

func (s *AlertStorage) SaveAlertHistory(ctx context.Context, h models.AlertHistory) error {
	if h.ID == "" {
		h.ID = common.NewAlertID()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}

	if err := s.db.Store().Insert(h.ID, h); err != nil {
		return fmt.Errorf("failed to save alert history: %w", err)
	}
	return nil
}

func (s *AlertStorage) AlertHistories(ctx context.Context, model string, limit int) ([]models.AlertHistory, error) {
	query := badgerhold.Where("ID").Ne("")
	query = query.SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var histories []models.AlertHistory
	if err := s.db.Store().Find(&histories, query); err != nil {
		return nil, fmt.Errorf("failed to load alert history: %w", err)
	}

	if model == "" {
		return histories, nil
	}
	matched := make([]models.AlertHistory, 0, len(histories))
	for _, h := range histories {
		if h.Alert.Model == model {
			matched = append(matched, h)
		}
	}
	return matched, nil
}
