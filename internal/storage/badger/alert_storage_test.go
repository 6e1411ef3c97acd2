package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/common"
	"github.com/smartninja/priceagent/internal/models"
)

func testBadgerConfig(path string) *common.BadgerConfig {
	return &common.BadgerConfig{Path: path}
}

func TestAlertRuleRoundTrip(t *testing.T) {
	db := newTestDB(t)
	storage := NewAlertStorage(db, arbor.NewLogger())
	ctx := context.Background()

	rule := models.AlertRule{
		Model:            "iPhone 15",
		Country:          "US",
		Enabled:          true,
		ThresholdPercent: 10,
		ComparedTo:       models.CompareAverage,
		Channels:         []string{"console"},
	}
	if err := storage.SaveRule(ctx, rule); err != nil {
		t.Fatalf("Failed to save rule: %v", err)
	}

	rules, err := storage.Rules(ctx, "iPhone 15", "US")
	if err != nil {
		t.Fatalf("Failed to load rules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("Expected 1 rule, got %d", len(rules))
	}
	if rules[0].ID == "" {
		t.Error("Expected saved rule to receive a generated ID")
	}
	if rules[0].ThresholdPercent != 10 {
		t.Errorf("Expected threshold 10, got %.1f", rules[0].ThresholdPercent)
	}
}

func TestAlertRuleValidation(t *testing.T) {
	db := newTestDB(t)
	storage := NewAlertStorage(db, arbor.NewLogger())

	err := storage.SaveRule(context.Background(), models.AlertRule{Model: "iPhone 15"})
	if err == nil {
		t.Error("Expected error for rule without positive threshold")
	}
}

func TestAlertRulesScopedByModelAndCountry(t *testing.T) {
	db := newTestDB(t)
	storage := NewAlertStorage(db, arbor.NewLogger())
	ctx := context.Background()

	seed := []models.AlertRule{
		{Model: "iPhone 15", Country: "US", ThresholdPercent: 10, ComparedTo: models.CompareAverage},
		{Model: "iPhone 15", Country: "global", ThresholdPercent: 5, ComparedTo: models.CompareLowest},
		{Model: "Pixel 9", Country: "US", ThresholdPercent: 15, ComparedTo: models.CompareAverage},
	}
	for _, r := range seed {
		if err := storage.SaveRule(ctx, r); err != nil {
			t.Fatalf("Failed to save rule: %v", err)
		}
	}

	rules, err := storage.Rules(ctx, "iPhone 15", "US")
	if err != nil {
		t.Fatalf("Failed to load rules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules for iPhone 15/US (specific + global), got %d", len(rules))
	}

	all, err := storage.Rules(ctx, "", "")
	if err != nil {
		t.Fatalf("Failed to load all rules: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 rules total, got %d", len(all))
	}
}

func TestAlertRuleDelete(t *testing.T) {
	db := newTestDB(t)
	storage := NewAlertStorage(db, arbor.NewLogger())
	ctx := context.Background()

	rule := models.AlertRule{ID: "alert_fixed", Model: "iPhone 15", ThresholdPercent: 10, ComparedTo: models.CompareAverage}
	if err := storage.SaveRule(ctx, rule); err != nil {
		t.Fatalf("Failed to save rule: %v", err)
	}

	if err := storage.DeleteRule(ctx, "alert_fixed"); err != nil {
		t.Fatalf("Failed to delete rule: %v", err)
	}
	if err := storage.DeleteRule(ctx, "alert_fixed"); err == nil {
		t.Error("Expected error deleting a missing rule")
	}
}

func TestAlertHistoryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	storage := NewAlertStorage(db, arbor.NewLogger())
	ctx := context.Background()

	histories := []models.AlertHistory{
		{
			Alert:     models.TriggeredAlert{Model: "iPhone 15", Price: 799, PercentDiff: 11.2, Timestamp: time.Now()},
			Channels:  map[string]bool{"console": true},
			CreatedAt: time.Now().Add(-time.Hour),
		},
		{
			Alert:     models.TriggeredAlert{Model: "Pixel 9", Price: 650, PercentDiff: 8.4, Timestamp: time.Now()},
			Channels:  map[string]bool{"webhook": false},
			CreatedAt: time.Now(),
		},
	}
	for _, h := range histories {
		if err := storage.SaveAlertHistory(ctx, h); err != nil {
			t.Fatalf("Failed to save alert history: %v", err)
		}
	}

	all, err := storage.AlertHistories(ctx, "", 0)
	if err != nil {
		t.Fatalf("Failed to load alert histories: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 histories, got %d", len(all))
	}
	if all[0].Alert.Model != "Pixel 9" {
		t.Errorf("Expected newest history first, got %s", all[0].Alert.Model)
	}

	scoped, err := storage.AlertHistories(ctx, "iPhone 15", 0)
	if err != nil {
		t.Fatalf("Failed to load scoped histories: %v", err)
	}
	if len(scoped) != 1 {
		t.Fatalf("Expected 1 history for iPhone 15, got %d", len(scoped))
	}
}

func TestLoadAlertRulesFromFiles(t *testing.T) {
	db := newTestDB(t)
	storage := NewAlertStorage(db, arbor.NewLogger())
	ctx := context.Background()

	dir := t.TempDir()
	rulesYAML := `rules:
  - model: "iPhone 15"
    country: "US"
    enabled: true
    threshold_percent: 10
    compared_to: "average"
    channels: ["console"]
  - model: "Pixel 9"
    enabled: true
    threshold_percent: 5
    compared_to: "rolling_7d"
`
	if err := os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte(rulesYAML), 0644); err != nil {
		t.Fatal(err)
	}
	// A malformed file must not abort loading.
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("rules: [not valid"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := LoadAlertRulesFromFiles(ctx, storage, dir, arbor.NewLogger()); err != nil {
		t.Fatalf("Failed to load rules from files: %v", err)
	}

	rules, err := storage.Rules(ctx, "", "")
	if err != nil {
		t.Fatalf("Failed to load rules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules loaded, got %d", len(rules))
	}
}

func TestLoadAlertRulesMissingDir(t *testing.T) {
	db := newTestDB(t)
	storage := NewAlertStorage(db, arbor.NewLogger())

	err := LoadAlertRulesFromFiles(context.Background(), storage, "/nonexistent/path", arbor.NewLogger())
	if err != nil {
		t.Fatalf("Expected missing directory to be non-fatal, got %v", err)
	}
}
