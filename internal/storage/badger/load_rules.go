package badger

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/models"
)

// RulesFile is the YAML document holding alert rules.
// Format:
//
//	rules:
//	  - model: "iPhone 15"
//	    country: "US"
//	    enabled: true
//	    threshold_percent: 10
//	    compared_to: "average"
//	    channels: ["console"]
type RulesFile struct {
	Rules []models.AlertRule `yaml:"rules"`
}

// LoadAlertRulesFromFiles loads alert rules from YAML files in the
// specified directory. A missing directory or a bad file is non-fatal.
func LoadAlertRulesFromFiles(ctx context.Context, alertStorage interfaces.AlertStore, dirPath string, logger arbor.ILogger) error {
	logger.Debug().Str("dir", dirPath).Msg("Loading alert rules from files")

	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		logger.Debug().Str("dir", dirPath).Msg("Alert rules directory does not exist, skipping")
		return nil
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		logger.Warn().Err(err).Str("dir", dirPath).Msg("Failed to read alert rules directory")
		return nil // Non-fatal
	}

	loadedCount := 0
	errorCount := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}

		filePath := filepath.Join(dirPath, name)
		content, err := os.ReadFile(filePath)
		if err != nil {
			logger.Warn().Err(err).Str("file", filePath).Msg("Failed to read alert rules file")
			errorCount++
			continue
		}

		var file RulesFile
		if err := yaml.Unmarshal(content, &file); err != nil {
			logger.Warn().Err(err).Str("file", filePath).Msg("Failed to parse alert rules file")
			errorCount++
			continue
		}

		for _, rule := range file.Rules {
			if err := alertStorage.SaveRule(ctx, rule); err != nil {
				logger.Warn().Err(err).Str("file", filePath).Str("model", rule.Model).Msg("Failed to save alert rule")
				errorCount++
				continue
			}
			loadedCount++
		}
	}

	logger.Info().
		Int("loaded", loadedCount).
		Int("errors", errorCount).
		Str("dir", dirPath).
		Msg("Alert rules loaded from files")

	return nil
}

// LoadAlertRulesFromFiles on the manager delegates to the package
// loader with the manager's alert storage.
func (m *Manager) LoadAlertRulesFromFiles(ctx context.Context, dirPath string) error {
	return LoadAlertRulesFromFiles(ctx, m.alerts, dirPath, m.logger)
}
