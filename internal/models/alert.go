package models

import "time"

// Comparison baselines for alert rules.
const (
	CompareAverage   = "average"
	CompareLowest    = "lowest"
	CompareHighest   = "highest"
	CompareRolling7d = "rolling_7d"
	CompareRolling30 = "rolling_30d"
)

// AlertRule describes when a price movement should trigger a
// notification. Rules are constructed from persisted configuration,
// evaluated per incoming price point, and replaced wholesale on
// update, never mutated.
type AlertRule struct {
	ID               string  `json:"id,omitempty" yaml:"id,omitempty"`
	Model            string  `json:"model,omitempty" yaml:"model,omitempty"`     // empty = any model
	Country          string  `json:"country,omitempty" yaml:"country,omitempty"` // empty or "global" = any country
	Enabled          bool    `json:"enabled" yaml:"enabled"`
	ThresholdPercent float64 `json:"threshold_percent" yaml:"threshold_percent" validate:"gt=0"`
	ComparedTo       string  `json:"compared_to" yaml:"compared_to" validate:"oneof=average lowest highest rolling_7d rolling_30d"`
	Channels         []string `json:"channels,omitempty" yaml:"channels,omitempty"` // console, webhook
}

// AppliesTo reports whether the rule covers a (model, country) pair.
func (r *AlertRule) AppliesTo(model, country string) bool {
	if r.Model != "" && r.Model != model {
		return false
	}
	if r.Country != "" && r.Country != "global" && r.Country != country {
		return false
	}
	return true
}

// TriggeredAlert records one rule firing against one price point.
type TriggeredAlert struct {
	Model           string    `json:"model"`
	Country         string    `json:"country"`
	Price           float64   `json:"price"`
	ComparisonValue float64   `json:"comparison_value"`
	ComparedTo      string    `json:"compared_to"`
	PercentDiff     float64   `json:"percent_diff"` // positive = current price below baseline
	Threshold       float64   `json:"threshold"`
	Timestamp       time.Time `json:"timestamp"`
}

// AlertHistory is a persisted record of a triggered alert and the
// delivery status per notification channel.
type AlertHistory struct {
	ID        string          `json:"id" badgerhold:"key"`
	Alert     TriggeredAlert  `json:"alert"`
	Channels  map[string]bool `json:"channels"` // channel -> delivered
	CreatedAt time.Time       `json:"created_at"`
}
