package models

// PipelineRequest is the initial input to a pipeline run.
type PipelineRequest struct {
	Model       string           `json:"model" validate:"required"`
	Country     string           `json:"country" validate:"required"`
	Region      string           `json:"region,omitempty"`
	Preferences *UserPreferences `json:"user_preferences,omitempty"`
	MaxSites    int              `json:"max_sites,omitempty"`
}

// UserPreferences captures caller preferences consulted during planning.
type UserPreferences struct {
	PreferredRetailers []string `json:"preferred_retailers,omitempty"`
}

// PlanningResult is the output of the planning stage: the ordered list
// of target retail domains plus echoed request context. An empty
// Websites list is a recognized terminal halt condition, not an error.
type PlanningResult struct {
	Websites    []string         `json:"websites"`
	Model       string           `json:"model"`
	Country     string           `json:"country"`
	Category    string           `json:"category"`
	Region      string           `json:"region,omitempty"`
	Preferences *UserPreferences `json:"user_preferences,omitempty"`
}

// Stage identifies one unit of the sequential pipeline.
type Stage string

const (
	StagePlanning       Stage = "planning"
	StageScraping       Stage = "scraping"
	StageAnalysis       Stage = "analysis"
	StageRecommendation Stage = "recommendation"
	StageNotification   Stage = "notification"
	StageUnknown        Stage = "unknown"
)

// PipelineResult is the orchestrator's final output. On success it is
// the recommendation enriched with pipeline metadata; on a halt or
// stage failure only Err (and Stage/Trace for failures) is populated,
// with Data carrying the raw upstream output for diagnostics.
type PipelineResult struct {
	// Error reporting. Err is set for halts ("no websites", "no price
	// data") and stage failures; the orchestrator never returns a Go
	// error for these.
	Err   string      `json:"error,omitempty"`
	Stage Stage       `json:"stage,omitempty"`
	Trace string      `json:"traceback,omitempty"`
	Data  interface{} `json:"data,omitempty"`

	// Success payload.
	Recommendation *Recommendation `json:"recommendation,omitempty"`
	Model          string          `json:"model,omitempty"`
	Country        string          `json:"country,omitempty"`
	WebsiteCount   int             `json:"website_count,omitempty"`
	DataPoints     int             `json:"data_points,omitempty"`
	AveragePrice   float64         `json:"average_price,omitempty"`
	PriceRange     float64         `json:"price_range,omitempty"`
	PriceTrend     string          `json:"price_trend,omitempty"`

	// Notification stage output, fault-isolated from the recommendation.
	Alerts             []TriggeredAlert `json:"alerts,omitempty"`
	NotificationErrors []string         `json:"notification_errors,omitempty"`
	NotificationError  string           `json:"notification_error,omitempty"`
}

// OK reports whether the pipeline produced a usable recommendation.
func (r *PipelineResult) OK() bool {
	return r.Err == "" && r.Recommendation != nil
}
