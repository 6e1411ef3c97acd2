package models

// Trend labels price movement over a window of observations.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
	TrendUnknown    = "unknown"
)

// AnalysisDetail carries the statistics backing an analysis.
type AnalysisDetail struct {
	AveragePrice float64 `json:"average_price"`
	LowestPrice  float64 `json:"lowest_price"`
	HighestPrice float64 `json:"highest_price"`
	PriceRange   float64 `json:"price_range"`
	PriceStdDev  float64 `json:"price_std_dev"`
	StoreCount   int     `json:"store_count"`
	Trend        string  `json:"trend,omitempty"`
}

// AnalysisResult is the output of the analysis stage. The scraped
// offers are carried forward so the recommendation stage never needs
// to re-fetch upstream data.
type AnalysisResult struct {
	Analysis     string          `json:"analysis"`
	Confidence   float64         `json:"confidence"` // always in [0,1]
	Reasoning    string          `json:"reasoning"`
	Explanation  string          `json:"explanation"`
	FallbackUsed bool            `json:"fallback_used"`
	Detailed     *AnalysisDetail `json:"detailed_data,omitempty"`

	Offers []Offer `json:"price_data"`
}
