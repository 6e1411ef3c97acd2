package models

// HistoryMetrics are derived statistics over the stored price history
// for one (model, country), recomputed on each query. Rolling windows
// are computed relative to the caller's "now"; pointer fields are nil
// when the backing window is empty. Err distinguishes bad data (all
// records malformed) from no data (Count 0).
type HistoryMetrics struct {
	Count            int      `json:"count"`
	MinPrice         *float64 `json:"min_price"`
	MaxPrice         *float64 `json:"max_price"`
	AveragePrice     *float64 `json:"average_price"`
	Rolling7dAverage *float64 `json:"rolling_7d_average,omitempty"`
	Rolling30dAvg    *float64 `json:"rolling_30d_average,omitempty"`
	Trend            string   `json:"trend"`
	PriceRange       *float64 `json:"price_range,omitempty"`
	Err              string   `json:"error,omitempty"`
}

// Baseline returns the metric value an alert rule compares against,
// or 0 when the requested baseline is unavailable.
func (m *HistoryMetrics) Baseline(comparedTo string) float64 {
	deref := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	switch comparedTo {
	case CompareAverage:
		return deref(m.AveragePrice)
	case CompareLowest:
		return deref(m.MinPrice)
	case CompareHighest:
		return deref(m.MaxPrice)
	case CompareRolling7d:
		return deref(m.Rolling7dAverage)
	case CompareRolling30:
		return deref(m.Rolling30dAvg)
	}
	return 0
}
