package models

// ScoredOffer is the selected best offer plus the value score that
// ranked it. The value score is an unbounded ranking number combining
// price, rating, stock, and reputation; it is not a probability.
type ScoredOffer struct {
	Price      float64 `json:"price"`
	Store      string  `json:"store"`
	URL        string  `json:"url,omitempty"`
	InStock    bool    `json:"in_stock"`
	Rating     float64 `json:"rating,omitempty"`
	ValueScore float64 `json:"value_score"`
}

// Recommendation is the output of the recommendation stage. BestOffer
// is always drawn from the input offer set; a nil BestOffer with Err
// set signals the valid "no data" terminal case.
type Recommendation struct {
	BestOffer      *ScoredOffer           `json:"best_offer,omitempty"`
	Recommendation string                 `json:"recommendation"`
	Confidence     float64                `json:"confidence"` // bounded [0,1], distinct from value score
	Reasoning      string                 `json:"reasoning,omitempty"`
	Explanation    string                 `json:"explanation,omitempty"`
	Detailed       map[string]interface{} `json:"detailed_data,omitempty"`
	Err            string                 `json:"error,omitempty"`
}
