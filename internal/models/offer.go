package models

import (
	"time"
)

// Offer is one observed price quote for a product at a store, in a
// country/region, at a point in time. Offers are created by the scraper,
// consumed immutably by the analysis and recommendation stages, and
// never mutated after creation.
type Offer struct {
	Model     string    `json:"model"`
	Price     float64   `json:"price" validate:"gte=0"`
	Currency  string    `json:"currency"`
	Store     string    `json:"store"`
	Country   string    `json:"country"`
	Region    string    `json:"region,omitempty"`
	URL       string    `json:"url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	InStock   *bool     `json:"in_stock,omitempty"` // nil = unknown (treated as available)
	Rating    float64   `json:"rating,omitempty"`   // 1-5, 0 = absent
}

// HasPrice reports whether the offer carries a usable price.
// Offers without a price are excluded from statistical aggregation.
func (o *Offer) HasPrice() bool {
	return o.Price > 0
}

// Available reports stock status, treating unknown as available.
func (o *Offer) Available() bool {
	return o.InStock == nil || *o.InStock
}

// OutOfStock reports an explicit out-of-stock marker.
func (o *Offer) OutOfStock() bool {
	return o.InStock != nil && !*o.InStock
}

// Bool returns a pointer to b, for building Offer literals.
func Bool(b bool) *bool {
	return &b
}
