package models

import "time"

// PriceEntry is one persisted price history row. Entries are append
// only: every stored entry gets a freshly generated ID and is never
// updated in place.
type PriceEntry struct {
	ID        string    `json:"id" badgerhold:"key"`
	Model     string    `json:"model" badgerhold:"index"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	Source    string    `json:"source"`
	Country   string    `json:"country"`
	URL       string    `json:"url,omitempty"`
	Timestamp time.Time `json:"timestamp" badgerhold:"index"`
}

// EntryFromOffer builds a history row from a scraped offer. The caller
// assigns the ID at store time.
func EntryFromOffer(o Offer) PriceEntry {
	ts := o.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	currency := o.Currency
	if currency == "" {
		currency = "USD"
	}
	country := o.Country
	if country == "" {
		country = "global"
	}
	source := o.Store
	if source == "" {
		source = "unknown"
	}
	return PriceEntry{
		Model:     o.Model,
		Price:     o.Price,
		Currency:  currency,
		Source:    source,
		Country:   country,
		URL:       o.URL,
		Timestamp: ts,
	}
}
