package sites

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/models"
)

// defaultPerformanceScore is assigned to domains without recorded
// metrics so unknown sites sort behind proven ones but are not dropped.
const defaultPerformanceScore = 0.5

// siteMetrics holds observed scraping performance for a domain.
type siteMetrics struct {
	SuccessRate float64
	DataQuality float64
}

// Selector determines which retail domains to scrape for a given
// model, country, and region, ordered by expected usefulness.
type Selector struct {
	logger arbor.ILogger

	countrySites  map[string][]string
	international []string
	brandSites    map[string][]string
	brandKeywords map[string][]string
	regionStores  map[string]map[string][]string
	performance   map[string]siteMetrics
}

// NewSelector creates a Selector with the built-in retailer knowledge
// base.
func NewSelector(logger arbor.ILogger) *Selector {
	return &Selector{
		logger: logger,
		countrySites: map[string][]string{
			"US": {"amazon.com", "bestbuy.com", "walmart.com", "apple.com", "target.com", "bhphotovideo.com", "samsung.com", "google.com/store"},
			"UK": {"amazon.co.uk", "currys.co.uk", "johnlewis.com", "argos.co.uk", "apple.com/uk", "samsung.com/uk"},
			"CA": {"amazon.ca", "bestbuy.ca", "walmart.ca", "thesource.ca", "apple.com/ca", "samsung.com/ca"},
			"AU": {"amazon.com.au", "jbhifi.com.au", "harveynorman.com.au", "apple.com/au", "samsung.com/au"},
			"IN": {"amazon.in", "flipkart.com", "croma.com", "reliance.in", "apple.com/in", "samsung.com/in"},
		},
		international: []string{"amazon.com", "apple.com", "ebay.com", "samsung.com"},
		brandSites: map[string][]string{
			"apple":     {"apple.com", "store.apple.com"},
			"samsung":   {"samsung.com", "shop.samsung.com"},
			"google":    {"google.com/store", "store.google.com"},
			"microsoft": {"microsoft.com", "surface.com"},
			"dell":      {"dell.com"},
			"lenovo":    {"lenovo.com"},
			"asus":      {"asus.com"},
			"hp":        {"hp.com"},
			"xiaomi":    {"mi.com", "xiaomi.com"},
		},
		brandKeywords: map[string][]string{
			"apple":     {"iphone", "ipad", "macbook", "imac", "apple"},
			"samsung":   {"galaxy", "samsung", "note"},
			"google":    {"pixel", "google"},
			"microsoft": {"surface", "microsoft"},
			"xiaomi":    {"xiaomi", "redmi", "mi"},
			"lenovo":    {"thinkpad", "ideapad", "lenovo"},
			"dell":      {"xps", "inspiron", "dell"},
			"asus":      {"zenbook", "vivobook", "asus", "rog"},
			"hp":        {"spectre", "pavilion", "envy", "hp"},
		},
		regionStores: map[string]map[string][]string{
			"US": {
				"West Coast": {"frys.com", "microcenter.com", "costco.com"},
				"East Coast": {"microcenter.com", "costco.com", "adorama.com"},
				"Midwest":    {"microcenter.com", "costco.com", "cdw.com"},
				"South":      {"costco.com", "officedepot.com", "samsclub.com"},
			},
		},
		performance: map[string]siteMetrics{
			"amazon.com":       {SuccessRate: 0.92, DataQuality: 0.95},
			"bestbuy.com":      {SuccessRate: 0.88, DataQuality: 0.90},
			"walmart.com":      {SuccessRate: 0.85, DataQuality: 0.82},
			"apple.com":        {SuccessRate: 0.95, DataQuality: 0.98},
			"target.com":       {SuccessRate: 0.80, DataQuality: 0.75},
			"bhphotovideo.com": {SuccessRate: 0.90, DataQuality: 0.92},
			"samsung.com":      {SuccessRate: 0.93, DataQuality: 0.94},
			"google.com/store": {SuccessRate: 0.91, DataQuality: 0.93},
		},
	}
}

// Select returns scraping target domains for the request, best first.
// An error is returned only for missing required inputs.
func (s *Selector) Select(req models.PipelineRequest) ([]string, error) {
	if req.Model == "" {
		return nil, fmt.Errorf("site selection requires model information")
	}
	if req.Country == "" {
		return nil, fmt.Errorf("site selection requires country information")
	}

	candidates := s.candidateSites(req)
	ordered := s.orderByPerformance(candidates)
	if req.Preferences != nil {
		ordered = frontLoadPreferred(ordered, req.Preferences.PreferredRetailers)
	}

	if req.MaxSites > 0 && len(ordered) > req.MaxSites {
		ordered = ordered[:req.MaxSites]
	}

	s.logger.Debug().
		Str("model", req.Model).
		Str("country", req.Country).
		Int("sites", len(ordered)).
		Msg("Selected scraping targets")

	return ordered, nil
}

// candidateSites builds the deduplicated union of country, brand, and
// region domains, preserving first-seen order.
func (s *Selector) candidateSites(req models.PipelineRequest) []string {
	base, ok := s.countrySites[req.Country]
	if !ok {
		base = s.international
	}

	seen := make(map[string]bool, len(base))
	candidates := make([]string, 0, len(base))
	add := func(site string) {
		if !seen[site] {
			seen[site] = true
			candidates = append(candidates, site)
		}
	}

	for _, site := range base {
		add(site)
	}

	if brand := s.brandFromModel(req.Model); brand != "" {
		for _, site := range s.brandSites[brand] {
			add(site)
		}
	}

	for _, site := range s.regionRetailers(req.Country, req.Region) {
		add(site)
	}

	return candidates
}

// brandFromModel identifies the manufacturer from keywords in the
// model name. Empty when no brand matches.
func (s *Selector) brandFromModel(model string) string {
	lower := strings.ToLower(model)
	// Fixed iteration order keeps detection deterministic when a model
	// name matches keywords of more than one brand.
	brands := []string{"apple", "samsung", "google", "microsoft", "xiaomi", "lenovo", "dell", "asus", "hp"}
	for _, brand := range brands {
		for _, keyword := range s.brandKeywords[brand] {
			if strings.Contains(lower, keyword) {
				return brand
			}
		}
	}
	return ""
}

func (s *Selector) regionRetailers(country, region string) []string {
	if region == "" {
		return nil
	}
	byRegion, ok := s.regionStores[country]
	if !ok {
		return nil
	}
	return byRegion[region]
}

// orderByPerformance sorts domains by success_rate * data_quality,
// highest first. The sort is stable so unscored domains keep their
// candidate order.
func (s *Selector) orderByPerformance(sites []string) []string {
	ordered := make([]string, len(sites))
	copy(ordered, sites)

	score := func(site string) float64 {
		if m, ok := s.performance[site]; ok {
			return m.SuccessRate * m.DataQuality
		}
		return defaultPerformanceScore
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return score(ordered[i]) > score(ordered[j])
	})
	return ordered
}

// frontLoadPreferred moves the user's preferred retailers to the front
// in their stated order, leaving the rest in performance order.
func frontLoadPreferred(sites []string, preferred []string) []string {
	if len(preferred) == 0 {
		return sites
	}

	inSites := make(map[string]bool, len(sites))
	for _, site := range sites {
		inSites[site] = true
	}

	front := make([]string, 0, len(preferred))
	promoted := make(map[string]bool, len(preferred))
	for _, retailer := range preferred {
		if inSites[retailer] && !promoted[retailer] {
			promoted[retailer] = true
			front = append(front, retailer)
		}
	}
	if len(front) == 0 {
		return sites
	}

	rest := make([]string, 0, len(sites)-len(front))
	for _, site := range sites {
		if !promoted[site] {
			rest = append(rest, site)
		}
	}
	return append(front, rest...)
}
