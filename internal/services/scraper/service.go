package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/smartninja/priceagent/internal/common"
	"github.com/smartninja/priceagent/internal/models"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Service fetches retailer result pages concurrently and extracts
// offers. One failed domain never fails the whole scrape; it just
// contributes zero offers.
type Service struct {
	client         *http.Client
	parser         *Parser
	limiter        *rate.Limiter
	logger         arbor.ILogger
	userAgent      string
	maxConcurrency int

	// searchURL is overridable so tests can target a local server.
	searchURL func(site, model string) string
}

// NewService creates a scraping service from configuration.
func NewService(cfg common.ScraperConfig, logger arbor.ILogger) *Service {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 2
	}
	concurrency := cfg.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 3
	}

	return &Service{
		client:         &http.Client{Timeout: cfg.ScrapeTimeout()},
		parser:         NewParser(),
		limiter:        rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:         logger,
		userAgent:      userAgent,
		maxConcurrency: concurrency,
		searchURL:      SearchURL,
	}
}

// Scrape fans out over the websites and aggregates every extracted
// offer. The error return is reserved for invalid input; scraping
// failures are logged and absorbed.
func (s *Service) Scrape(ctx context.Context, model, country string, websites []string, timeout time.Duration) ([]models.Offer, error) {
	if model == "" {
		return nil, fmt.Errorf("scrape requires a model")
	}
	if len(websites) == 0 {
		return nil, nil
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		offers []models.Offer
		wg     sync.WaitGroup
	)
	sem := make(chan struct{}, s.maxConcurrency)

	for _, site := range websites {
		wg.Add(1)
		go func(site string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			found := s.scrapeSite(ctx, model, country, site)
			if len(found) == 0 {
				return
			}
			mu.Lock()
			offers = append(offers, found...)
			mu.Unlock()
		}(site)
	}
	wg.Wait()

	s.logger.Info().
		Str("model", model).
		Str("country", country).
		Int("websites", len(websites)).
		Int("offers", len(offers)).
		Msg("Scrape completed")

	return offers, nil
}

// scrapeSite fetches and parses one domain. All failures resolve to an
// empty result.
func (s *Service) scrapeSite(ctx context.Context, model, country, site string) []models.Offer {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil
	}

	target := s.searchURL(site, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("site", site).Msg("Failed to build scrape request")
		return nil
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn().Err(err).Str("site", site).Msg("Scrape request failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn().Int("status", resp.StatusCode).Str("site", site).Msg("Scrape request rejected")
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		s.logger.Warn().Err(err).Str("site", site).Msg("Failed to parse result page")
		return nil
	}

	found := s.parser.Parse(doc, model, country, StoreName(site), target)
	now := time.Now()
	for i := range found {
		if found[i].Timestamp.IsZero() {
			found[i].Timestamp = now
		}
	}

	s.logger.Debug().Str("site", site).Int("offers", len(found)).Msg("Scraped site")
	return found
}

// SearchURL builds the search results URL for a retailer domain.
func SearchURL(site, model string) string {
	encoded := url.QueryEscape(model)
	lower := strings.ToLower(site)

	switch {
	case strings.Contains(lower, "amazon"):
		return fmt.Sprintf("https://www.%s/s?k=%s", site, encoded)
	case strings.Contains(lower, "bestbuy"):
		return fmt.Sprintf("https://www.%s/site/searchpage.jsp?st=%s", site, encoded)
	case strings.Contains(lower, "walmart"):
		return fmt.Sprintf("https://www.%s/search?q=%s", site, encoded)
	case strings.Contains(lower, "google.com/store"):
		return fmt.Sprintf("https://store.google.com/search?q=%s", encoded)
	default:
		return fmt.Sprintf("https://www.%s/search?q=%s", site, encoded)
	}
}

// StoreName derives a display name from a retailer domain, e.g.
// "bestbuy.com" becomes "Bestbuy".
func StoreName(site string) string {
	name := site
	if idx := strings.IndexByte(name, '/'); idx >= 0 {
		name = name[:idx]
	}
	name = strings.TrimPrefix(name, "www.")
	name = strings.TrimPrefix(name, "store.")
	name = strings.TrimPrefix(name, "shop.")
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		name = name[:idx]
	}
	if name == "" {
		return site
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
