package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/common"
)

const resultPage = `<html><body>
	<div class="product-card">
		<h2>iPhone 15</h2>
		<span class="price">$%s</span>
	</div>
</body></html>`

func newTestService(serverURL string) *Service {
	cfg := common.ScraperConfig{RequestTimeout: "5s", MaxConcurrency: 3, RatePerSecond: 100}
	s := NewService(cfg, arbor.NewLogger())
	s.searchURL = func(site, model string) string {
		return serverURL + "/" + site
	}
	return s
}

func TestScrapeAggregatesAcrossSites(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/good-a.com":
			fmt.Fprintf(w, resultPage, "899.00")
		case "/good-b.com":
			fmt.Fprintf(w, resultPage, "879.00")
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	s := newTestService(server.URL)

	offers, err := s.Scrape(context.Background(), "iPhone 15", "US",
		[]string{"good-a.com", "good-b.com"}, 5*time.Second)
	require.NoError(t, err)

	assert.Len(t, offers, 2)
	for _, o := range offers {
		assert.Equal(t, "iPhone 15", o.Model)
		assert.Equal(t, "US", o.Country)
		assert.False(t, o.Timestamp.IsZero())
	}
}

func TestScrapeFailedSiteContributesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/good.com":
			fmt.Fprintf(w, resultPage, "899.00")
		case "/broken.com":
			http.Error(w, "blocked", http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	s := newTestService(server.URL)

	offers, err := s.Scrape(context.Background(), "iPhone 15", "US",
		[]string{"good.com", "broken.com"}, 5*time.Second)
	require.NoError(t, err)

	assert.Len(t, offers, 1)
	assert.Equal(t, 899.00, offers[0].Price)
}

func TestScrapeAllSitesFailingYieldsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := newTestService(server.URL)

	offers, err := s.Scrape(context.Background(), "iPhone 15", "US",
		[]string{"a.com", "b.com"}, 5*time.Second)
	require.NoError(t, err)

	assert.Empty(t, offers)
}

func TestScrapeRequiresModel(t *testing.T) {
	s := newTestService("http://127.0.0.1:0")

	_, err := s.Scrape(context.Background(), "", "US", []string{"a.com"}, time.Second)
	assert.Error(t, err)
}

func TestScrapeNoWebsites(t *testing.T) {
	s := newTestService("http://127.0.0.1:0")

	offers, err := s.Scrape(context.Background(), "iPhone 15", "US", nil, time.Second)
	require.NoError(t, err)
	assert.Empty(t, offers)
}

func TestScrapeSetsUserAgent(t *testing.T) {
	var seen string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("User-Agent")
		fmt.Fprintf(w, resultPage, "899.00")
	}))
	defer server.Close()

	s := newTestService(server.URL)

	_, err := s.Scrape(context.Background(), "iPhone 15", "US", []string{"a.com"}, 5*time.Second)
	require.NoError(t, err)

	assert.Equal(t, defaultUserAgent, seen)
}
