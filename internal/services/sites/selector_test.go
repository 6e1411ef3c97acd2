package sites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/models"
)

func TestSelectRequiresModelAndCountry(t *testing.T) {
	s := NewSelector(arbor.NewLogger())

	_, err := s.Select(models.PipelineRequest{Country: "US"})
	assert.ErrorContains(t, err, "model")

	_, err = s.Select(models.PipelineRequest{Model: "iPhone 15"})
	assert.ErrorContains(t, err, "country")
}

func TestSelectCountrySites(t *testing.T) {
	s := NewSelector(arbor.NewLogger())

	selected, err := s.Select(models.PipelineRequest{Model: "Generic Phone", Country: "UK"})
	require.NoError(t, err)

	assert.Contains(t, selected, "amazon.co.uk")
	assert.Contains(t, selected, "currys.co.uk")
	assert.NotContains(t, selected, "amazon.com")
}

func TestSelectInternationalFallback(t *testing.T) {
	s := NewSelector(arbor.NewLogger())

	selected, err := s.Select(models.PipelineRequest{Model: "Generic Phone", Country: "BR"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"amazon.com", "apple.com", "ebay.com", "samsung.com"}, selected)
	// apple.com carries the highest performance score and must lead.
	assert.Equal(t, "apple.com", selected[0])
}

func TestSelectAddsBrandSites(t *testing.T) {
	s := NewSelector(arbor.NewLogger())

	selected, err := s.Select(models.PipelineRequest{Model: "iPhone 15 Pro", Country: "US"})
	require.NoError(t, err)

	assert.Contains(t, selected, "store.apple.com")

	selected, err = s.Select(models.PipelineRequest{Model: "Galaxy S24", Country: "US"})
	require.NoError(t, err)

	assert.Contains(t, selected, "shop.samsung.com")
}

func TestSelectAddsRegionRetailers(t *testing.T) {
	s := NewSelector(arbor.NewLogger())

	selected, err := s.Select(models.PipelineRequest{Model: "Pixel 9", Country: "US", Region: "West Coast"})
	require.NoError(t, err)

	assert.Contains(t, selected, "microcenter.com")
	assert.Contains(t, selected, "frys.com")

	selected, err = s.Select(models.PipelineRequest{Model: "Pixel 9", Country: "US", Region: "Outback"})
	require.NoError(t, err)

	assert.NotContains(t, selected, "microcenter.com")
}

func TestSelectOrdersByPerformance(t *testing.T) {
	s := NewSelector(arbor.NewLogger())

	selected, err := s.Select(models.PipelineRequest{Model: "Generic Phone", Country: "US"})
	require.NoError(t, err)
	require.NotEmpty(t, selected)

	// apple.com (0.95*0.98) outscores every other US domain.
	assert.Equal(t, "apple.com", selected[0])

	indexOf := func(site string) int {
		for i, v := range selected {
			if v == site {
				return i
			}
		}
		return -1
	}
	assert.Less(t, indexOf("amazon.com"), indexOf("target.com"))
}

func TestSelectPreferredRetailersLeadInOrder(t *testing.T) {
	s := NewSelector(arbor.NewLogger())

	selected, err := s.Select(models.PipelineRequest{
		Model:   "Generic Phone",
		Country: "US",
		Preferences: &models.UserPreferences{
			PreferredRetailers: []string{"target.com", "walmart.com", "notalisted.com"},
		},
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(selected), 2)

	assert.Equal(t, "target.com", selected[0])
	assert.Equal(t, "walmart.com", selected[1])
	assert.NotContains(t, selected, "notalisted.com")
}

func TestSelectMaxSitesTruncates(t *testing.T) {
	s := NewSelector(arbor.NewLogger())

	selected, err := s.Select(models.PipelineRequest{Model: "Generic Phone", Country: "US", MaxSites: 3})
	require.NoError(t, err)

	assert.Len(t, selected, 3)
	assert.Equal(t, "apple.com", selected[0])
}

func TestBrandDetection(t *testing.T) {
	s := NewSelector(arbor.NewLogger())

	tests := []struct {
		model string
		brand string
	}{
		{"iPhone 15 Pro Max", "apple"},
		{"Samsung Galaxy Note", "samsung"},
		{"Google Pixel 9", "google"},
		{"Surface Pro 11", "microsoft"},
		{"Redmi 13C", "xiaomi"},
		{"ThinkPad X1", "lenovo"},
		{"XPS 13", "dell"},
		{"ROG Phone 8", "asus"},
		{"Spectre x360", "hp"},
		{"Fairphone 5", ""},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.brand, s.brandFromModel(tt.model))
		})
	}
}
