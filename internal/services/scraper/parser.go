package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/smartninja/priceagent/internal/models"
)

// maxProductsPerPage bounds how many product tiles are extracted from
// one result page.
const maxProductsPerPage = 5

var (
	prefixedPriceRe  = regexp.MustCompile(`[\$£€]\s*([0-9,\.]+)`)
	postfixedPriceRe = regexp.MustCompile(`([0-9,\.]+)\s*[\$£€]`)
	ratingOutOfRe    = regexp.MustCompile(`([0-9.]+)\s*out of\s*([0-9.]+)`)
	numberRe         = regexp.MustCompile(`([0-9.]+)`)
)

// domainSelectors are the CSS selectors tried, in order, for one
// retailer family. The generic entry is the fallback for unknown
// domains.
type domainSelectors struct {
	containers []string
	title      []string
	price      []string
}

var selectorTable = map[string]domainSelectors{
	"amazon": {
		containers: []string{`.s-result-item[data-asin]`, `.sg-col-inner .a-section`, `.s-result-item`, `[data-component-type="s-search-result"]`},
		title:      []string{`h2 a span`, `.a-text-normal`, `h2`},
		price:      []string{`.a-price .a-offscreen`, `.a-price`, `.a-color-price`},
	},
	"bestbuy": {
		containers: []string{`.sku-item`, `.list-item`},
	},
	"walmart": {
		containers: []string{`[data-item-id]`, `.search-result-gridview-item`},
	},
	"target": {
		containers: []string{`.styles__StyledCol-sc-fw90uk-0`, `.Col-favj32-0`},
	},
}

var genericSelectors = domainSelectors{
	containers: []string{`.product-container`, `.product-card`, `.item`, `article`},
	title:      []string{`.product-title`, `h2`, `.item-title`, `h3`, `h4`},
	price:      []string{`.price`, `.product-price`, `[data-price]`, `[data-test="product-price"]`},
}

// Parser extracts product offers from retailer result pages.
type Parser struct{}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts offers from the HTML of one result page. A page with
// no recognizable products yields an empty slice, not an error.
func (p *Parser) Parse(doc *goquery.Document, model, country, store, pageURL string) []models.Offer {
	sel := selectorsFor(pageURL)

	containers := firstMatch(doc, sel.containers)
	if containers == nil {
		containers = firstMatch(doc, genericSelectors.containers)
	}
	if containers == nil {
		return nil
	}

	var offers []models.Offer
	containers.EachWithBreak(func(i int, product *goquery.Selection) bool {
		if len(offers) >= maxProductsPerPage {
			return false
		}

		priceText := p.priceText(product, sel)
		price, ok := ParsePrice(priceText)
		if !ok {
			return true
		}

		offer := models.Offer{
			Model:    p.title(product, sel, model),
			Price:    price,
			Currency: CurrencyOf(priceText),
			Store:    store,
			Country:  country,
			URL:      p.productURL(product, pageURL),
			Rating:   p.rating(product),
			InStock:  p.stockStatus(product),
		}
		offers = append(offers, offer)
		return true
	})

	return offers
}

func selectorsFor(pageURL string) domainSelectors {
	lower := strings.ToLower(pageURL)
	for key, sel := range selectorTable {
		if strings.Contains(lower, key) {
			merged := sel
			if len(merged.title) == 0 {
				merged.title = genericSelectors.title
			}
			if len(merged.price) == 0 {
				merged.price = genericSelectors.price
			}
			return merged
		}
	}
	return genericSelectors
}

// firstMatch returns the first selector's non-empty match set, nil
// when none match.
func firstMatch(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, s := range selectors {
		if found := doc.Find(s); found.Length() > 0 {
			return found
		}
	}
	return nil
}

func (p *Parser) title(product *goquery.Selection, sel domainSelectors, fallback string) string {
	for _, s := range sel.title {
		if elem := product.Find(s).First(); elem.Length() > 0 {
			if text := strings.TrimSpace(elem.Text()); text != "" {
				return text
			}
		}
	}
	return fallback
}

func (p *Parser) priceText(product *goquery.Selection, sel domainSelectors) string {
	for _, s := range sel.price {
		elem := product.Find(s).First()
		if elem.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(elem.Text()); text != "" {
			return text
		}
		if attr, ok := elem.Attr("data-price"); ok && attr != "" {
			return attr
		}
	}

	// Last resort: any descendant text carrying a currency symbol.
	var found string
	product.Find("*").EachWithBreak(func(i int, elem *goquery.Selection) bool {
		text := strings.TrimSpace(elem.Text())
		if strings.ContainsAny(text, "$€£¥") {
			found = text
			return false
		}
		return true
	})
	return found
}

func (p *Parser) productURL(product *goquery.Selection, pageURL string) string {
	link := product.Find("a").First()
	href, ok := link.Attr("href")
	if !ok || href == "" {
		return pageURL
	}
	if strings.HasPrefix(href, "/") {
		return siteOrigin(pageURL) + href
	}
	return href
}

// siteOrigin reduces a URL to scheme://host for resolving relative
// product links.
func siteOrigin(pageURL string) string {
	rest := pageURL
	scheme := ""
	if idx := strings.Index(rest, "://"); idx >= 0 {
		scheme = rest[:idx+3]
		rest = rest[idx+3:]
	}
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		rest = rest[:idx]
	}
	return scheme + rest
}

func (p *Parser) rating(product *goquery.Selection) float64 {
	elem := product.Find(".rating, .stars, [data-star-rating]").First()
	if elem.Length() == 0 {
		return 0
	}

	if attr, ok := elem.Attr("data-star-rating"); ok {
		if v, err := strconv.ParseFloat(attr, 64); err == nil {
			return v
		}
	}

	text := strings.TrimSpace(elem.Text())
	if m := ratingOutOfRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v
		}
	}
	if m := numberRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v
		}
	}
	return 0
}

// stockStatus reads availability text. nil means the page did not say.
func (p *Parser) stockStatus(product *goquery.Selection) *bool {
	text := strings.ToLower(product.Text())
	switch {
	case strings.Contains(text, "out of stock"), strings.Contains(text, "sold out"), strings.Contains(text, "unavailable"):
		return models.Bool(false)
	case strings.Contains(text, "in stock"), strings.Contains(text, "add to cart"), strings.Contains(text, "add to basket"):
		return models.Bool(true)
	default:
		return nil
	}
}

// ParsePrice extracts a numeric price from text with a currency
// marker, tolerating both 1,234.56 and 1.234,56 group formats.
func ParsePrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}

	raw := ""
	if m := prefixedPriceRe.FindStringSubmatch(text); m != nil {
		raw = m[1]
	} else if m := postfixedPriceRe.FindStringSubmatch(text); m != nil {
		raw = m[1]
	} else {
		return 0, false
	}

	price, err := strconv.ParseFloat(normalizeNumber(raw), 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}

// normalizeNumber rewrites grouped digits to Go float syntax. A comma
// followed by exactly two digits is a decimal mark, otherwise a
// thousands separator.
func normalizeNumber(raw string) string {
	hasComma := strings.Contains(raw, ",")
	hasDot := strings.Contains(raw, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(raw, ",") > strings.LastIndex(raw, ".") {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.ReplaceAll(raw, ",", ".")
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case hasComma:
		parts := strings.Split(raw, ",")
		if len(parts) == 2 && len(parts[1]) == 2 {
			raw = parts[0] + "." + parts[1]
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	}
	return raw
}

// CurrencyOf maps the currency marker in price text to an ISO code,
// defaulting to USD.
func CurrencyOf(text string) string {
	switch {
	case strings.Contains(text, "€"):
		return "EUR"
	case strings.Contains(text, "£"):
		return "GBP"
	case strings.Contains(text, "¥"):
		return "JPY"
	case strings.Contains(text, "R$"):
		return "BRL"
	default:
		return "USD"
	}
}
