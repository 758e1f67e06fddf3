package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/karlmoz79/busqueda-laptop/internal/models"
)

const (
	resultItemSelector   = "div[data-component-type='s-search-result']"
	itemImageSelector    = "img.s-image"
	itemLinkSelector     = "h2 a"
	itemAltLinkSelector  = "a.a-link-normal"
	priceWholeSelector   = "span.a-price-whole"
	priceFractionSel     = "span.a-price-fraction"
	deliveryInfoSelector = "[data-cy='delivery-recipe']"
)

// SearchParser re-applies the live field-extraction heuristics to a saved
// search results document. It exists so diagnostic HTML snapshots can be
// replayed offline, and so the heuristics have a browser-free test surface.
type SearchParser struct {
	baseURL      string
	brandKeyword string
	country      string
	maxItems     int
}

func NewSearchParser(baseURL, brandKeyword, country string, maxItems int) *SearchParser {
	return &SearchParser{
		baseURL:      baseURL,
		brandKeyword: brandKeyword,
		country:      country,
		maxItems:     maxItems,
	}
}

// Parse extracts product records from a rendered search results page. Items
// missing required fields or failing the keep filter are dropped silently;
// at most maxItems items are considered.
func (p *SearchParser) Parse(html string) ([]models.ProductRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	records := make([]models.ProductRecord, 0, p.maxItems)

	doc.Find(resultItemSelector).EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= p.maxItems {
			return false
		}
		if rec := p.parseItem(item); rec != nil {
			records = append(records, *rec)
		}
		return true
	})

	return records, nil
}

func (p *SearchParser) parseItem(item *goquery.Selection) *models.ProductRecord {
	alt, _ := item.Find(itemImageSelector).First().Attr("alt")

	fallbacks := make([]string, 0, len(TitleFallbacks))
	for _, st := range TitleFallbacks {
		fallbacks = append(fallbacks, item.Find(st.Selector).First().Text())
	}

	title := ChooseTitle(alt, fallbacks)
	if title == "" {
		return nil
	}

	href, ok := item.Find(itemLinkSelector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		href, _ = item.Find(itemAltLinkSelector).First().Attr("href")
	}
	url := ResolveURL(p.baseURL, href)
	if url == "" {
		return nil
	}

	whole := item.Find(priceWholeSelector).First().Text()
	fraction := item.Find(priceFractionSel).First().Text()
	price := ParsePrice(whole, fraction)

	ships := ShipsTo(item.Find(deliveryInfoSelector).First().Text(), p.country)

	if !Keep(title, price, p.brandKeyword) {
		return nil
	}

	return &models.ProductRecord{
		Title:           title,
		PriceUSD:        price,
		URL:             url,
		ShipsToColombia: ships,
	}
}
