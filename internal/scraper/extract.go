package scraper

import (
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/karlmoz79/busqueda-laptop/internal/models"
	"github.com/karlmoz79/busqueda-laptop/internal/parser"
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

// extractItem pulls one product record out of a search result card. A nil
// record with a nil error means the item was examined and discarded; a non-nil
// error means a locator call failed and the item should be skipped.
func (s *Scraper) extractItem(item playwright.Locator) (*models.ProductRecord, error) {
	alt, err := s.attributeOf(item, itemImageSelector, "alt")
	if err != nil {
		return nil, fmt.Errorf("failed to read image alt: %w", err)
	}

	fallbacks := make([]string, 0, len(parser.TitleFallbacks))
	for _, st := range parser.TitleFallbacks {
		text, err := s.textOf(item, st.Selector)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s title: %w", st.Name, err)
		}
		fallbacks = append(fallbacks, text)
	}

	title := parser.ChooseTitle(alt, fallbacks)
	if title == "" {
		return nil, nil
	}

	href, err := s.attributeOf(item, itemLinkSelector, "href")
	if err != nil {
		return nil, fmt.Errorf("failed to read product link: %w", err)
	}
	if href == "" {
		href, err = s.attributeOf(item, itemAltLinkSelector, "href")
		if err != nil {
			return nil, fmt.Errorf("failed to read fallback link: %w", err)
		}
	}
	url := parser.ResolveURL(s.cfg.Scraper.BaseURL, href)
	if url == "" {
		return nil, nil
	}

	whole, err := s.textOf(item, priceWholeSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to read price: %w", err)
	}
	fraction, err := s.textOf(item, priceFractionSel)
	if err != nil {
		return nil, fmt.Errorf("failed to read price fraction: %w", err)
	}
	price := parser.ParsePrice(whole, fraction)

	delivery, err := s.textOf(item, deliveryInfoSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to read delivery info: %w", err)
	}
	ships := parser.ShipsTo(delivery, s.cfg.Scraper.DestinationCountry)

	if !parser.Keep(title, price, s.cfg.Scraper.BrandKeyword) {
		return nil, nil
	}

	return &models.ProductRecord{
		Title:           title,
		PriceUSD:        price,
		URL:             url,
		ShipsToColombia: ships,
	}, nil
}

// textOf returns the inner text of the first match of selector under item, or
// "" when no node matches.
func (s *Scraper) textOf(item playwright.Locator, selector string) (string, error) {
	loc := item.Locator(selector).First()
	count, err := loc.Count()
	if err != nil {
		return "", err
	}
	if count == 0 {
		return "", nil
	}
	return loc.InnerText()
}

// attributeOf returns the named attribute of the first match of selector
// under item, or "" when no node matches or the attribute is absent.
func (s *Scraper) attributeOf(item playwright.Locator, selector, name string) (string, error) {
	loc := item.Locator(selector).First()
	count, err := loc.Count()
	if err != nil {
		return "", err
	}
	if count == 0 {
		return "", nil
	}
	value, err := loc.GetAttribute(name)
	if err != nil {
		return "", err
	}
	return value, nil
}
