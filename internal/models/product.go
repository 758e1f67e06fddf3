package models

// ProductRecord is one listing extracted from an Amazon search results page.
// PriceUSD is nil when no usable price markup was found; zero is never used
// as a sentinel for "absent".
type ProductRecord struct {
	Title           string   `json:"title"`
	PriceUSD        *float64 `json:"price_usd"`
	URL             string   `json:"url"`
	ShipsToColombia bool     `json:"ships_to_colombia"`
}

// HasPrice reports whether a positive price was extracted.
func (p ProductRecord) HasPrice() bool {
	return p.PriceUSD != nil && *p.PriceUSD > 0
}

// Price returns the extracted price, or 0 if absent.
func (p ProductRecord) Price() float64 {
	if p.PriceUSD == nil {
		return 0
	}
	return *p.PriceUSD
}

// PriceOf wraps a price value for ProductRecord construction.
func PriceOf(v float64) *float64 {
	return &v
}
