package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// minAltTitleLen is the shortest image-alt text accepted as a title
	// without consulting fallback selectors.
	minAltTitleLen = 15

	// goodTitleLen is the length past which a fallback candidate is
	// accepted immediately.
	goodTitleLen = 20
)

// TitleStrategy names one fallback selector for the title cascade.
type TitleStrategy struct {
	Name     string
	Selector string
}

// TitleFallbacks is the ordered list of selectors consulted when the image
// alt text is missing or too short. Order matters: the first candidate
// longer than goodTitleLen wins.
var TitleFallbacks = []TitleStrategy{
	{Name: "heading-span", Selector: "h2 span"},
	{Name: "heading", Selector: "h2"},
	{Name: "medium-span", Selector: "span.a-size-medium.a-color-base.a-text-normal"},
}

// ChooseTitle selects a title from the image alt text and the ordered
// fallback candidates. The alt text wins outright when it is long enough to
// be a full product description; otherwise the first fallback candidate
// longer than goodTitleLen wins, else the longest non-empty candidate
// (including a short alt). Lengths are counted in runes so accented product
// names are measured the same as ASCII ones. Returns "" when nothing usable
// was found.
func ChooseTitle(alt string, fallbacks []string) string {
	alt = strings.TrimSpace(alt)
	if utf8.RuneCountInString(alt) >= minAltTitleLen {
		return alt
	}

	best := alt
	for _, c := range fallbacks {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if utf8.RuneCountInString(c) > goodTitleLen {
			return c
		}
		if utf8.RuneCountInString(c) > utf8.RuneCountInString(best) {
			best = c
		}
	}

	return best
}

// ParsePrice composes a decimal price from the whole-part and fraction-part
// node texts. Thousands separators and stray punctuation are stripped from
// the whole part; anything non-numeric after cleaning yields nil, never a
// partial value. A missing fraction defaults to "00"; a present but
// non-numeric fraction invalidates the price.
func ParsePrice(whole, fraction string) *float64 {
	clean := strings.TrimSpace(whole)
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.ReplaceAll(clean, ".", "")
	if clean == "" || !isDigits(clean) {
		return nil
	}

	fraction = strings.TrimSpace(fraction)
	if fraction == "" {
		fraction = "00"
	} else if !isDigits(fraction) {
		return nil
	}

	price, err := strconv.ParseFloat(clean+"."+fraction, 64)
	if err != nil || price <= 0 {
		return nil
	}

	return &price
}

// ResolveURL resolves an extracted href against the site base URL. Relative
// paths are prefixed; absolute URLs pass through; empty input yields "".
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "/") {
		return strings.TrimSuffix(base, "/") + href
	}
	return href
}

// ShipsTo reports destination eligibility: the delivery node text must name
// the destination country literally.
func ShipsTo(deliveryText, country string) bool {
	return country != "" && strings.Contains(deliveryText, country)
}

// Keep applies the result filter: an item survives iff its title names the
// tracked brand or a positive price was extracted.
func Keep(title string, price *float64, brandKeyword string) bool {
	if brandKeyword != "" && strings.Contains(title, brandKeyword) {
		return true
	}
	return price != nil && *price > 0
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
