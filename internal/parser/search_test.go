package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `
<html><body>
  <div class="s-main-slot">
    <div data-component-type="s-search-result">
      <img class="s-image" alt="Lenovo ThinkBook 16 G6, 16GB/512GB" src="a.jpg">
      <h2><a href="/dp/B0AAA111"><span>Lenovo ThinkBook 16 G6</span></a></h2>
      <span class="a-price">
        <span class="a-price-whole">749</span>
        <span class="a-price-fraction">99</span>
      </span>
      <div data-cy="delivery-recipe">Delivers to Colombia</div>
    </div>
    <div data-component-type="s-search-result">
      <img class="s-image" alt="" src="b.jpg">
      <h2><a href="/dp/B0BBB222"><span></span></a></h2>
    </div>
    <div data-component-type="s-search-result">
      <img class="s-image" alt="USB-C laptop charger 65W replacement" src="c.jpg">
      <h2><a href="/dp/B0CCC333"><span>USB-C laptop charger 65W replacement</span></a></h2>
      <div data-cy="delivery-recipe">Delivers to United States</div>
    </div>
    <div data-component-type="s-search-result">
      <img class="s-image" alt="Generic 16 inch laptop stand holder" src="d.jpg">
      <a class="a-link-normal" href="/dp/B0DDD444"></a>
      <h2><span>Generic 16 inch laptop stand holder</span></h2>
      <span class="a-price">
        <span class="a-price-whole">29</span>
        <span class="a-price-fraction">50</span>
      </span>
    </div>
  </div>
</body></html>`

func newTestParser(maxItems int) *SearchParser {
	return NewSearchParser("https://www.amazon.com", "Lenovo", "Colombia", maxItems)
}

func TestParseResultsPage(t *testing.T) {
	records, err := newTestParser(15).Parse(resultsPage)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Lenovo ThinkBook 16 G6, 16GB/512GB", first.Title)
	require.NotNil(t, first.PriceUSD)
	assert.InDelta(t, 749.99, *first.PriceUSD, 0.001)
	assert.Equal(t, "https://www.amazon.com/dp/B0AAA111", first.URL)
	assert.True(t, first.ShipsToColombia)

	// The charger has no brand match and no price, the stand survives on
	// price alone via its fallback link.
	second := records[1]
	assert.Equal(t, "Generic 16 inch laptop stand holder", second.Title)
	require.NotNil(t, second.PriceUSD)
	assert.InDelta(t, 29.50, *second.PriceUSD, 0.001)
	assert.Equal(t, "https://www.amazon.com/dp/B0DDD444", second.URL)
	assert.False(t, second.ShipsToColombia)
}

func TestParseItemWithoutTitleDiscarded(t *testing.T) {
	page := `
	<div data-component-type="s-search-result">
	  <img class="s-image" alt="" src="b.jpg">
	  <h2><a href="/dp/B0BBB222"><span></span></a></h2>
	</div>`

	records, err := newTestParser(15).Parse(page)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseRespectsMaxItems(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, `
		<div data-component-type="s-search-result">
		  <img class="s-image" alt="Lenovo ThinkBook 16 item %02d" src="x.jpg">
		  <h2><a href="/dp/B0ITEM%02d"><span></span></a></h2>
		</div>`, i, i)
	}

	records, err := newTestParser(15).Parse(b.String())
	require.NoError(t, err)
	assert.Len(t, records, 15)
}

func TestParseEmptyDocument(t *testing.T) {
	records, err := newTestParser(15).Parse("<html><body></body></html>")
	require.NoError(t, err)
	assert.Empty(t, records)
}
