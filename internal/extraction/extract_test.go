package extraction

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/recycling-locator/internal/types"
)

func TestExtract_LocationResults(t *testing.T) {
	htmlContent := `
	<html><body>
		<div class="location-result">
			<h3 class="location-result__title">Green Depot</h3>
			<div class="location-result__address">1 Main St, Springfield</div>
			<p>Accepts laptops and batteries.</p>
		</div>
		<div class="location-result">
			<h3 class="location-result__title">Blue Bin Center</h3>
			<div class="location-result__address">2 Elm St, Springfield</div>
			<p>Accepts paint.</p>
		</div>
	</body></html>`

	listings, err := Extract(htmlContent)
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "Green Depot", listings[0].Name)
	assert.Equal(t, "1 Main St, Springfield", listings[0].Address)
	assert.Equal(t, "Green Depot 1 Main St, Springfield Accepts laptops and batteries.", listings[0].RawText)
	assert.Equal(t, "Blue Bin Center", listings[1].Name)
}

func TestExtract_CapsAtThree(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 1; i <= 10; i++ {
		sb.WriteString(fmt.Sprintf(`<div class="result"><h2>Site %d</h2></div>`, i))
	}
	sb.WriteString("</body></html>")

	listings, err := Extract(sb.String())
	require.NoError(t, err)
	require.Len(t, listings, types.MaxListings)
	assert.Equal(t, "Site 1", listings[0].Name)
	assert.Equal(t, "Site 3", listings[2].Name)
}

func TestExtract_FirstMatchingListingSelectorWins(t *testing.T) {
	htmlContent := `
	<div class="search-result"><h4>Late Selector</h4></div>
	<div class="listing"><h4>Earlier Selector</h4></div>`

	listings, err := Extract(htmlContent)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Earlier Selector", listings[0].Name)
}

func TestExtract_GenericBlockFallback(t *testing.T) {
	htmlContent := `
	<html><body>
		<section><p>Drop-off for old phones</p></section>
		<div>Second block</div>
		<div>Third block</div>
		<div>Fourth block</div>
	</body></html>`

	extractor := NewExtractor(DefaultSelectors(), zaptest.NewLogger(t))
	listings, err := extractor.Extract(htmlContent)
	require.NoError(t, err)
	require.Len(t, listings, 3)

	assert.Equal(t, "Drop-off for old phones", listings[0].RawText)
	assert.Equal(t, types.DefaultBusinessName, listings[0].Name)
	assert.Equal(t, types.DefaultStreetAddress, listings[0].Address)
	assert.Equal(t, "Third block", listings[2].RawText)
}

func TestExtract_NoBlocksYieldsEmpty(t *testing.T) {
	listings, err := Extract("<html><body><span>nothing here</span></body></html>")
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestExtract_NameCascadeSkipsEmptyMatches(t *testing.T) {
	htmlContent := `
	<div class="result">
		<span class="result-title">   </span>
		<h2>Fallback Heading</h2>
		<span class="address">77 River Rd</span>
	</div>`

	listings, err := Extract(htmlContent)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Fallback Heading", listings[0].Name)
	assert.Equal(t, "77 River Rd", listings[0].Address)
}

func TestExtract_CustomSelectors(t *testing.T) {
	selectors := Selectors{
		Listing: []string{"li.site"},
		Name:    []string{"strong"},
		Address: []string{"em"},
	}
	htmlContent := `<ul><li class="site"><strong>Depot</strong> <em>4 Oak Ave</em></li></ul>`

	listings, err := NewExtractor(selectors, nil).Extract(htmlContent)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, types.Listing{Name: "Depot", Address: "4 Oak Ave", RawText: "Depot 4 Oak Ave"}, listings[0])
}

func TestVisibleText_SkipsScriptsAndCollapsesWhitespace(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
	<div id="x">
		<p>Accepts
		   monitors</p>
		<script>var tracking = "laptop";</script>
		<style>.a{}</style>
		<p>and cables</p>
	</div>`))
	require.NoError(t, err)

	assert.Equal(t, "Accepts monitors and cables", VisibleText(doc.Find("#x")))
}
