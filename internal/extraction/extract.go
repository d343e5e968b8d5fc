package extraction

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/jonathan/recycling-locator/internal/types"
)

// GenericBlockSelector is used when no listing selector matches.
const GenericBlockSelector = "div, section, article, li"

// Selectors holds the ordered candidate lists. Earlier entries win.
type Selectors struct {
	Listing []string
	Name    []string
	Address []string
}

// DefaultSelectors returns the selector lists for the facility search results.
func DefaultSelectors() Selectors {
	return Selectors{
		Listing: []string{
			".location-result",
			".result",
			".listing",
			".search-result",
		},
		Name: []string{
			".location-result__title",
			".result-title",
			".listing-title",
			"h1", "h2", "h3", "h4",
			".title",
			".name",
		},
		Address: []string{
			".location-result__address",
			".result-address",
			".listing-address",
			".address",
		},
	}
}

// Extractor turns a results document into at most MaxListings listings.
type Extractor struct {
	selectors Selectors
	max       int
	logger    *zap.Logger
}

// NewExtractor creates an Extractor with the given selectors.
func NewExtractor(selectors Selectors, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{selectors: selectors, max: types.MaxListings, logger: logger}
}

// Extract parses htmlContent with the default selectors.
func Extract(htmlContent string) ([]types.Listing, error) {
	return NewExtractor(DefaultSelectors(), nil).Extract(htmlContent)
}

// Extract returns the listings found in htmlContent, in document order.
func (e *Extractor) Extract(htmlContent string) ([]types.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &Error{Message: "failed to parse HTML", Cause: err}
	}

	items := e.findListings(doc)
	if items.Length() > e.max {
		items = items.Slice(0, e.max)
	}

	listings := make([]types.Listing, 0, items.Length())
	items.Each(func(i int, item *goquery.Selection) {
		listing := types.Listing{
			Name:    firstText(item, e.selectors.Name, types.DefaultBusinessName),
			Address: firstText(item, e.selectors.Address, types.DefaultStreetAddress),
			RawText: VisibleText(item),
		}
		e.logger.Debug("extracted listing", zap.Int("index", i+1), zap.String("business_name", listing.Name))
		listings = append(listings, listing)
	})

	return listings, nil
}

// findListings returns the matches of the first listing selector that finds
// anything, or the leading generic block elements.
func (e *Extractor) findListings(doc *goquery.Document) *goquery.Selection {
	for _, selector := range e.selectors.Listing {
		if found := doc.Find(selector); found.Length() > 0 {
			e.logger.Info("found listings", zap.String("selector", selector), zap.Int("count", found.Length()))
			return found
		}
	}

	e.logger.Warn("no listing selector matched, falling back to generic blocks")
	return doc.Find(GenericBlockSelector)
}

// firstText returns the text of the first selector whose first match inside
// item has non-empty text.
func firstText(item *goquery.Selection, selectors []string, fallback string) string {
	for _, selector := range selectors {
		if text := VisibleText(item.Find(selector).First()); text != "" {
			return text
		}
	}
	return fallback
}

// VisibleText joins every non-blank text node under sel with single spaces,
// collapsing whitespace inside each node. Script and style contents are skipped.
func VisibleText(sel *goquery.Selection) string {
	var parts []string
	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
			*parts = append(*parts, text)
		}
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" || n.Data == "noscript" {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
