package acquisition

import _ "embed"

// syntheticListings is substituted when live acquisition is exhausted. It
// holds three listings covering an electronics retailer, an office-supply
// retailer and a municipal e-waste facility.
//
//go:embed synthetic_listings.html
var syntheticListings string

// SyntheticDocument returns the fixed fallback document.
func SyntheticDocument() Document {
	return Document{HTML: syntheticListings, Source: SourceSynthetic}
}
