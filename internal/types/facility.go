package types

import "time"

// MaxListings caps how many listings a single run extracts, classifies and reports.
const MaxListings = 3

// Defaults for fields that could not be resolved from the markup.
const (
	DefaultBusinessName  = "Unknown Business"
	DefaultStreetAddress = "Address not available"
)

// DateLayout is the ISO date layout used for last_update_date.
const DateLayout = "2006-01-02"

// Listing holds the fields extracted from one facility's markup subtree.
type Listing struct {
	Name    string
	Address string
	RawText string // full visible text, the only input to classification
}

// FacilityRecord is one facility in the run's output.
type FacilityRecord struct {
	BusinessName      string   `json:"business_name"`
	LastUpdateDate    string   `json:"last_update_date"`
	StreetAddress     string   `json:"street_address"`
	MaterialsCategory string   `json:"materials_category"`
	MaterialsAccepted []string `json:"materials_accepted"`
}

// NewFacilityRecord assembles a record from a listing and its classification.
func NewFacilityRecord(listing Listing, c Classification, updated time.Time) FacilityRecord {
	name := listing.Name
	if name == "" {
		name = DefaultBusinessName
	}
	address := listing.Address
	if address == "" {
		address = DefaultStreetAddress
	}
	accepted := make([]string, len(c.MaterialsAccepted))
	copy(accepted, c.MaterialsAccepted)

	return FacilityRecord{
		BusinessName:      name,
		LastUpdateDate:    updated.Format(DateLayout),
		StreetAddress:     address,
		MaterialsCategory: string(c.MaterialsCategory),
		MaterialsAccepted: accepted,
	}
}

// ResultSet is the ordered list of records persisted and reported by one run.
type ResultSet []FacilityRecord
