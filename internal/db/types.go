package db

import (
	"time"

	"github.com/google/uuid"
)

// Run is one archived search invocation.
type Run struct {
	ID         uuid.UUID `json:"id"`
	Material   string    `json:"material"`
	PostalCode string    `json:"postal_code"`
	Source     string    `json:"source"`
	Attempts   int       `json:"attempts"`
	Fallbacks  int       `json:"fallbacks"`
	CreatedAt  time.Time `json:"created_at"`
}

// Facility is an archived result record belonging to a run.
type Facility struct {
	RunID             uuid.UUID `json:"run_id"`
	Position          int       `json:"position"`
	BusinessName      string    `json:"business_name"`
	LastUpdateDate    string    `json:"last_update_date"`
	StreetAddress     string    `json:"street_address"`
	MaterialsCategory string    `json:"materials_category"`
	MaterialsAccepted []string  `json:"materials_accepted"`
}
