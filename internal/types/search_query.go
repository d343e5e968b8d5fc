// Package types provides type definitions for structured data used throughout the recycling-locator system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// SearchQuery is the immutable input to one pipeline run.
type SearchQuery struct {
	Material   string `json:"material" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=12"`
}

// NewSearchQuery trims both fields and validates the result.
func NewSearchQuery(material, postalCode string) (SearchQuery, error) {
	q := SearchQuery{
		Material:   strings.TrimSpace(material),
		PostalCode: strings.TrimSpace(postalCode),
	}
	if err := q.Validate(); err != nil {
		return SearchQuery{}, err
	}
	return q, nil
}

// Validate validates the SearchQuery using the validator.
func (q SearchQuery) Validate() error {
	validate := validator.New()
	return validate.Struct(q)
}
