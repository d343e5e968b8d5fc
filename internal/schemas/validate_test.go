package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/recycling-locator/internal/types"
)

func validRecord() types.FacilityRecord {
	return types.FacilityRecord{
		BusinessName:      "Best Buy Electronics Recycling Center",
		LastUpdateDate:    "2026-10-14",
		StreetAddress:     "1234 Technology Drive, New York, NY 10001",
		MaterialsCategory: string(types.CategoryElectronics),
		MaterialsAccepted: []string{"computers", "laptops"},
	}
}

func TestResultsSchema_ValidJSON(t *testing.T) {
	var v map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(ResultsSchema()), &v))
	assert.Equal(t, "array", v["type"])
}

func TestValidateResults_Valid(t *testing.T) {
	tests := []struct {
		name    string
		results types.ResultSet
	}{
		{name: "nil", results: nil},
		{name: "empty", results: types.ResultSet{}},
		{name: "one record", results: types.ResultSet{validRecord()}},
		{name: "three records", results: types.ResultSet{validRecord(), validRecord(), validRecord()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, ValidateResults(tt.results))
		})
	}
}

func TestValidateResults_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *types.FacilityRecord)
		field  string
	}{
		{name: "unknown category", mutate: func(r *types.FacilityRecord) { r.MaterialsCategory = "Furniture" }, field: "materials_category"},
		{name: "empty materials", mutate: func(r *types.FacilityRecord) { r.MaterialsAccepted = []string{} }, field: "materials_accepted"},
		{name: "null materials", mutate: func(r *types.FacilityRecord) { r.MaterialsAccepted = nil }, field: "materials_accepted"},
		{name: "bad date", mutate: func(r *types.FacilityRecord) { r.LastUpdateDate = "10/14/2026" }, field: "last_update_date"},
		{name: "empty name", mutate: func(r *types.FacilityRecord) { r.BusinessName = "" }, field: "business_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)

			err := ValidateResults(types.ResultSet{r})
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.NotEmpty(t, validationErr.Errors)
			assert.Contains(t, validationErr.Errors[0].Field, tt.field)
		})
	}
}

func TestValidateResults_TooManyRecords(t *testing.T) {
	results := types.ResultSet{validRecord(), validRecord(), validRecord(), validRecord()}
	err := ValidateResults(results)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
}

func TestValidateResultsJSON_ExtraField(t *testing.T) {
	doc := `[{"business_name":"A","last_update_date":"2026-10-14","street_address":"B",` +
		`"materials_category":"Batteries","materials_accepted":["AA"],"phone":"555"}]`
	err := ValidateResultsJSON([]byte(doc))
	assert.Error(t, err)
}

func TestValidateResultsJSON_Malformed(t *testing.T) {
	err := ValidateResultsJSON([]byte(`[{"business_name":`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateResultsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")

	data, err := json.Marshal(types.ResultSet{validRecord()})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	assert.NoError(t, ValidateResultsFile(path))

	err = ValidateResultsFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{
		{Field: "0.business_name", Message: "String length must be greater than or equal to 1"},
		{Field: "0.materials_accepted", Message: "Array must have at least 1 items"},
	}}

	msg := err.Error()
	assert.Contains(t, msg, "validation failed")
	assert.Contains(t, msg, "1. 0.business_name")
	assert.Contains(t, msg, "2. 0.materials_accepted")
}
