// Package schemas validates result documents against the embedded JSON Schema
// before they are written.
package schemas

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/recycling-locator/internal/types"
)

// ResultsSchemaName identifies the embedded results schema in errors.
const ResultsSchemaName = "results.schema.json"

//go:embed results.schema.json
var resultsSchema string

// ResultsSchema returns the raw results schema document.
func ResultsSchema() string {
	return resultsSchema
}

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateResults checks a ResultSet by encoding it and validating the bytes.
func ValidateResults(results types.ResultSet) error {
	if results == nil {
		results = types.ResultSet{}
	}
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return ValidateResultsJSON(data)
}

// ValidateResultsJSON validates an encoded result document.
func ValidateResultsJSON(data []byte) error {
	return validate(ResultsSchemaName, gojsonschema.NewStringLoader(resultsSchema), gojsonschema.NewBytesLoader(data))
}

// ValidateResultsFile validates a result file already on disk.
func ValidateResultsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("JSON file not found: %s", path)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ValidateResultsJSON(data)
}

func validate(schemaName string, schemaLoader, documentLoader gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    schemaName,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
