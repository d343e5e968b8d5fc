// Package output persists result sets to disk.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/recycling-locator/internal/types"
)

// DefaultPath is the result file written when no path is configured.
const DefaultPath = "earth911_results.json"

// Error wraps a failure to persist or load a result file.
type Error struct {
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("output %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("output %s: %s", e.Path, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Encode renders results as a pretty-printed JSON array. Non-ASCII text and
// characters such as & are written literally.
func Encode(results types.ResultSet) ([]byte, error) {
	if results == nil {
		results = types.ResultSet{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteResults writes results to path. The file is written to a temporary
// sibling and renamed, so a reader never sees a partial document.
func WriteResults(path string, results types.ResultSet) error {
	if path == "" {
		path = DefaultPath
	}

	data, err := Encode(results)
	if err != nil {
		return &Error{Path: path, Message: "failed to encode results", Cause: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &Error{Path: path, Message: "failed to create output directory", Cause: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &Error{Path: path, Message: "failed to create temporary file", Cause: err}
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &Error{Path: path, Message: "failed to write results", Cause: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return &Error{Path: path, Message: "failed to sync results", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &Error{Path: path, Message: "failed to close temporary file", Cause: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return &Error{Path: path, Message: "failed to set file mode", Cause: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &Error{Path: path, Message: "failed to move results into place", Cause: err}
	}
	return nil
}

// ReadResults loads a result file written by WriteResults.
func ReadResults(path string) (types.ResultSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Message: "failed to read results", Cause: err}
	}

	var results types.ResultSet
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, &Error{Path: path, Message: "failed to parse results", Cause: err}
	}
	return results, nil
}
