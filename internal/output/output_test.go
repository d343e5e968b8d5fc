package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/recycling-locator/internal/types"
)

func sampleResults() types.ResultSet {
	return types.ResultSet{
		{
			BusinessName:      "Café Électronique & Co",
			LastUpdateDate:    "2026-10-14",
			StreetAddress:     "1 Rue de la Paix",
			MaterialsCategory: string(types.CategoryPaintChemicals),
			MaterialsAccepted: []string{"paint", "solvents"},
		},
	}
}

func TestEncode(t *testing.T) {
	data, err := Encode(sampleResults())
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "[\n  {\n    \"business_name\""))
	assert.Contains(t, text, "Café Électronique & Co")
	assert.Contains(t, text, `"Paint & Chemicals"`)
	assert.NotContains(t, text, `\u0026`)
}

func TestEncode_Empty(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteResults_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.json")

	require.NoError(t, WriteResults(path, sampleResults()))

	got, err := ReadResults(path)
	require.NoError(t, err)
	assert.Equal(t, sampleResults(), got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should not remain")
}

func TestWriteResults_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, WriteResults(path, types.ResultSet{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteResults_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := WriteResults(filepath.Join(blocker, "results.json"), sampleResults())
	require.Error(t, err)

	var outErr *Error
	assert.ErrorAs(t, err, &outErr)
}

func TestReadResults_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadResults(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = ReadResults(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse results")
}
