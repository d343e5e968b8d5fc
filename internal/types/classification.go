package types

import "strings"

// MaterialsCategory is one of the six top-level classifications of accepted materials.
type MaterialsCategory string

// The fixed materials taxonomy.
const (
	CategoryElectronics    MaterialsCategory = "Electronics"
	CategoryBatteries      MaterialsCategory = "Batteries"
	CategoryPaintChemicals MaterialsCategory = "Paint & Chemicals"
	CategoryMedicalSharps  MaterialsCategory = "Medical Sharps"
	CategoryTextiles       MaterialsCategory = "Textiles/Clothing"
	CategoryOtherImportant MaterialsCategory = "Other Important Materials"
)

// Categories returns the taxonomy in its canonical order.
func Categories() []MaterialsCategory {
	return []MaterialsCategory{
		CategoryElectronics,
		CategoryBatteries,
		CategoryPaintChemicals,
		CategoryMedicalSharps,
		CategoryTextiles,
		CategoryOtherImportant,
	}
}

// ParseMaterialsCategory maps s onto the taxonomy, ignoring case and surrounding whitespace.
func ParseMaterialsCategory(s string) (MaterialsCategory, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Classification is the result of classifying a listing's free text.
type Classification struct {
	MaterialsCategory MaterialsCategory `json:"materials_category"`
	MaterialsAccepted []string          `json:"materials_accepted"`
}

// Valid reports whether the category is in the taxonomy and at least one material is accepted.
func (c Classification) Valid() bool {
	if _, ok := ParseMaterialsCategory(string(c.MaterialsCategory)); !ok {
		return false
	}
	return len(c.MaterialsAccepted) > 0
}

// DedupeMaterials trims each entry, drops empties and removes duplicates,
// keeping the first occurrence of each value.
func DedupeMaterials(materials []string) []string {
	seen := make(map[string]bool, len(materials))
	out := make([]string, 0, len(materials))
	for _, m := range materials {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
