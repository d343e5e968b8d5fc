package classification

import (
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/jonathan/recycling-locator/internal/types"
)

// keywordGroup maps any of its trigger words to a fixed set of materials.
type keywordGroup struct {
	keywords  []string
	materials []string
}

var defaultGroups = []keywordGroup{
	{keywords: []string{"computer", "laptop", "desktop", "pc"}, materials: []string{"computers", "laptops", "desktops"}},
	{keywords: []string{"phone", "smartphone", "mobile", "cell"}, materials: []string{"smartphones", "cell phones"}},
	{keywords: []string{"tablet", "ipad"}, materials: []string{"tablets"}},
	{keywords: []string{"monitor", "screen", "display"}, materials: []string{"monitors"}},
	{keywords: []string{"printer", "fax"}, materials: []string{"printers", "fax machines"}},
	{keywords: []string{"battery", "batteries"}, materials: []string{"batteries"}},
	{keywords: []string{"tv", "television"}, materials: []string{"televisions"}},
	{keywords: []string{"cable", "cord", "wire"}, materials: []string{"cables"}},
}

// defaultMaterials is used when no keyword matches.
var defaultMaterials = []string{"electronics", "small electronics"}

// KeywordClassifier is the deterministic fallback. Keywords match as
// substrings of the lower-cased text, and the category is always Electronics.
type KeywordClassifier struct {
	groups []keywordGroup

	mu       sync.Mutex // Matcher.Match mutates internal state
	matcher  *ahocorasick.Matcher
	groupFor []int // keyword index -> group index
}

// NewKeywordClassifier builds the matcher over the built-in keyword groups.
func NewKeywordClassifier() *KeywordClassifier {
	k := &KeywordClassifier{groups: defaultGroups}

	var keywords []string
	for gi, g := range k.groups {
		for _, kw := range g.keywords {
			keywords = append(keywords, kw)
			k.groupFor = append(k.groupFor, gi)
		}
	}
	k.matcher = ahocorasick.NewStringMatcher(keywords)
	return k
}

// Classify never fails; the same text always yields the same result.
func (k *KeywordClassifier) Classify(rawText string) types.Classification {
	text := strings.ToLower(rawText)

	k.mu.Lock()
	hits := k.matcher.Match([]byte(text))
	k.mu.Unlock()

	matched := make([]bool, len(k.groups))
	for _, idx := range hits {
		if idx >= 0 && idx < len(k.groupFor) {
			matched[k.groupFor[idx]] = true
		}
	}

	var materials []string
	for gi, g := range k.groups {
		if matched[gi] {
			materials = append(materials, g.materials...)
		}
	}
	materials = types.DedupeMaterials(materials)
	if len(materials) == 0 {
		materials = append([]string(nil), defaultMaterials...)
	}

	return types.Classification{
		MaterialsCategory: types.CategoryElectronics,
		MaterialsAccepted: materials,
	}
}
