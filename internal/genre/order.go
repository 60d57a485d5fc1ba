package genre

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collator compares genre names for display order.
type Collator interface {
	CompareString(a, b string) int
}

// NewCollator returns a locale-aware collator for tag. Case and accents are secondary
// differences, so "drama" and "Drama" sort together.
func NewCollator(tag language.Tag) Collator {
	return collate.New(tag, collate.IgnoreCase)
}

// Compare orders a and b with c, falling back to byte order on ties so output is deterministic.
func Compare(c Collator, a, b string) int {
	if r := c.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

// Sort orders names in place with c.
func Sort(c Collator, names []string) {
	slices.SortStableFunc(names, func(a, b string) int { return Compare(c, a, b) })
}

// Merge returns the union of the user's genres and Defaults, deduplicated by slug and sorted.
// The user's spelling wins over the default.
func Merge(c Collator, used []string) []string {
	seen := make(map[string]bool, len(used)+len(Defaults))
	out := make([]string, 0, len(used)+len(Defaults))
	for _, list := range [][]string{used, Defaults} {
		for _, name := range list {
			name = strings.TrimSpace(name)
			slug := Slugify(name)
			if slug == "" || seen[slug] {
				continue
			}
			seen[slug] = true
			out = append(out, name)
		}
	}
	Sort(c, out)
	return out
}
