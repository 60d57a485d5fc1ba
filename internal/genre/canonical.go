package genre

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// aliases maps slugs of common variants to the display name stored on books.
var aliases = map[string]string{
	"sci-fi":               "Science Fiction",
	"scifi":                "Science Fiction",
	"sf":                   "Science Fiction",
	"science-fiction":      "Science Fiction",
	"ya":                   "Young Adult",
	"teen":                 "Young Adult",
	"young-adult":          "Young Adult",
	"self-help":            "Self-Help",
	"selfhelp":             "Self-Help",
	"personal-development": "Self-Help",
	"litrpg":               "LitRPG",
	"lit-rpg":              "LitRPG",
	"gamelit":              "LitRPG",
	"non-fiction":          "Non-Fiction",
	"nonfiction":           "Non-Fiction",
	"biography":            "Biography & Memoir",
	"memoir":               "Biography & Memoir",
	"biographies-memoirs":  "Biography & Memoir",
	"mystery-thriller":     "Mystery & Thriller",
	"suspense":             "Thriller",
	"historical":           "Historical Fiction",
	"scary":                "Horror",
	"pnr":                  "Paranormal Romance",
	"romantic-fantasy":     "Romantasy",
	"comics":               "Graphic Novels",
	"graphic-novel":        "Graphic Novels",
	"manga":                "Graphic Novels",
}

// Defaults are offered when a user has not used any genre yet.
var Defaults = []string{
	"Biography & Memoir",
	"Classics",
	"Drama",
	"Fantasy",
	"Graphic Novels",
	"Historical Fiction",
	"Horror",
	"Mystery & Thriller",
	"Non-Fiction",
	"Poetry",
	"Romance",
	"Science Fiction",
	"Self-Help",
	"Young Adult",
}

// Canonical cleans a user-entered genre. Known variants map to one display name; anything else
// keeps its wording with whitespace collapsed and, when entered all lower case, title-cased.
// The empty string stays empty so the book lands in the "Other" bucket.
func Canonical(raw string, tag language.Tag) string {
	clean := strings.Join(strings.Fields(norm.NFC.String(raw)), " ")
	if clean == "" {
		return ""
	}
	if name, ok := aliases[Slugify(clean)]; ok {
		return name
	}
	if clean == strings.ToLower(clean) {
		return cases.Title(tag).String(clean)
	}
	return clean
}

// Same reports whether two labels fall in the same bucket after canonicalization.
func Same(a, b string) bool {
	return Slugify(Canonical(a, language.Und)) == Slugify(Canonical(b, language.Und))
}
