package library

import (
	"fmt"

	"github.com/shelfmateapp/shelfmate/internal/domain"
	"github.com/shelfmateapp/shelfmate/internal/genre"
)

// FilterMode selects which books the library view shows.
type FilterMode string

const (
	FilterAll               FilterMode = "all"
	FilterPrivateOnly       FilterMode = "privateOnly"
	FilterLoanedPendingOnly FilterMode = "loanedPendingOnly"
)

// ParseFilterMode accepts the mode names and their CLI spellings.
func ParseFilterMode(s string) (FilterMode, error) {
	switch s {
	case "", "all":
		return FilterAll, nil
	case "privateOnly", "private":
		return FilterPrivateOnly, nil
	case "loanedPendingOnly", "loaned":
		return FilterLoanedPendingOnly, nil
	default:
		return "", fmt.Errorf("unknown filter %q (must be all, private, or loaned)", s)
	}
}

// Matches reports whether b passes the filter.
func (m FilterMode) Matches(b *domain.Book) bool {
	switch m {
	case FilterPrivateOnly:
		return b.IsPrivate()
	case FilterLoanedPendingOnly:
		return b.OnLoan()
	default:
		return true
	}
}

// ApplyFilter keeps only the books matching mode, drops sections left empty, and re-sorts with the
// Reading section first. The input sections are not modified.
func ApplyFilter(sections []Section, mode FilterMode, c genre.Collator) []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		kept := make([]domain.Book, 0, len(s.Books))
		for i := range s.Books {
			if mode.Matches(&s.Books[i]) {
				kept = append(kept, s.Books[i])
			}
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, Section{Title: s.Title, Kind: s.Kind, Books: kept})
	}
	sortSections(out, c)
	return out
}

// AvailableFilters returns the modes worth offering for original, the unfiltered snapshot.
// FilterAll is always available; the others need at least one qualifying book.
func AvailableFilters(original []domain.Book) []FilterMode {
	modes := []FilterMode{FilterAll}
	for _, m := range []FilterMode{FilterPrivateOnly, FilterLoanedPendingOnly} {
		for i := range original {
			if m.Matches(&original[i]) {
				modes = append(modes, m)
				break
			}
		}
	}
	return modes
}
