// Package library turns a user's book list into display sections and keeps the library screen's state.
package library

import (
	"slices"

	"github.com/shelfmateapp/shelfmate/internal/domain"
	"github.com/shelfmateapp/shelfmate/internal/genre"
)

// ReadingTitle is the title of the section holding books currently being read.
const ReadingTitle = "Reading"

// SectionKind tells the Reading section apart from a genre bucket that happens to share its title.
type SectionKind string

const (
	KindReading SectionKind = "reading"
	KindGenre   SectionKind = "genre"
)

// Section is a titled group of books.
type Section struct {
	Title string        `json:"title"`
	Kind  SectionKind   `json:"kind"`
	Books []domain.Book `json:"books"`
}

// Categorize partitions books into a Reading section, in input order, followed by genre buckets
// ordered by c. Books without a genre go to the "Other" bucket. The Reading section is omitted
// when empty. The input is not modified.
func Categorize(books []domain.Book, c genre.Collator) []Section {
	var reading []domain.Book
	buckets := make(map[string][]domain.Book)
	var order []string

	for _, b := range books {
		if b.IsReading() {
			reading = append(reading, b)
			continue
		}
		key := b.GenreBucket()
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], b)
	}

	sections := make([]Section, 0, len(order)+1)
	if len(reading) > 0 {
		sections = append(sections, Section{Title: ReadingTitle, Kind: KindReading, Books: reading})
	}
	for _, key := range order {
		sections = append(sections, Section{Title: key, Kind: KindGenre, Books: buckets[key]})
	}

	sortSections(sections, c)
	return sections
}

// sortSections puts the Reading section first and orders the rest by title.
func sortSections(sections []Section, c genre.Collator) {
	slices.SortStableFunc(sections, func(a, b Section) int {
		switch {
		case a.Kind == KindReading && b.Kind != KindReading:
			return -1
		case b.Kind == KindReading && a.Kind != KindReading:
			return 1
		}
		return genre.Compare(c, a.Title, b.Title)
	})
}

// Flatten returns every book in section order.
func Flatten(sections []Section) []domain.Book {
	var n int
	for _, s := range sections {
		n += len(s.Books)
	}
	out := make([]domain.Book, 0, n)
	for _, s := range sections {
		out = append(out, s.Books...)
	}
	return out
}
