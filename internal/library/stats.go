package library

import (
	"slices"
	"time"

	"github.com/shelfmateapp/shelfmate/internal/domain"
	"github.com/shelfmateapp/shelfmate/internal/genre"
)

const topGenreCount = 5

// Stats summarizes a library for the statistics screen.
type Stats struct {
	Total       int                          `json:"total"`
	ByStatus    map[domain.ReadingStatus]int `json:"byStatus"`
	Private     int                          `json:"private"`
	PagesRead   int                          `json:"pagesRead"`
	ActiveLoans int                          `json:"activeLoans"`
	Overdue     int                          `json:"overdue"`
	TopGenres   []GenreCount                 `json:"topGenres"`
}

// GenreCount is one row of the genre ranking.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// ComputeStats counts books per status, pages read and loans. Pages read includes every page of
// finished books plus the current page of books in progress.
func ComputeStats(books []domain.Book, now time.Time, c genre.Collator) Stats {
	st := Stats{
		Total: len(books),
		ByStatus: map[domain.ReadingStatus]int{
			domain.StatusUnread:  0,
			domain.StatusReading: 0,
			domain.StatusRead:    0,
		},
	}

	genres := make(map[string]int)
	for i := range books {
		b := &books[i]
		st.ByStatus[b.Status]++
		genres[b.GenreBucket()]++

		if b.IsPrivate() {
			st.Private++
		}
		switch b.Status {
		case domain.StatusRead:
			st.PagesRead += b.PageCount
		case domain.StatusReading:
			st.PagesRead += b.CurrentPage
		}
		if l := b.LatestLoan(); l != nil && l.Status == domain.LoanPending {
			st.ActiveLoans++
			if l.Overdue(now) {
				st.Overdue++
			}
		}
	}

	st.TopGenres = make([]GenreCount, 0, len(genres))
	for g, n := range genres {
		st.TopGenres = append(st.TopGenres, GenreCount{Genre: g, Count: n})
	}
	slices.SortFunc(st.TopGenres, func(a, b GenreCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return genre.Compare(c, a.Genre, b.Genre)
	})
	if len(st.TopGenres) > topGenreCount {
		st.TopGenres = st.TopGenres[:topGenreCount]
	}
	return st
}
