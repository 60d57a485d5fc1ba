package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBook_GenreBucket(t *testing.T) {
	assert.Equal(t, "Fantasy", (&Book{Genre: "Fantasy"}).GenreBucket())
	assert.Equal(t, "Fantasy", (&Book{Genre: "  Fantasy "}).GenreBucket())
	assert.Equal(t, OtherGenre, (&Book{}).GenreBucket())
	assert.Equal(t, OtherGenre, (&Book{Genre: "   "}).GenreBucket())
}

func TestBook_LatestLoanUsesInsertionOrder(t *testing.T) {
	now := time.Now()
	b := &Book{}
	assert.Nil(t, b.LatestLoan())
	assert.False(t, b.OnLoan())

	b.Loans = []Loan{
		{BorrowerName: "Newer date but first", LoanDate: now, Status: LoanPending},
		{BorrowerName: "Last inserted", LoanDate: now.Add(-48 * time.Hour), Status: LoanReturned},
	}
	assert.Equal(t, "Last inserted", b.LatestLoan().BorrowerName)
	assert.False(t, b.OnLoan())

	b.Loans = append(b.Loans, Loan{BorrowerName: "Sam", Status: LoanPending})
	assert.True(t, b.OnLoan())
}

func TestBook_Progress(t *testing.T) {
	assert.Zero(t, (&Book{Status: StatusUnread, PageCount: 100, CurrentPage: 50}).Progress())
	assert.InDelta(t, 0.5, (&Book{Status: StatusReading, PageCount: 100, CurrentPage: 50}).Progress(), 0.0001)
	assert.InDelta(t, 1.0, (&Book{Status: StatusReading, PageCount: 100, CurrentPage: 500}).Progress(), 0.0001)
	assert.Zero(t, (&Book{Status: StatusReading}).Progress())
}

func TestNewLoan_DefaultWindow(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewLoan("book-1", "Sam", start)

	assert.Equal(t, LoanPending, l.Status)
	assert.Equal(t, time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC), l.ReturnDate)
	assert.False(t, l.Overdue(start.Add(29*24*time.Hour)))
	assert.True(t, l.Overdue(start.Add(31*24*time.Hour)))

	l.Status = LoanReturned
	assert.False(t, l.Overdue(start.Add(31*24*time.Hour)))
}

func TestReadingStatus_Valid(t *testing.T) {
	assert.True(t, StatusReading.Valid())
	assert.False(t, ReadingStatus("abandoned").Valid())
}
