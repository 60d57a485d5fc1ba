package domain

import (
	"strings"
	"time"
)

// OtherGenre is the bucket for books without a genre.
const OtherGenre = "Other"

// ReadingStatus is where the owner is with a book.
type ReadingStatus string

const (
	StatusUnread  ReadingStatus = "unread"
	StatusReading ReadingStatus = "reading"
	StatusRead    ReadingStatus = "read"
)

// Valid checks if the status is known.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusUnread, StatusReading, StatusRead:
		return true
	default:
		return false
	}
}

// BookVisibility is a per-book setting, independent of LibraryVisibility.
type BookVisibility string

const (
	BookPublic  BookVisibility = "public"
	BookPrivate BookVisibility = "private"
)

// Book is a catalogued book with its embedded loan history.
type Book struct {
	ID          string         `json:"id"`
	OwnerID     string         `json:"userId"`
	Title       string         `json:"title" validate:"required,max=300"`
	Author      string         `json:"author" validate:"max=200"`
	Publisher   string         `json:"publisher,omitempty" validate:"max=200"`
	Description string         `json:"description,omitempty"`
	CoverURL    string         `json:"coverUrl,omitempty" validate:"omitempty,url"`
	PageCount   int            `json:"pageCount" validate:"gte=0"`
	Genre       string         `json:"genre,omitempty" validate:"max=80"`
	Status      ReadingStatus  `json:"status" validate:"required,oneof=unread reading read"`
	CurrentPage int            `json:"currentPage" validate:"gte=0"`
	Visibility  BookVisibility `json:"visibility" validate:"required,oneof=public private"`
	Loans       []Loan         `json:"loans,omitempty"`
	CreatedAt   time.Time      `json:"createdAt,omitzero"`
}

// GenreBucket returns the display bucket the book falls into.
func (b *Book) GenreBucket() string {
	if g := strings.TrimSpace(b.Genre); g != "" {
		return g
	}
	return OtherGenre
}

// IsReading reports whether the owner is currently reading the book.
func (b *Book) IsReading() bool {
	return b.Status == StatusReading
}

// IsPrivate reports whether the book is hidden from other users.
func (b *Book) IsPrivate() bool {
	return b.Visibility == BookPrivate
}

// LatestLoan returns the most recently inserted loan, or nil.
func (b *Book) LatestLoan() *Loan {
	if len(b.Loans) == 0 {
		return nil
	}
	return &b.Loans[len(b.Loans)-1]
}

// OnLoan reports whether the latest loan is still pending.
func (b *Book) OnLoan() bool {
	l := b.LatestLoan()
	return l != nil && l.Status == LoanPending
}

// Progress returns the fraction read, meaningful only while reading.
func (b *Book) Progress() float64 {
	if !b.IsReading() || b.PageCount <= 0 {
		return 0
	}
	p := float64(b.CurrentPage) / float64(b.PageCount)
	return min(max(p, 0), 1)
}
