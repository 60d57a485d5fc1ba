package domain

import "time"

// DefaultLoanPeriod is how long a borrower keeps a book unless told otherwise.
const DefaultLoanPeriod = 30 * 24 * time.Hour

// LoanStatus tracks whether a lent book came back.
type LoanStatus string

const (
	LoanPending  LoanStatus = "pending"
	LoanReturned LoanStatus = "returned"
)

// Loan records a book lent to a named borrower.
type Loan struct {
	ID           string     `json:"id,omitempty"`
	BookID       string     `json:"bookId" validate:"required"`
	BorrowerName string     `json:"borrowerName" validate:"required,max=120"`
	LoanDate     time.Time  `json:"loanDate" validate:"required"`
	ReturnDate   time.Time  `json:"returnDate" validate:"required,gtfield=LoanDate"`
	Status       LoanStatus `json:"status" validate:"required,oneof=pending returned"`
}

// NewLoan creates a pending loan due DefaultLoanPeriod after loanDate.
func NewLoan(bookID, borrower string, loanDate time.Time) Loan {
	return Loan{
		BookID:       bookID,
		BorrowerName: borrower,
		LoanDate:     loanDate,
		ReturnDate:   loanDate.Add(DefaultLoanPeriod),
		Status:       LoanPending,
	}
}

// Overdue reports whether a pending loan is past its return date.
func (l Loan) Overdue(now time.Time) bool {
	return l.Status == LoanPending && now.After(l.ReturnDate)
}
