package api

import (
	"context"
	"net/http"

	"github.com/shelfmateapp/shelfmate/internal/domain"
)

// CreateLoan records a loan. The backend embeds it into the book's loan list.
func (c *Client) CreateLoan(ctx context.Context, loan domain.Loan) (*domain.Loan, error) {
	var out domain.Loan
	if err := c.do(ctx, "createLoan", http.MethodPost, "/loans", loan, &out); err != nil {
		return nil, err
	}
	if out.BookID == "" {
		out = loan
	}
	return &out, nil
}
