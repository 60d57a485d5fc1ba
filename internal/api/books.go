package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shelfmateapp/shelfmate/internal/domain"
)

// ListBooksWithLoans returns every book owned by userID with its embedded loans.
func (c *Client) ListBooksWithLoans(ctx context.Context, userID string) ([]domain.Book, error) {
	var books []domain.Book
	if err := c.do(ctx, "listBooks", http.MethodGet, "/books/"+url.PathEscape(userID)+"/with-loans", nil, &books); err != nil {
		return nil, err
	}
	if books == nil {
		books = []domain.Book{}
	}
	return books, nil
}

// CreateBook adds a book and returns it as stored.
func (c *Client) CreateBook(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	var out domain.Book
	if err := c.do(ctx, "createBook", http.MethodPost, "/books", book, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateBook replaces a book.
func (c *Client) UpdateBook(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	var out domain.Book
	if err := c.do(ctx, "updateBook", http.MethodPut, "/books/"+url.PathEscape(book.ID), book, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		out = *book
	}
	return &out, nil
}

// DeleteBook removes a book.
func (c *Client) DeleteBook(ctx context.Context, bookID string) error {
	return c.do(ctx, "deleteBook", http.MethodDelete, "/books/"+url.PathEscape(bookID), nil, nil)
}

// ListGenres returns the distinct genre strings used by userID.
func (c *Client) ListGenres(ctx context.Context, userID string) ([]string, error) {
	var genres []string
	if err := c.do(ctx, "listGenres", http.MethodGet, "/books/"+url.PathEscape(userID)+"/genres", nil, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}
