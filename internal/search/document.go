// Package search provides full-text search over a library snapshot using Bleve.
// The index lives in memory and is rebuilt whenever the snapshot changes.
package search

import (
	"github.com/shelfmateapp/shelfmate/internal/domain"
	"github.com/shelfmateapp/shelfmate/internal/genre"
)

// BookDocument is the indexed shape of a book.
type BookDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	Description string `json:"description,omitempty"`
	Genre       string `json:"genre,omitempty"`
	GenreSlug   string `json:"genre_slug,omitempty"`
	Status      string `json:"status"`
	Visibility  string `json:"visibility"`
	PageCount   int    `json:"page_count"`
}

// BookToDocument converts a domain book to its indexed form.
func BookToDocument(b *domain.Book) *BookDocument {
	return &BookDocument{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		Description: b.Description,
		Genre:       b.GenreBucket(),
		GenreSlug:   genre.Slugify(b.GenreBucket()),
		Status:      string(b.Status),
		Visibility:  string(b.Visibility),
		PageCount:   b.PageCount,
	}
}

// ToMap keeps field names aligned with the mapping.
func (d *BookDocument) ToMap() map[string]any {
	return map[string]any{
		"id":          d.ID,
		"title":       d.Title,
		"author":      d.Author,
		"publisher":   d.Publisher,
		"description": d.Description,
		"genre":       d.Genre,
		"genre_slug":  d.GenreSlug,
		"status":      d.Status,
		"visibility":  d.Visibility,
		"page_count":  float64(d.PageCount),
	}
}
