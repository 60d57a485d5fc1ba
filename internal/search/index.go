package search

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/shelfmateapp/shelfmate/internal/domain"
)

// BookIndex wraps an in-memory Bleve index over one library snapshot.
//
// All methods are safe for concurrent use. Replace swaps the whole index under the write lock.
type BookIndex struct {
	index  bleve.Index
	logger *slog.Logger
	mu     sync.RWMutex
}

// NewBookIndex creates an empty in-memory index.
func NewBookIndex(logger *slog.Logger) (*BookIndex, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &BookIndex{index: index, logger: logger}, nil
}

// Close releases the index.
func (s *BookIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Replace rebuilds the index from books. The previous contents are discarded.
func (s *BookIndex) Replace(books []domain.Book) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	batch := fresh.NewBatch()
	for i := range books {
		doc := BookToDocument(&books[i])
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			_ = fresh.Close()
			return fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
	}
	if err := fresh.Batch(batch); err != nil {
		_ = fresh.Close()
		return fmt.Errorf("commit batch: %w", err)
	}

	s.mu.Lock()
	old := s.index
	s.index = fresh
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("failed to close previous search index", "error", err)
	}
	s.logger.Debug("rebuilt search index", "documents", len(books))
	return nil
}

// DocumentCount returns the number of indexed books.
func (s *BookIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}
