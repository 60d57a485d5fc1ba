package library

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/shelfmateapp/shelfmate/internal/domain"
	"github.com/shelfmateapp/shelfmate/internal/events"
	"github.com/shelfmateapp/shelfmate/internal/genre"
	"github.com/shelfmateapp/shelfmate/internal/search"
)

// ErrSuperseded is returned by Refresh when a newer refresh started before this one finished.
// Its result was discarded.
var ErrSuperseded = errors.New("library refresh superseded")

// Fetcher loads a user's books with embedded loans.
type Fetcher interface {
	ListBooksWithLoans(ctx context.Context, userID string) ([]domain.Book, error)
}

// Subscriber is the part of the event bus the screen listens on.
type Subscriber interface {
	Subscribe(kinds ...events.Type) (*events.Subscription, error)
	Unsubscribe(sub *events.Subscription)
}

// ScreenDeps are the collaborators of a Screen.
type ScreenDeps struct {
	Fetcher  Fetcher
	Collator genre.Collator
	Index    *search.BookIndex
	Emitter  events.Emitter
	Logger   *slog.Logger

	// HidePrivate drops private books from the snapshot when viewing someone else's library.
	HidePrivate bool
}

// State is a snapshot of what the library view shows.
type State struct {
	UserID     string       `json:"userId"`
	Sections   []Section    `json:"sections"`
	Filter     FilterMode   `json:"filter"`
	Available  []FilterMode `json:"availableFilters"`
	Loading    bool         `json:"loading"`
	Err        error        `json:"-"`
	Generation uint64       `json:"generation"`
}

// Screen holds one user's library: the fetched snapshot, the active filter and the derived sections.
type Screen struct {
	userID   string
	fetcher  Fetcher
	collator genre.Collator
	index    *search.BookIndex
	emitter  events.Emitter
	logger   *slog.Logger
	hidePriv bool

	mu        sync.Mutex
	gen       uint64
	cancel    context.CancelFunc
	loading   bool
	original  []domain.Book
	sections  []Section
	filter    FilterMode
	available []FilterMode
	err       error
}

// NewScreen creates a screen for userID. Nothing is fetched until Refresh.
func NewScreen(userID string, deps ScreenDeps) *Screen {
	s := &Screen{
		userID:    userID,
		fetcher:   deps.Fetcher,
		collator:  deps.Collator,
		index:     deps.Index,
		emitter:   deps.Emitter,
		logger:    deps.Logger,
		hidePriv:  deps.HidePrivate,
		filter:    FilterAll,
		available: []FilterMode{FilterAll},
		sections:  []Section{},
	}
	if s.emitter == nil {
		s.emitter = events.NoopEmitter{}
	}
	return s
}

// UserID returns whose library this is.
func (s *Screen) UserID() string {
	return s.userID
}

// Refresh fetches the library and recomputes sections. A refresh started while another is in
// flight cancels the older one; a response belonging to an older refresh never overwrites state.
// On failure the state holds the error and no sections.
func (s *Screen) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.loading = true
	s.mu.Unlock()
	defer cancel()

	books, err := s.fetcher.ListBooksWithLoans(fetchCtx, s.userID)
	if err == nil && s.hidePriv {
		books = slices.DeleteFunc(books, func(b domain.Book) bool { return b.IsPrivate() })
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug("discarding stale library response", "user_id", s.userID, "generation", gen)
		return ErrSuperseded
	}
	s.cancel = nil
	s.loading = false

	loaded := events.LibraryLoadedData{UserID: s.userID, Generation: gen}
	if err != nil {
		s.err = err
		s.original = nil
		s.sections = []Section{}
		s.available = []FilterMode{FilterAll}
		s.filter = FilterAll
		loaded.Err = err.Error()
		s.mu.Unlock()

		s.logger.Error("failed to load library", "user_id", s.userID, "error", err)
		s.emitter.Emit(events.New(events.TypeLibraryLoaded, loaded))
		return err
	}

	s.err = nil
	s.original = books
	s.available = AvailableFilters(books)
	if !slices.Contains(s.available, s.filter) {
		s.logger.Debug("active filter no longer available, falling back", "filter", s.filter)
		s.filter = FilterAll
	}
	s.sections = ApplyFilter(Categorize(books, s.collator), s.filter, s.collator)
	loaded.Books = len(books)
	// Indexed under s.mu so a newer snapshot's index is never replaced by an older one.
	if s.index != nil {
		if err := s.index.Replace(books); err != nil {
			s.logger.Warn("failed to index library", "user_id", s.userID, "error", err)
		}
	}
	s.mu.Unlock()

	s.emitter.Emit(events.New(events.TypeLibraryLoaded, loaded))
	return nil
}

// SetFilter switches the active filter without refetching. Unavailable modes are ignored and
// reported as false.
func (s *Screen) SetFilter(mode FilterMode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.available, mode) {
		return false
	}
	s.filter = mode
	s.sections = ApplyFilter(Categorize(s.original, s.collator), mode, s.collator)
	return true
}

// State returns a copy of the current view state.
func (s *Screen) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		UserID:     s.userID,
		Sections:   slices.Clone(s.sections),
		Filter:     s.filter,
		Available:  slices.Clone(s.available),
		Loading:    s.loading,
		Err:        s.err,
		Generation: s.gen,
	}
}

// Books returns the unfiltered snapshot.
func (s *Screen) Books() []domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.original)
}

// Book looks up a book in the snapshot.
func (s *Screen) Book(id string) (domain.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.original {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Book{}, false
}

// Search runs a full-text query over the snapshot and returns matching books in relevance order.
func (s *Screen) Search(ctx context.Context, query string) ([]domain.Book, error) {
	if s.index == nil {
		return nil, errors.New("search index not configured")
	}
	res, err := s.index.Search(ctx, search.Params{Query: query})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	byID := make(map[string]domain.Book, len(s.original))
	for _, b := range s.original {
		byID[b.ID] = b
	}
	s.mu.Unlock()

	out := make([]domain.Book, 0, len(res.Hits))
	for _, h := range res.Hits {
		if b, ok := byID[h.ID]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

// Watch refreshes whenever connections or loans change, until ctx is done.
func (s *Screen) Watch(ctx context.Context, bus Subscriber) error {
	sub, err := bus.Subscribe(events.TypeGraphMutated)
	if err != nil {
		return err
	}
	defer bus.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-sub.C:
			if !ok {
				return nil
			}
			if err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
				s.logger.Warn("refresh after graph mutation failed", "user_id", s.userID, "error", err)
			}
		}
	}
}
