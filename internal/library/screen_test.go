package library

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmateapp/shelfmate/internal/api/apitest"
	"github.com/shelfmateapp/shelfmate/internal/domain"
	domainerrors "github.com/shelfmateapp/shelfmate/internal/errors"
	"github.com/shelfmateapp/shelfmate/internal/events"
	"github.com/shelfmateapp/shelfmate/internal/logger"
	"github.com/shelfmateapp/shelfmate/internal/search"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Emit(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) loaded() []events.LibraryLoadedData {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.LibraryLoadedData
	for _, e := range r.events {
		if d, ok := e.Data.(events.LibraryLoadedData); ok {
			out = append(out, d)
		}
	}
	return out
}

// gatedFetcher returns a queued response per call, each released by its own gate.
type gatedFetcher struct {
	mu    sync.Mutex
	calls int
	gates []chan []domain.Book
}

func newGatedFetcher(n int) *gatedFetcher {
	f := &gatedFetcher{}
	for range n {
		f.gates = append(f.gates, make(chan []domain.Book, 1))
	}
	return f
}

func (f *gatedFetcher) ListBooksWithLoans(ctx context.Context, _ string) ([]domain.Book, error) {
	f.mu.Lock()
	gate := f.gates[f.calls]
	f.calls++
	f.mu.Unlock()

	select {
	case books := <-gate:
		return books, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *gatedFetcher) started() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newIndex(t *testing.T) *search.BookIndex {
	t.Helper()
	idx, err := search.NewBookIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func seededScreen(t *testing.T) (*Screen, *apitest.Backend, string, *recorder) {
	t.Helper()
	backend := apitest.New(t)
	owner := backend.AddUser(domain.UserProfile{LocalAuthID: "uid-ada", DisplayName: "Ada Lovelace"})
	for _, b := range filterFixture() {
		b.OwnerID = owner.BackendID
		backend.AddBook(b)
	}

	rec := &recorder{}
	screen := NewScreen(owner.BackendID, ScreenDeps{
		Fetcher:  backend.Client(t),
		Collator: collator,
		Index:    newIndex(t),
		Emitter:  rec,
		Logger:   logger.Discard().Logger,
	})
	return screen, backend, owner.BackendID, rec
}

func TestScreen_RefreshBuildsSections(t *testing.T) {
	screen, _, owner, rec := seededScreen(t)

	require.NoError(t, screen.Refresh(context.Background()))

	st := screen.State()
	assert.NoError(t, st.Err)
	assert.False(t, st.Loading)
	assert.Equal(t, FilterAll, st.Filter)
	assert.Equal(t, []string{"Reading", "Action", "Drama", "Fantasy"}, titles(st.Sections))
	assert.Equal(t, []FilterMode{FilterAll, FilterPrivateOnly, FilterLoanedPendingOnly}, st.Available)
	assert.Len(t, screen.Books(), 4)

	loaded := rec.loaded()
	require.Len(t, loaded, 1)
	assert.Equal(t, owner, loaded[0].UserID)
	assert.Equal(t, 4, loaded[0].Books)
}

func TestScreen_FailureYieldsEmptySections(t *testing.T) {
	screen, backend, _, rec := seededScreen(t)
	ctx := context.Background()
	require.NoError(t, screen.Refresh(ctx))
	require.True(t, screen.SetFilter(FilterPrivateOnly))

	backend.Fail("GET /books/", http.StatusInternalServerError)
	err := screen.Refresh(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrBackend))

	st := screen.State()
	assert.Error(t, st.Err)
	assert.NotNil(t, st.Sections)
	assert.Empty(t, st.Sections)
	assert.Equal(t, FilterAll, st.Filter)
	assert.Equal(t, []FilterMode{FilterAll}, st.Available)
	assert.Empty(t, screen.Books())

	loaded := rec.loaded()
	assert.NotEmpty(t, loaded[len(loaded)-1].Err)

	// No automatic retry.
	assert.Equal(t, 2, backend.Calls("GET /books/"))
}

func TestScreen_SetFilter(t *testing.T) {
	screen, _, _, _ := seededScreen(t)
	require.NoError(t, screen.Refresh(context.Background()))

	require.True(t, screen.SetFilter(FilterLoanedPendingOnly))
	st := screen.State()
	lent := Flatten(st.Sections)
	assert.Equal(t, []string{"lent"}, bookIDs(lent))
	require.Len(t, lent, 1)
	assert.True(t, lent[0].OnLoan())

	require.True(t, screen.SetFilter(FilterAll))
	assert.Len(t, Flatten(screen.State().Sections), 4)
}

func TestScreen_SetFilterIgnoresUnavailable(t *testing.T) {
	fetcher := newGatedFetcher(1)
	fetcher.gates[0] <- []domain.Book{book("a", domain.StatusUnread, "")}
	screen := NewScreen("u", ScreenDeps{Fetcher: fetcher, Collator: collator, Logger: logger.Discard().Logger})
	require.NoError(t, screen.Refresh(context.Background()))

	assert.False(t, screen.SetFilter(FilterPrivateOnly))
	assert.Equal(t, FilterAll, screen.State().Filter)
}

func TestScreen_FilterFallsBackWhenUnavailable(t *testing.T) {
	screen, backend, _, _ := seededScreen(t)
	ctx := context.Background()
	require.NoError(t, screen.Refresh(ctx))
	require.True(t, screen.SetFilter(FilterPrivateOnly))

	// Delete the only private book.
	for _, b := range screen.Books() {
		if b.IsPrivate() {
			require.NoError(t, backend.Client(t).DeleteBook(ctx, b.ID))
		}
	}

	require.NoError(t, screen.Refresh(ctx))
	st := screen.State()
	assert.Equal(t, FilterAll, st.Filter)
	assert.NotContains(t, st.Available, FilterPrivateOnly)
	assert.Len(t, Flatten(st.Sections), 3)
}

func TestScreen_StaleResponseNeverOverwrites(t *testing.T) {
	fetcher := newGatedFetcher(2)
	screen := NewScreen("u", ScreenDeps{Fetcher: fetcher, Collator: collator, Logger: logger.Discard().Logger})

	firstDone := make(chan error, 1)
	go func() { firstDone <- screen.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return fetcher.started() == 1 }, time.Second, 5*time.Millisecond)

	// The newer refresh completes first.
	fetcher.gates[1] <- []domain.Book{book("new", domain.StatusUnread, "Fresh")}
	require.NoError(t, screen.Refresh(context.Background()))

	// The older one was cancelled; even a late answer is discarded.
	fetcher.gates[0] <- []domain.Book{book("old", domain.StatusUnread, "Stale")}
	err := <-firstDone
	assert.ErrorIs(t, err, ErrSuperseded)

	st := screen.State()
	assert.Equal(t, []string{"Fresh"}, titles(st.Sections))
	assert.Equal(t, uint64(2), st.Generation)
}

func TestScreen_Search(t *testing.T) {
	backend := apitest.New(t)
	owner := backend.AddUser(domain.UserProfile{LocalAuthID: "uid-ada", DisplayName: "Ada"})
	backend.AddBook(domain.Book{OwnerID: owner.BackendID, Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Genre: "Science Fiction"})
	backend.AddBook(domain.Book{OwnerID: owner.BackendID, Title: "Middlemarch", Author: "George Eliot", Genre: "Classics"})

	screen := NewScreen(owner.BackendID, ScreenDeps{
		Fetcher:  backend.Client(t),
		Collator: collator,
		Index:    newIndex(t),
		Logger:   logger.Discard().Logger,
	})
	ctx := context.Background()
	require.NoError(t, screen.Refresh(ctx))

	found, err := screen.Search(ctx, "darkness")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "The Left Hand of Darkness", found[0].Title)

	found, err = screen.Search(ctx, "eliot")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Middlemarch", found[0].Title)
}

func TestScreen_SearchWithoutIndex(t *testing.T) {
	screen := NewScreen("u", ScreenDeps{Fetcher: newGatedFetcher(0), Collator: collator, Logger: logger.Discard().Logger})
	_, err := screen.Search(context.Background(), "x")
	assert.Error(t, err)
}

func TestScreen_WatchRefreshesOnGraphMutation(t *testing.T) {
	screen, backend, owner, _ := seededScreen(t)

	bus := events.NewBus(logger.Discard().Logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Start(ctx)
	t.Cleanup(func() { _ = bus.Shutdown(context.Background()) })

	go func() { _ = screen.Watch(ctx, bus) }()
	require.Eventually(t, func() bool { return bus.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	backend.AddBook(domain.Book{OwnerID: owner, Title: "Arrived Later", Genre: "Poetry"})
	bus.Emit(events.New(events.TypeGraphMutated, events.GraphMutatedData{At: time.Now()}))

	assert.Eventually(t, func() bool {
		return len(screen.Books()) == 5
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScreen_HidePrivate(t *testing.T) {
	backend := apitest.New(t)
	owner := backend.AddUser(domain.UserProfile{LocalAuthID: "uid-ada", DisplayName: "Ada"})
	for _, b := range filterFixture() {
		b.OwnerID = owner.BackendID
		backend.AddBook(b)
	}

	screen := NewScreen(owner.BackendID, ScreenDeps{
		Fetcher:     backend.Client(t),
		Collator:    collator,
		Logger:      logger.Discard().Logger,
		HidePrivate: true,
	})
	require.NoError(t, screen.Refresh(context.Background()))

	for _, b := range screen.Books() {
		assert.False(t, b.IsPrivate())
	}
	assert.Len(t, screen.Books(), 3)
	assert.NotContains(t, screen.State().Available, FilterPrivateOnly)
}
