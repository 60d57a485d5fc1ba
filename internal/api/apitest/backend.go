// Package apitest provides an in-memory fake of the Shelfmate backend for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shelfmateapp/shelfmate/internal/api"
	"github.com/shelfmateapp/shelfmate/internal/domain"
	"github.com/shelfmateapp/shelfmate/internal/logger"
)

// Backend is a chi-routed fake backend backed by maps.
type Backend struct {
	mu            sync.Mutex
	users         map[string]*domain.UserProfile // by backend id
	books         map[string]*domain.Book
	bookOrder     []string
	edges         []domain.Connection
	notifications []domain.Notification
	failures      map[string]int
	calls         []string
	hook          func(r *http.Request)
	seq           int

	server *httptest.Server
}

// New starts a fake backend that is closed when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		users:    make(map[string]*domain.UserProfile),
		books:    make(map[string]*domain.Book),
		failures: make(map[string]int),
	}
	b.server = httptest.NewServer(b.routes())
	t.Cleanup(b.server.Close)
	return b
}

// URL is the base URL to hand to api.New.
func (b *Backend) URL() string {
	return b.server.URL
}

// Client returns an API client pointed at the fake with generous rate limits.
func (b *Backend) Client(t testing.TB) *api.Client {
	t.Helper()
	c, err := api.New(api.Options{BaseURL: b.URL(), Timeout: 5 * time.Second, RPS: 1000, Burst: 1000, DeviceID: "test-device"}, logger.Discard().Logger)
	if err != nil {
		t.Fatalf("create api client: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(b.intercept)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", b.createUser)
		r.Get("/{id}", b.getUser)
		r.Patch("/{id}", b.patchUser)
		r.Delete("/{id}", b.deleteUser)
	})
	r.Route("/books", func(r chi.Router) {
		r.Post("/", b.createBook)
		r.Get("/{userId}/with-loans", b.listBooks)
		r.Get("/{userId}/genres", b.listGenres)
		r.Put("/{id}", b.updateBook)
		r.Delete("/{id}", b.deleteBook)
	})
	r.Route("/connections", func(r chi.Router) {
		r.Post("/", b.follow)
		r.Get("/{userId}/followers-with-status", b.followersWithStatus)
		r.Delete("/{followerId}/{followingId}", b.unfollow)
	})
	r.Post("/loans", b.createLoan)
	r.Route("/notifications", func(r chi.Router) {
		r.Post("/", b.createNotification)
		r.Get("/{userId}/all-friends-notifications", b.listNotifications)
		r.Patch("/{id}/mark-as-read", b.markRead)
	})

	return r
}

// intercept records the call, runs the hook, and applies injected failures.
func (b *Backend) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := r.Method + " " + r.URL.Path

		b.mu.Lock()
		b.calls = append(b.calls, call)
		hook := b.hook
		status := 0
		for prefix, s := range b.failures {
			if strings.HasPrefix(call, prefix) {
				status = s
				break
			}
		}
		b.mu.Unlock()

		if hook != nil {
			hook(r)
		}
		if status != 0 {
			writeError(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Fail makes every request whose "METHOD /path" starts with prefix answer with status.
func (b *Backend) Fail(prefix string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[prefix] = status
}

// ClearFailures removes all injected failures.
func (b *Backend) ClearFailures() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.failures)
}

// SetHook installs a function run before every request is handled. It may block.
func (b *Backend) SetHook(hook func(r *http.Request)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hook = hook
}

// Calls counts recorded requests whose "METHOD /path" starts with prefix.
func (b *Backend) Calls(prefix string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (b *Backend) nextID(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s-%d", prefix, b.seq)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// findUser resolves either a backend id or a provider id. Caller holds mu.
func (b *Backend) findUser(key string) *domain.UserProfile {
	if u, ok := b.users[key]; ok {
		return u
	}
	for _, u := range b.users {
		if u.LocalAuthID == key {
			return u
		}
	}
	return nil
}

func (b *Backend) hasEdge(follower, following string) bool {
	return slices.ContainsFunc(b.edges, func(c domain.Connection) bool {
		return c.FollowerID == follower && c.FollowingID == following
	})
}

// AddUser seeds a user. An empty BackendID is assigned. Returns the stored copy.
func (b *Backend) AddUser(p domain.UserProfile) domain.UserProfile {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p.BackendID == "" {
		p.BackendID = b.nextID("user")
	}
	if p.LibraryVisibility == "" {
		p.LibraryVisibility = domain.LibraryPublic
	}
	stored := p
	b.users[p.BackendID] = &stored
	return stored
}

// User returns a copy of the stored user, or false.
func (b *Backend) User(key string) (domain.UserProfile, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.findUser(key)
	if u == nil {
		return domain.UserProfile{}, false
	}
	return *u, true
}

// AddBook seeds a book and returns its id.
func (b *Backend) AddBook(book domain.Book) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.storeBook(book)
}

func (b *Backend) storeBook(book domain.Book) string {
	if book.ID == "" {
		book.ID = b.nextID("book")
	}
	if book.Status == "" {
		book.Status = domain.StatusUnread
	}
	if book.Visibility == "" {
		book.Visibility = domain.BookPublic
	}
	if _, exists := b.books[book.ID]; !exists {
		b.bookOrder = append(b.bookOrder, book.ID)
	}
	b.books[book.ID] = &book
	return book.ID
}

// Book returns a copy of the stored book, or false.
func (b *Backend) Book(id string) (domain.Book, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	book, ok := b.books[id]
	if !ok {
		return domain.Book{}, false
	}
	return *book, true
}

// AddEdge seeds follower -> following.
func (b *Backend) AddEdge(follower, following string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.edges = append(b.edges, domain.Connection{FollowerID: follower, FollowingID: following, CreatedAt: time.Now()})
}

// HasEdge reports whether follower -> following exists.
func (b *Backend) HasEdge(follower, following string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hasEdge(follower, following)
}

// AddNotification seeds a notification and returns its id.
func (b *Backend) AddNotification(n domain.Notification) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n.ID == "" {
		n.ID = b.nextID("notif")
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	b.notifications = append(b.notifications, n)
	return n.ID
}

// Notifications returns a copy of every stored notification.
func (b *Backend) Notifications() []domain.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.notifications)
}
