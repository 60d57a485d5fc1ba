package apitest

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shelfmateapp/shelfmate/internal/api"
	"github.com/shelfmateapp/shelfmate/internal/domain"
)

func (b *Backend) createUser(w http.ResponseWriter, r *http.Request) {
	var req api.CreateUserRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ProviderUserID == "" {
		writeError(w, http.StatusBadRequest, "providerUserId is required")
		return
	}

	b.mu.Lock()
	if b.findUser(req.ProviderUserID) != nil {
		b.mu.Unlock()
		writeError(w, http.StatusConflict, "user already exists")
		return
	}
	u := &domain.UserProfile{
		LocalAuthID:       req.ProviderUserID,
		BackendID:         b.nextID("user"),
		DisplayName:       req.DisplayName,
		Email:             req.Email,
		LibraryVisibility: domain.LibraryPublic,
	}
	b.users[u.BackendID] = u
	out := *u
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, out)
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	u := b.findUser(chi.URLParam(r, "id"))
	var out domain.UserProfile
	if u != nil {
		out = *u
	}
	b.mu.Unlock()

	if u == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) patchUser(w http.ResponseWriter, r *http.Request) {
	var patch domain.ProfilePatch
	if !decode(w, r, &patch) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.findUser(chi.URLParam(r, "id"))
	if u == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	patch.Apply(u)
	writeJSON(w, http.StatusOK, *u)
}

func (b *Backend) deleteUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.findUser(chi.URLParam(r, "id"))
	if u == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	delete(b.users, u.BackendID)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) listBooks(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	b.mu.Lock()
	out := []domain.Book{}
	for _, id := range b.bookOrder {
		if book, ok := b.books[id]; ok && book.OwnerID == userID {
			out = append(out, *book)
		}
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) listGenres(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	b.mu.Lock()
	genres := []string{}
	for _, id := range b.bookOrder {
		book, ok := b.books[id]
		if !ok || book.OwnerID != userID || strings.TrimSpace(book.Genre) == "" {
			continue
		}
		if !slices.Contains(genres, book.Genre) {
			genres = append(genres, book.Genre)
		}
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, genres)
}

func (b *Backend) createBook(w http.ResponseWriter, r *http.Request) {
	var book domain.Book
	if !decode(w, r, &book) {
		return
	}
	if strings.TrimSpace(book.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	book.ID = ""
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now()
	}

	b.mu.Lock()
	id := b.storeBook(book)
	out := *b.books[id]
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, out)
}

func (b *Backend) updateBook(w http.ResponseWriter, r *http.Request) {
	var book domain.Book
	if !decode(w, r, &book) {
		return
	}
	id := chi.URLParam(r, "id")

	b.mu.Lock()
	defer b.mu.Unlock()
	existing, ok := b.books[id]
	if !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	book.ID = id
	book.Loans = existing.Loans
	book.CreatedAt = existing.CreatedAt
	b.books[id] = &book
	writeJSON(w, http.StatusOK, book)
}

func (b *Backend) deleteBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.books[id]; !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	delete(b.books, id)
	b.bookOrder = slices.DeleteFunc(b.bookOrder, func(s string) bool { return s == id })
	w.WriteHeader(http.StatusNoContent)
}

// followersWithStatus emits one record per edge touching the user, so mutual follows appear twice.
func (b *Backend) followersWithStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	b.mu.Lock()
	out := []domain.FollowerRecord{}
	for _, e := range b.edges {
		var other string
		switch userID {
		case e.FollowingID:
			other = e.FollowerID
		case e.FollowerID:
			other = e.FollowingID
		default:
			continue
		}
		summary := domain.UserSummary{ID: other}
		if u := b.users[other]; u != nil {
			summary.DisplayName = u.DisplayName
			summary.AvatarURL = u.AvatarURL
			summary.Bio = u.Bio
			summary.LibraryVisibility = u.LibraryVisibility
		}
		out = append(out, domain.FollowerRecord{
			User:           summary,
			IsFollowing:    b.hasEdge(other, userID),
			IsFollowedByMe: b.hasEdge(userID, other),
		})
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) follow(w http.ResponseWriter, r *http.Request) {
	var c domain.Connection
	if !decode(w, r, &c) {
		return
	}
	if c.FollowerID == "" || c.FollowingID == "" || c.FollowerID == c.FollowingID {
		writeError(w, http.StatusBadRequest, "invalid connection")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hasEdge(c.FollowerID, c.FollowingID) {
		writeError(w, http.StatusConflict, "already following")
		return
	}
	c.CreatedAt = time.Now()
	b.edges = append(b.edges, c)
	writeJSON(w, http.StatusCreated, c)
}

func (b *Backend) unfollow(w http.ResponseWriter, r *http.Request) {
	follower := chi.URLParam(r, "followerId")
	following := chi.URLParam(r, "followingId")

	b.mu.Lock()
	defer b.mu.Unlock()
	before := len(b.edges)
	b.edges = slices.DeleteFunc(b.edges, func(c domain.Connection) bool {
		return c.FollowerID == follower && c.FollowingID == following
	})
	if len(b.edges) == before {
		writeError(w, http.StatusNotFound, "connection not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) createLoan(w http.ResponseWriter, r *http.Request) {
	var loan domain.Loan
	if !decode(w, r, &loan) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	book, ok := b.books[loan.BookID]
	if !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	loan.ID = b.nextID("loan")
	book.Loans = append(book.Loans, loan)
	writeJSON(w, http.StatusCreated, loan)
}

func (b *Backend) createNotification(w http.ResponseWriter, r *http.Request) {
	var n domain.Notification
	if !decode(w, r, &n) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	n.ID = b.nextID("notif")
	n.CreatedAt = time.Now()
	b.notifications = append(b.notifications, n)
	writeJSON(w, http.StatusCreated, n)
}

// listNotifications returns notifications addressed to the user or emitted by one of their friends.
func (b *Backend) listNotifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	b.mu.Lock()
	out := []domain.Notification{}
	for _, n := range b.notifications {
		friendActor := n.ActorID != "" && b.hasEdge(userID, n.ActorID) && b.hasEdge(n.ActorID, userID)
		if n.UserID == userID || friendActor {
			out = append(out, n)
		}
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) markRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.notifications {
		if b.notifications[i].ID == id {
			b.notifications[i].Read = true
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "notification not found")
}
