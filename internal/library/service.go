package library

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/shelfmateapp/shelfmate/internal/domain"
	domainerrors "github.com/shelfmateapp/shelfmate/internal/errors"
	"github.com/shelfmateapp/shelfmate/internal/genre"
	"github.com/shelfmateapp/shelfmate/internal/session"
	"github.com/shelfmateapp/shelfmate/internal/validation"
)

// Backend is the part of the REST client the book service uses.
type Backend interface {
	CreateBook(ctx context.Context, book *domain.Book) (*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) (*domain.Book, error)
	DeleteBook(ctx context.Context, bookID string) error
	ListGenres(ctx context.Context, userID string) ([]string, error)
	CreateLoan(ctx context.Context, loan domain.Loan) (*domain.Loan, error)
}

// Session supplies the signed-in user and the mutation signal.
type Session interface {
	Profile() *domain.UserProfile
	TouchMutationTimestamp() time.Time
}

// ServiceDeps are the collaborators of a Service.
type ServiceDeps struct {
	Backend  Backend
	Session  Session
	Collator genre.Collator
	Language language.Tag
	Logger   *slog.Logger
}

// Service edits the signed-in user's books and loans.
type Service struct {
	backend   Backend
	session   Session
	collator  genre.Collator
	lang      language.Tag
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a book service.
func NewService(deps ServiceDeps) *Service {
	return &Service{
		backend:   deps.Backend,
		session:   deps.Session,
		collator:  deps.Collator,
		lang:      deps.Language,
		validator: validation.New(),
		logger:    deps.Logger,
		now:       time.Now,
	}
}

func (s *Service) owner() (*domain.UserProfile, error) {
	p := s.session.Profile()
	if p == nil {
		return nil, session.ErrNotSignedIn
	}
	return p, nil
}

// normalize fills defaults and cleans user input before validation.
func (s *Service) normalize(b *domain.Book) {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Publisher = strings.TrimSpace(b.Publisher)
	b.CoverURL = strings.TrimSpace(b.CoverURL)
	b.Genre = genre.Canonical(b.Genre, s.lang)
	b.Description = NormalizeDescription(b.Description)
	if b.Status == "" {
		b.Status = domain.StatusUnread
	}
	if b.Visibility == "" {
		b.Visibility = domain.BookPublic
	}
}

func (s *Service) validate(b *domain.Book) error {
	if err := s.validator.Validate(b); err != nil {
		return err
	}
	if b.PageCount > 0 && b.CurrentPage > b.PageCount {
		return domainerrors.ValidationWithDetails("currentPage cannot exceed pageCount",
			map[string]string{"currentPage": "currentPage cannot exceed pageCount"})
	}
	return nil
}

// AddBook creates a book owned by the signed-in user.
func (s *Service) AddBook(ctx context.Context, book domain.Book) (*domain.Book, error) {
	profile, err := s.owner()
	if err != nil {
		return nil, err
	}

	book.ID = ""
	book.OwnerID = profile.BackendID
	book.Loans = nil
	s.normalize(&book)
	if err := s.validate(&book); err != nil {
		return nil, err
	}

	created, err := s.backend.CreateBook(ctx, &book)
	if err != nil {
		return nil, err
	}

	s.logger.Info("book added", "book_id", created.ID, "title", created.Title)
	s.session.TouchMutationTimestamp()
	return created, nil
}

// UpdateBook replaces an existing book. Only the owner may edit it.
func (s *Service) UpdateBook(ctx context.Context, book domain.Book) (*domain.Book, error) {
	profile, err := s.owner()
	if err != nil {
		return nil, err
	}
	if book.ID == "" {
		return nil, domainerrors.Validation("book id is required")
	}
	if book.OwnerID != "" && book.OwnerID != profile.BackendID {
		return nil, domainerrors.Forbidden("only the owner can edit this book")
	}

	book.OwnerID = profile.BackendID
	s.normalize(&book)
	if err := s.validate(&book); err != nil {
		return nil, err
	}

	updated, err := s.backend.UpdateBook(ctx, &book)
	if err != nil {
		return nil, err
	}

	s.logger.Info("book updated", "book_id", updated.ID)
	s.session.TouchMutationTimestamp()
	return updated, nil
}

// DeleteBook removes a book permanently.
func (s *Service) DeleteBook(ctx context.Context, bookID string) error {
	if _, err := s.owner(); err != nil {
		return err
	}
	if err := s.validator.Var("bookId", bookID, "notblank"); err != nil {
		return err
	}

	if err := s.backend.DeleteBook(ctx, bookID); err != nil {
		return err
	}

	s.logger.Info("book deleted", "book_id", bookID)
	s.session.TouchMutationTimestamp()
	return nil
}

// LendBook records a loan of book to borrower. A zero due date means the default loan period.
func (s *Service) LendBook(ctx context.Context, book domain.Book, borrower string, due time.Time) (*domain.Loan, error) {
	profile, err := s.owner()
	if err != nil {
		return nil, err
	}
	if book.OwnerID != "" && book.OwnerID != profile.BackendID {
		return nil, domainerrors.Forbidden("only the owner can lend this book")
	}
	if book.OnLoan() {
		return nil, domainerrors.Conflict("book is already on loan")
	}

	loan := domain.NewLoan(book.ID, strings.TrimSpace(borrower), s.now().UTC())
	if !due.IsZero() {
		loan.ReturnDate = due
	}
	if err := s.validator.Validate(&loan); err != nil {
		return nil, err
	}

	created, err := s.backend.CreateLoan(ctx, loan)
	if err != nil {
		return nil, err
	}

	s.logger.Info("book lent", "book_id", book.ID, "loan_id", created.ID, "due", created.ReturnDate)
	s.session.TouchMutationTimestamp()
	return created, nil
}

// Genres returns the genres the user has used, merged with the defaults, in display order.
func (s *Service) Genres(ctx context.Context) ([]string, error) {
	profile, err := s.owner()
	if err != nil {
		return nil, err
	}

	used, err := s.backend.ListGenres(ctx, profile.BackendID)
	if err != nil {
		return nil, err
	}
	return genre.Merge(s.collator, used), nil
}
