package social

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shelfmateapp/shelfmate/internal/domain"
	domainerrors "github.com/shelfmateapp/shelfmate/internal/errors"
	"github.com/shelfmateapp/shelfmate/internal/session"
)

var (
	// ErrLibraryPrivate means the owner hides their library from everyone.
	ErrLibraryPrivate = errors.New("this library is private")
	// ErrLibraryFriendsOnly means only mutual followers may open the library.
	ErrLibraryFriendsOnly = errors.New("only friends can view this library")
	// ErrSelfFollow is returned when following or unfollowing yourself.
	ErrSelfFollow = domainerrors.Validation("you cannot follow yourself")
)

// Backend is the part of the REST client the social service uses.
type Backend interface {
	ListFollowersWithStatus(ctx context.Context, userID string) ([]domain.FollowerRecord, error)
	Follow(ctx context.Context, followerID, followingID string) error
	Unfollow(ctx context.Context, followerID, followingID string) error
	GetUser(ctx context.Context, key string) (*domain.UserProfile, error)
}

// Session supplies the signed-in user and the mutation signal.
type Session interface {
	Profile() *domain.UserProfile
	TouchMutationTimestamp() time.Time
}

// Service loads the follow graph and edits it.
type Service struct {
	backend Backend
	session Session
	logger  *slog.Logger
}

// NewService creates a social service.
func NewService(backend Backend, sess Session, logger *slog.Logger) *Service {
	return &Service{backend: backend, session: sess, logger: logger}
}

func (s *Service) self() (string, error) {
	p := s.session.Profile()
	if p == nil {
		return "", session.ErrNotSignedIn
	}
	return p.BackendID, nil
}

// Load fetches the signed-in user's edges and aggregates them.
func (s *Service) Load(ctx context.Context) (Graph, error) {
	selfID, err := s.self()
	if err != nil {
		return Graph{}, err
	}

	records, err := s.records(ctx, selfID)
	if err != nil {
		return Graph{}, err
	}

	g := Aggregate(selfID, EdgesFromRecords(selfID, records), UsersFromRecords(records))
	s.logger.Debug("loaded connections",
		"friends", len(g.Friends),
		"followers", len(g.Followers),
		"following", len(g.Following),
	)
	return g, nil
}

func (s *Service) records(ctx context.Context, selfID string) ([]domain.FollowerRecord, error) {
	records, err := s.backend.ListFollowersWithStatus(ctx, selfID)
	if err != nil {
		s.logger.Error("failed to load connections", "user_id", selfID, "error", err)
		return nil, err
	}
	return records, nil
}

// Follow adds selfID -> targetID.
func (s *Service) Follow(ctx context.Context, targetID string) error {
	selfID, err := s.self()
	if err != nil {
		return err
	}
	if targetID == "" || targetID == selfID {
		return ErrSelfFollow
	}

	if err := s.backend.Follow(ctx, selfID, targetID); err != nil {
		return err
	}
	s.logger.Info("followed user", "target_id", targetID)
	s.session.TouchMutationTimestamp()
	return nil
}

// Unfollow removes selfID -> targetID.
func (s *Service) Unfollow(ctx context.Context, targetID string) error {
	selfID, err := s.self()
	if err != nil {
		return err
	}
	if targetID == "" || targetID == selfID {
		return ErrSelfFollow
	}

	if err := s.backend.Unfollow(ctx, selfID, targetID); err != nil {
		return err
	}
	s.logger.Info("unfollowed user", "target_id", targetID)
	s.session.TouchMutationTimestamp()
	return nil
}

// OpenLibrary decides whether the signed-in user may open targetID's library and returns the
// owner's profile when allowed. A private library, or a friends-only library of a non-friend,
// fails with a forbidden error wrapping ErrLibraryPrivate or ErrLibraryFriendsOnly.
func (s *Service) OpenLibrary(ctx context.Context, targetID string) (*domain.UserProfile, error) {
	selfID, err := s.self()
	if err != nil {
		return nil, err
	}

	target, err := s.backend.GetUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.BackendID == selfID {
		return target, nil
	}

	switch target.LibraryVisibility {
	case domain.LibraryPrivate:
		return nil, domainerrors.Wrap(ErrLibraryPrivate, domainerrors.CodeForbidden, "cannot open library")
	case domain.LibraryFriends:
		records, err := s.records(ctx, selfID)
		if err != nil {
			return nil, err
		}
		if !IsFriend(selfID, target.BackendID, EdgesFromRecords(selfID, records)) {
			return nil, domainerrors.Wrap(ErrLibraryFriendsOnly, domainerrors.CodeForbidden, "cannot open library")
		}
	}
	return target, nil
}

// AccessMessage returns the blocking message for an OpenLibrary failure, or "" if err is not an access denial.
func AccessMessage(err error) string {
	switch {
	case errors.Is(err, ErrLibraryPrivate):
		return "This library is private."
	case errors.Is(err, ErrLibraryFriendsOnly):
		return "Only friends can view this library."
	default:
		return ""
	}
}
