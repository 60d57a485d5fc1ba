// Package notifications reads and posts entries of the friends' activity feed.
package notifications

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/shelfmateapp/shelfmate/internal/domain"
	"github.com/shelfmateapp/shelfmate/internal/session"
	"github.com/shelfmateapp/shelfmate/internal/validation"
)

// Backend is the part of the REST client the feed uses.
type Backend interface {
	ListFriendsNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID string) error
	CreateNotification(ctx context.Context, n domain.Notification) (*domain.Notification, error)
}

// Profiler supplies the signed-in user.
type Profiler interface {
	Profile() *domain.UserProfile
}

// Service is the notifications feed.
type Service struct {
	backend   Backend
	session   Profiler
	validator *validation.Validator
	logger    *slog.Logger
}

// NewService creates a feed service.
func NewService(backend Backend, sess Profiler, logger *slog.Logger) *Service {
	return &Service{backend: backend, session: sess, validator: validation.New(), logger: logger}
}

func (s *Service) profile() (*domain.UserProfile, error) {
	p := s.session.Profile()
	if p == nil {
		return nil, session.ErrNotSignedIn
	}
	return p, nil
}

// List returns the user's and their friends' notifications, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Notification, error) {
	p, err := s.profile()
	if err != nil {
		return nil, err
	}

	list, err := s.backend.ListFriendsNotifications(ctx, p.BackendID)
	if err != nil {
		s.logger.Error("failed to load notifications", "user_id", p.BackendID, "error", err)
		return nil, err
	}

	slices.SortStableFunc(list, func(a, b domain.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return list, nil
}

// MarkRead flags one notification as read.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	if _, err := s.profile(); err != nil {
		return err
	}
	if err := s.validator.Var("id", id, "notblank"); err != nil {
		return err
	}
	return s.backend.MarkNotificationRead(ctx, id)
}

// Notify posts a notification addressed to n.UserID with the signed-in user as actor.
func (s *Service) Notify(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	p, err := s.profile()
	if err != nil {
		return nil, err
	}

	n.ID = ""
	n.ActorID = p.BackendID
	n.ActorName = cmp.Or(n.ActorName, p.DisplayName)
	n.Message = strings.TrimSpace(n.Message)
	n.Read = false
	if err := s.validator.Validate(&n); err != nil {
		return nil, err
	}

	created, err := s.backend.CreateNotification(ctx, n)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("notification posted", "id", created.ID, "type", created.Type, "to", created.UserID)
	return created, nil
}

// UnreadCount counts notifications not yet read.
func UnreadCount(list []domain.Notification) int {
	n := 0
	for _, item := range list {
		if !item.Read {
			n++
		}
	}
	return n
}
