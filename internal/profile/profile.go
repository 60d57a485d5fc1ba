// Package profile saves profile edits to the backend and then merges them into the session.
package profile

import (
	"context"
	"log/slog"

	"github.com/shelfmateapp/shelfmate/internal/domain"
	domainerrors "github.com/shelfmateapp/shelfmate/internal/errors"
	"github.com/shelfmateapp/shelfmate/internal/prefs"
	"github.com/shelfmateapp/shelfmate/internal/session"
	"github.com/shelfmateapp/shelfmate/internal/validation"
)

// Backend persists profile changes.
type Backend interface {
	UpdateUser(ctx context.Context, backendID string, patch domain.ProfilePatch) error
}

// Session is the in-memory profile holder.
type Session interface {
	Profile() *domain.UserProfile
	UpdateProfile(patch domain.ProfilePatch) error
}

// Service edits the signed-in user's profile.
type Service struct {
	backend   Backend
	session   Session
	store     prefs.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewService creates a profile service.
func NewService(backend Backend, sess Session, store prefs.Store, logger *slog.Logger) *Service {
	return &Service{backend: backend, session: sess, store: store, validator: validation.New(), logger: logger}
}

// Update sends patch to the backend and, only once that succeeds, merges it into the session.
// A changed library visibility is mirrored into local settings; a failure there is logged.
func (s *Service) Update(ctx context.Context, patch domain.ProfilePatch) (*domain.UserProfile, error) {
	p := s.session.Profile()
	if p == nil {
		return nil, session.ErrNotSignedIn
	}
	if patch.Empty() {
		return nil, domainerrors.Validation("nothing to update")
	}
	if err := s.validator.Validate(&patch); err != nil {
		return nil, err
	}

	if err := s.backend.UpdateUser(ctx, p.BackendID, patch); err != nil {
		return nil, err
	}
	if err := s.session.UpdateProfile(patch); err != nil {
		return nil, err
	}

	if patch.LibraryVisibility != nil {
		if err := prefs.SetSetting(ctx, s.store, "library_visibility", string(*patch.LibraryVisibility)); err != nil {
			s.logger.Warn("failed to mirror library visibility", "error", err)
		}
	}

	s.logger.Info("profile updated", "user_id", p.BackendID)
	return s.session.Profile(), nil
}
