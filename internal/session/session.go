// Package session is the single source of truth for who is using the app.
//
// The Container mediates between the identity provider, the backend profile resource and the
// preference store. It is constructed once and passed to whatever needs it.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shelfmateapp/shelfmate/internal/api"
	"github.com/shelfmateapp/shelfmate/internal/domain"
	domainerrors "github.com/shelfmateapp/shelfmate/internal/errors"
	"github.com/shelfmateapp/shelfmate/internal/events"
	"github.com/shelfmateapp/shelfmate/internal/identity"
	"github.com/shelfmateapp/shelfmate/internal/prefs"
	"github.com/shelfmateapp/shelfmate/internal/validation"
)

var (
	// ErrNotSignedIn is returned by operations that need a signed-in user.
	ErrNotSignedIn = domainerrors.Unauthorized("not signed in")
	// ErrAlreadySignedIn is returned by SignIn and SignUp while a user is signed in.
	ErrAlreadySignedIn = domainerrors.Conflict("already signed in")
	// ErrInvalidTransition is returned when a status change is not in the state machine.
	ErrInvalidTransition = errors.New("session: invalid status transition")
)

// profileLoadMessage is shown when the identity check passed but the backend profile could not be loaded.
const profileLoadMessage = "Signed in, but your profile could not be loaded. Please try again."

// SignInError carries the user-facing message for a failed sign-in or sign-up.
type SignInError struct {
	Message string
	Err     error
}

func (e *SignInError) Error() string {
	return e.Message
}

func (e *SignInError) Unwrap() error {
	return e.Err
}

// Backend is the subset of the API client the session needs.
type Backend interface {
	GetUser(ctx context.Context, localAuthID string) (*domain.UserProfile, error)
	CreateUser(ctx context.Context, req api.CreateUserRequest) (*domain.UserProfile, error)
	DeleteUser(ctx context.Context, backendID string) error
}

// Sealer protects the persisted identifier.
type Sealer interface {
	Seal(localAuthID string) (string, error)
	Open(token string) (string, error)
}

// Deps are the collaborators of a Container.
type Deps struct {
	Provider identity.Provider
	Backend  Backend
	Store    prefs.Store
	Sealer   Sealer
	Emitter  events.Emitter
	Logger   *slog.Logger
}

// Container holds the session status and the signed-in profile.
type Container struct {
	provider  identity.Provider
	backend   Backend
	store     prefs.Store
	sealer    Sealer
	emitter   events.Emitter
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time

	// opMu serializes restore, sign-in, sign-up, sign-out and delete so commits apply in call order.
	opMu sync.Mutex

	mu        sync.RWMutex
	status    domain.SessionStatus
	profile   *domain.UserProfile
	ready     chan struct{}
	readyOnce sync.Once

	restoreStarted atomic.Bool
}

// New creates a container in the loading state.
func New(deps Deps) *Container {
	emitter := deps.Emitter
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &Container{
		provider:  deps.Provider,
		backend:   deps.Backend,
		store:     deps.Store,
		sealer:    deps.Sealer,
		emitter:   emitter,
		validator: validation.New(),
		logger:    deps.Logger,
		now:       time.Now,
		status:    domain.SessionLoading,
		ready:     make(chan struct{}),
	}
}

// Status returns the current status.
func (c *Container) Status() domain.SessionStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Profile returns a copy of the signed-in profile, or nil when not signed in.
func (c *Container) Profile() *domain.UserProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile.Clone()
}

// WaitReady blocks until the session leaves the loading state or ctx is done. Screens hold
// rendering until then.
func (c *Container) WaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// setStateLocked applies a transition. Caller holds c.mu.
func (c *Container) setStateLocked(next domain.SessionStatus, profile *domain.UserProfile) error {
	if !c.status.CanTransition(next) {
		return ErrInvalidTransition
	}
	c.status = next
	c.profile = profile
	if next != domain.SessionLoading {
		c.readyOnce.Do(func() { close(c.ready) })
	}
	return nil
}

func (c *Container) emitSessionChanged(status domain.SessionStatus, profile *domain.UserProfile) {
	data := events.SessionChangedData{Status: status}
	if profile != nil {
		data.UserID = profile.BackendID
	}
	c.emitter.Emit(events.New(events.TypeSessionChanged, data))
}

// commit installs a complete profile and moves to signedIn in one step.
func (c *Container) commit(profile *domain.UserProfile) error {
	c.mu.Lock()
	err := c.setStateLocked(domain.SessionSignedIn, profile)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.emitSessionChanged(domain.SessionSignedIn, profile)
	return nil
}

// RestoreSession reads the persisted identifier and, if present, loads the profile for it.
// It runs once per container; later calls are ignored. Every failure ends in signedOut and is
// only logged.
func (c *Container) RestoreSession(ctx context.Context) {
	if !c.restoreStarted.CompareAndSwap(false, true) {
		c.logger.Debug("session restore already ran")
		return
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	profile := c.loadPersistedProfile(ctx)

	c.mu.Lock()
	if c.status != domain.SessionLoading {
		// A sign-in or sign-out already settled the session.
		c.mu.Unlock()
		return
	}
	next := domain.SessionSignedOut
	if profile != nil {
		next = domain.SessionSignedIn
	}
	_ = c.setStateLocked(next, profile)
	c.mu.Unlock()

	c.logger.Info("session restored", "status", next)
	c.emitSessionChanged(next, profile)
}

func (c *Container) loadPersistedProfile(ctx context.Context) *domain.UserProfile {
	token, err := c.store.Get(ctx, prefs.KeySessionToken)
	if err != nil {
		if !errors.Is(err, prefs.ErrNotFound) {
			c.logger.Warn("failed to read persisted session", "error", err)
		}
		return nil
	}

	localAuthID, err := c.sealer.Open(token)
	if err != nil {
		c.logger.Warn("discarding unreadable session token", "error", err)
		if err := c.store.Delete(ctx, prefs.KeySessionToken); err != nil {
			c.logger.Warn("failed to delete session token", "error", err)
		}
		return nil
	}

	profile, err := c.backend.GetUser(ctx, localAuthID)
	if err != nil {
		c.logger.Warn("failed to load profile for persisted session", "error", err)
		return nil
	}
	profile.LocalAuthID = localAuthID
	if !profile.Complete() {
		c.logger.Warn("backend returned an incomplete profile", "local_auth_id", localAuthID)
		return nil
	}
	return profile
}

type credentials struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

// SignIn authenticates with the identity provider, loads the backend profile and only then
// persists the identifier and moves to signedIn. Any failure leaves the session untouched.
func (c *Container) SignIn(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if err := c.validator.Validate(credentials{Email: email, Password: password}); err != nil {
		return err
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	if c.Status() == domain.SessionSignedIn {
		return ErrAlreadySignedIn
	}

	localAuthID, err := c.provider.Authenticate(ctx, email, password)
	if err != nil {
		c.logger.Info("identity provider rejected sign-in", "error", err)
		return &SignInError{Message: identity.Message(err), Err: err}
	}

	profile, err := c.backend.GetUser(ctx, localAuthID)
	if err != nil {
		c.logger.Warn("profile fetch failed after successful authentication", "error", err)
		return &SignInError{Message: profileLoadMessage, Err: err}
	}
	profile.LocalAuthID = localAuthID
	if !profile.Complete() {
		return &SignInError{Message: profileLoadMessage, Err: domainerrors.Internal("backend returned an incomplete profile")}
	}

	c.persistIdentifier(ctx, localAuthID)

	if err := c.commit(profile); err != nil {
		return err
	}
	c.logger.Info("signed in", "user_id", profile.BackendID)
	return nil
}

type registration struct {
	Email       string `json:"email" validate:"notblank,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"displayName" validate:"notblank,max=120"`
}

// SignUp registers with the identity provider, creates the backend profile and signs in.
func (c *Container) SignUp(ctx context.Context, email, password, displayName string) error {
	reg := registration{
		Email:       strings.TrimSpace(email),
		Password:    password,
		DisplayName: strings.TrimSpace(displayName),
	}
	if err := c.validator.Validate(reg); err != nil {
		return err
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	if c.Status() == domain.SessionSignedIn {
		return ErrAlreadySignedIn
	}

	localAuthID, err := c.provider.Register(ctx, reg.Email, reg.Password)
	if err != nil {
		c.logger.Info("identity provider rejected registration", "error", err)
		return &SignInError{Message: identity.Message(err), Err: err}
	}

	profile, err := c.backend.CreateUser(ctx, api.CreateUserRequest{
		ProviderUserID: localAuthID,
		DisplayName:    reg.DisplayName,
		Email:          reg.Email,
	})
	if err != nil {
		c.logger.Warn("profile creation failed after registration", "error", err)
		return &SignInError{Message: profileLoadMessage, Err: err}
	}
	profile.LocalAuthID = localAuthID
	if !profile.Complete() {
		return &SignInError{Message: profileLoadMessage, Err: domainerrors.Internal("backend returned an incomplete profile")}
	}

	c.persistIdentifier(ctx, localAuthID)

	if err := c.commit(profile); err != nil {
		return err
	}
	c.logger.Info("signed up", "user_id", profile.BackendID)
	return nil
}

// persistIdentifier seals and stores the identifier. Failures are logged; the in-process session still succeeds.
func (c *Container) persistIdentifier(ctx context.Context, localAuthID string) {
	token, err := c.sealer.Seal(localAuthID)
	if err != nil {
		c.logger.Warn("failed to seal session token", "error", err)
		return
	}
	if err := c.store.Set(ctx, prefs.KeySessionToken, token); err != nil {
		c.logger.Warn("failed to persist session token", "error", err)
	}
}

// SignOut clears the persisted identifier and the profile. It never fails.
func (c *Container) SignOut(ctx context.Context) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.signOutLocked(ctx)
}

func (c *Container) signOutLocked(ctx context.Context) {
	if err := c.store.Delete(ctx, prefs.KeySessionToken); err != nil {
		c.logger.Warn("failed to delete session token", "error", err)
	}

	c.mu.Lock()
	changed := c.status != domain.SessionSignedOut
	if changed {
		_ = c.setStateLocked(domain.SessionSignedOut, nil)
	}
	c.profile = nil
	c.mu.Unlock()

	if changed {
		c.logger.Info("signed out")
		c.emitSessionChanged(domain.SessionSignedOut, nil)
	}
}

// UpdateProfile merges the non-nil fields of patch into the in-memory profile.
// Nothing is sent to the backend; callers persist the change first.
func (c *Container) UpdateProfile(patch domain.ProfilePatch) error {
	if err := c.validator.Validate(patch); err != nil {
		return err
	}

	c.mu.Lock()
	if c.status != domain.SessionSignedIn || c.profile == nil {
		c.mu.Unlock()
		return ErrNotSignedIn
	}
	updated := c.profile.Clone()
	patch.Apply(updated)
	_ = c.setStateLocked(domain.SessionSignedIn, updated)
	snapshot := updated.Clone()
	c.mu.Unlock()

	c.emitter.Emit(events.New(events.TypeProfileUpdated, events.ProfileUpdatedData{Profile: snapshot}))
	return nil
}

// TouchMutationTimestamp marks connections and loans as possibly stale and tells subscribers.
func (c *Container) TouchMutationTimestamp() time.Time {
	now := c.now()

	c.mu.Lock()
	if c.profile != nil {
		updated := c.profile.Clone()
		updated.LastMutation = now
		c.profile = updated
	}
	c.mu.Unlock()

	c.emitter.Emit(events.New(events.TypeGraphMutated, events.GraphMutatedData{At: now}))
	return now
}

// DeleteAccount permanently deletes the backend profile and signs out.
// On failure the session is left as it was.
func (c *Container) DeleteAccount(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	profile := c.Profile()
	if profile == nil {
		return ErrNotSignedIn
	}

	if err := c.backend.DeleteUser(ctx, profile.BackendID); err != nil {
		return err
	}

	c.logger.Info("account deleted", "user_id", profile.BackendID)
	c.signOutLocked(ctx)
	return nil
}
