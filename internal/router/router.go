// Package router decides which top-level flow the app shows.
package router

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shelfmateapp/shelfmate/internal/domain"
	"github.com/shelfmateapp/shelfmate/internal/events"
	"github.com/shelfmateapp/shelfmate/internal/prefs"
)

// Route is a top-level flow.
type Route string

const (
	RouteSplash     Route = "splash"
	RouteOnboarding Route = "onboarding"
	RouteAuth       Route = "auth"
	RouteMain       Route = "main"
)

// Resolve maps session status and the first-launch flag to a route.
func Resolve(status domain.SessionStatus, firstLaunch bool) Route {
	switch {
	case status == domain.SessionLoading:
		return RouteSplash
	case firstLaunch:
		return RouteOnboarding
	case status == domain.SessionSignedIn:
		return RouteMain
	default:
		return RouteAuth
	}
}

// StatusSource reports the session status.
type StatusSource interface {
	Status() domain.SessionStatus
}

// Subscriber is the part of the event bus the router listens on.
type Subscriber interface {
	Subscribe(kinds ...events.Type) (*events.Subscription, error)
	Unsubscribe(sub *events.Subscription)
}

// Router tracks the current route.
type Router struct {
	session StatusSource
	store   prefs.Store
	logger  *slog.Logger

	mu          sync.Mutex
	firstLaunch bool
	route       Route
}

// New reads the first-launch flag and resolves the initial route.
func New(ctx context.Context, sess StatusSource, store prefs.Store, logger *slog.Logger) *Router {
	first, err := prefs.IsFirstLaunch(ctx, store)
	if err != nil {
		logger.Warn("failed to read first-launch flag", "error", err)
	}
	r := &Router{session: sess, store: store, logger: logger, firstLaunch: first}
	r.route = Resolve(sess.Status(), first)
	return r
}

// Current returns the current route.
func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.route
}

// Reresolve recomputes the route from the live session status. Reports whether it changed.
func (r *Router) Reresolve() (Route, bool) {
	status := r.session.Status()

	r.mu.Lock()
	defer r.mu.Unlock()
	next := Resolve(status, r.firstLaunch)
	changed := next != r.route
	if changed {
		r.logger.Debug("route changed", "from", r.route, "to", next)
	}
	r.route = next
	return next, changed
}

// CompleteOnboarding clears the first-launch flag. A persistence failure is logged and the flag
// is still cleared for this process.
func (r *Router) CompleteOnboarding(ctx context.Context) Route {
	if err := prefs.MarkLaunched(ctx, r.store); err != nil {
		r.logger.Warn("failed to persist first-launch flag", "error", err)
	}

	r.mu.Lock()
	r.firstLaunch = false
	r.mu.Unlock()

	route, _ := r.Reresolve()
	return route
}

// Watch re-resolves on every session change and calls onChange when the route moves, until ctx is done.
func (r *Router) Watch(ctx context.Context, bus Subscriber, onChange func(Route)) error {
	sub, err := bus.Subscribe(events.TypeSessionChanged)
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
			if route, changed := r.Reresolve(); changed && onChange != nil {
				onChange(route)
			}
		}
	}
}
