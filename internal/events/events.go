// Package events is the in-process change notification bus. Containers emit, screens subscribe.
package events

import (
	"time"

	"github.com/shelfmateapp/shelfmate/internal/domain"
)

// Type identifies what changed.
type Type string

const (
	// TypeSessionChanged fires when the session status or signed-in user changes.
	TypeSessionChanged Type = "session.changed"
	// TypeProfileUpdated fires on an in-memory profile merge.
	TypeProfileUpdated Type = "profile.updated"
	// TypeGraphMutated fires when connections or loans may be stale.
	TypeGraphMutated Type = "graph.mutated"
	// TypeThemeChanged fires when the resolved appearance changes.
	TypeThemeChanged Type = "theme.changed"
	// TypeLibraryLoaded fires after a library fetch settles.
	TypeLibraryLoaded Type = "library.loaded"
)

// Event is a single notification.
type Event struct {
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// SessionChangedData is the payload of TypeSessionChanged.
type SessionChangedData struct {
	Status domain.SessionStatus `json:"status"`
	UserID string               `json:"userId,omitempty"`
}

// ProfileUpdatedData is the payload of TypeProfileUpdated.
type ProfileUpdatedData struct {
	Profile *domain.UserProfile `json:"profile"`
}

// GraphMutatedData is the payload of TypeGraphMutated. At equals the profile's LastMutation.
type GraphMutatedData struct {
	At time.Time `json:"at"`
}

// ThemeChangedData is the payload of TypeThemeChanged.
type ThemeChangedData struct {
	Preference string `json:"preference"`
	Dark       bool   `json:"dark"`
}

// LibraryLoadedData is the payload of TypeLibraryLoaded.
type LibraryLoadedData struct {
	UserID     string `json:"userId"`
	Books      int    `json:"books"`
	Generation uint64 `json:"generation"`
	Err        string `json:"error,omitempty"`
}

// New builds an event stamped with the current time.
func New(t Type, data any) Event {
	return Event{Type: t, Timestamp: time.Now(), Data: data}
}

// Emitter is implemented by Bus. Containers depend on this, not on Bus.
type Emitter interface {
	Emit(event Event)
}

// NoopEmitter drops every event.
type NoopEmitter struct{}

// Emit implements Emitter as a no-op.
func (NoopEmitter) Emit(Event) {}
