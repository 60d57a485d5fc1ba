package theme

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shelfmateapp/shelfmate/internal/events"
	"github.com/shelfmateapp/shelfmate/internal/prefs"
)

// Container holds the appearance preference and the OS scheme, and resolves the palette from both.
type Container struct {
	store   prefs.Store
	source  SchemeSource
	emitter events.Emitter
	logger  *slog.Logger

	mu         sync.RWMutex
	preference Preference
	osScheme   Scheme
}

// Deps are the collaborators of a Container.
type Deps struct {
	Store   prefs.Store
	Source  SchemeSource
	Emitter events.Emitter
	Logger  *slog.Logger
}

// New loads the persisted preference. Any read failure or unknown value yields system.
func New(ctx context.Context, deps Deps) *Container {
	c := &Container{
		store:      deps.Store,
		source:     deps.Source,
		emitter:    deps.Emitter,
		logger:     deps.Logger,
		preference: PreferenceSystem,
	}
	if c.source == nil {
		c.source = NewStaticSource(SchemeNoPreference)
	}
	if c.emitter == nil {
		c.emitter = events.NoopEmitter{}
	}
	c.osScheme = c.source.Current()

	stored, err := c.store.Get(ctx, prefs.KeyThemePreference)
	switch {
	case errors.Is(err, prefs.ErrNotFound):
	case err != nil:
		c.logger.Warn("failed to read theme preference, using system", "error", err)
	default:
		if p, err := ParsePreference(stored); err == nil {
			c.preference = p
		} else {
			c.logger.Warn("ignoring stored theme preference", "value", stored)
		}
	}

	return c
}

// Preference returns the user's tri-state choice.
func (c *Container) Preference() Preference {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.preference
}

// OSScheme returns the last scheme the OS reported.
func (c *Container) OSScheme() Scheme {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.osScheme
}

// IsDark reports whether the effective appearance is dark.
func (c *Container) IsDark() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Resolve(c.preference, c.osScheme)
}

// Palette returns the colors for the effective appearance.
func (c *Container) Palette() Palette {
	return PaletteFor(c.IsDark())
}

// SetPreference applies and persists p. A persistence failure is logged; the choice still applies in memory.
func (c *Container) SetPreference(ctx context.Context, p Preference) error {
	if _, err := ParsePreference(string(p)); err != nil {
		return err
	}

	c.mu.Lock()
	c.preference = p
	dark := Resolve(p, c.osScheme)
	c.mu.Unlock()

	if err := c.store.Set(ctx, prefs.KeyThemePreference, string(p)); err != nil {
		c.logger.Warn("failed to persist theme preference", "error", err)
	}

	c.emit(p, dark)
	return nil
}

// Cycle advances system -> light -> dark -> system, persisting the new choice.
func (c *Container) Cycle(ctx context.Context) Preference {
	next := c.Preference().Next()
	_ = c.SetPreference(ctx, next)
	return next
}

// Watch follows OS scheme changes until ctx is done. It emits theme.changed whenever the resolved
// appearance flips. Returns once the source channel closes.
func (c *Container) Watch(ctx context.Context) error {
	changes, err := c.source.Watch(ctx)
	if err != nil {
		return err
	}

	for scheme := range changes {
		c.mu.Lock()
		before := Resolve(c.preference, c.osScheme)
		c.osScheme = scheme
		p := c.preference
		after := Resolve(p, scheme)
		c.mu.Unlock()

		if before != after {
			c.logger.Debug("appearance changed with os scheme", "scheme", scheme, "dark", after)
			c.emit(p, after)
		}
	}
	return nil
}

func (c *Container) emit(p Preference, dark bool) {
	c.emitter.Emit(events.New(events.TypeThemeChanged, events.ThemeChangedData{Preference: string(p), Dark: dark}))
}
