package providers

import (
	"context"

	"github.com/samber/do/v2"
	"golang.org/x/text/language"

	"github.com/shelfmateapp/shelfmate/internal/auth"
	"github.com/shelfmateapp/shelfmate/internal/config"
	"github.com/shelfmateapp/shelfmate/internal/genre"
	"github.com/shelfmateapp/shelfmate/internal/identity"
	"github.com/shelfmateapp/shelfmate/internal/library"
	"github.com/shelfmateapp/shelfmate/internal/logger"
	"github.com/shelfmateapp/shelfmate/internal/notifications"
	"github.com/shelfmateapp/shelfmate/internal/prefs"
	"github.com/shelfmateapp/shelfmate/internal/profile"
	"github.com/shelfmateapp/shelfmate/internal/router"
	"github.com/shelfmateapp/shelfmate/internal/session"
	"github.com/shelfmateapp/shelfmate/internal/social"
	"github.com/shelfmateapp/shelfmate/internal/theme"
)

// ProvideLanguage provides the UI language from the persisted settings.
func ProvideLanguage(i do.Injector) (language.Tag, error) {
	log := do.MustInvoke[*logger.Logger](i)
	store := do.MustInvoke[*PrefsHandle](i)

	settings, err := prefs.LoadSettings(context.Background(), store)
	if err != nil {
		log.Warn("Failed to load settings, using defaults", "error", err)
	}
	tag, err := language.Parse(settings.Language)
	if err != nil {
		return language.English, nil
	}
	return tag, nil
}

// ProvideSession provides the session container. The persisted session is restored on first use.
func ProvideSession(i do.Injector) (*session.Container, error) {
	log := do.MustInvoke[*logger.Logger](i)

	c := session.New(session.Deps{
		Provider: do.MustInvoke[identity.Provider](i),
		Backend:  do.MustInvoke[*APIClientHandle](i),
		Store:    do.MustInvoke[*PrefsHandle](i),
		Sealer:   do.MustInvoke[*auth.Sealer](i),
		Emitter:  do.MustInvoke[*BusHandle](i),
		Logger:   log.WithComponent("session"),
	})
	c.RestoreSession(context.Background())
	return c, nil
}

// ThemeHandle wraps the theme container and stops its scheme watcher on shutdown.
type ThemeHandle struct {
	*theme.Container
	cancel context.CancelFunc
	closer func() error
}

// Shutdown implements do.Shutdownable.
func (h *ThemeHandle) Shutdown() error {
	h.cancel()
	if h.closer != nil {
		return h.closer()
	}
	return nil
}

// ProvideTheme provides the theme container with the configured OS scheme source.
func ProvideTheme(i do.Injector) (*ThemeHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	store := do.MustInvoke[*PrefsHandle](i)
	bus := do.MustInvoke[*BusHandle](i)
	themeLog := log.WithComponent("theme")

	var (
		source theme.SchemeSource
		closer func() error
	)
	switch cfg.Theme.Source {
	case "portal":
		portal, err := theme.NewPortalSource(themeLog)
		if err != nil {
			themeLog.Debug("Color scheme portal unavailable", "error", err)
			source = theme.NewStaticSource(theme.SchemeNoPreference)
		} else {
			source, closer = portal, portal.Close
		}
	case "file":
		source = theme.NewFileSource(cfg.Theme.SchemeFile, themeLog)
	default:
		source = theme.NewStaticSource(theme.SchemeNoPreference)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := theme.New(ctx, theme.Deps{Store: store, Source: source, Emitter: bus, Logger: themeLog})
	go func() {
		if err := c.Watch(ctx); err != nil {
			themeLog.Debug("Color scheme watch stopped", "error", err)
		}
	}()

	return &ThemeHandle{Container: c, cancel: cancel, closer: closer}, nil
}

// ProvideLibraryService provides book editing and lending.
func ProvideLibraryService(i do.Injector) (*library.Service, error) {
	log := do.MustInvoke[*logger.Logger](i)
	tag := do.MustInvoke[language.Tag](i)

	return library.NewService(library.ServiceDeps{
		Backend:  do.MustInvoke[*APIClientHandle](i),
		Session:  do.MustInvoke[*session.Container](i),
		Collator: genre.NewCollator(tag),
		Language: tag,
		Logger:   log.WithComponent("library"),
	}), nil
}

// ProvideSocialService provides the follow graph.
func ProvideSocialService(i do.Injector) (*social.Service, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return social.NewService(
		do.MustInvoke[*APIClientHandle](i),
		do.MustInvoke[*session.Container](i),
		log.WithComponent("social"),
	), nil
}

// ProvideNotificationService provides the notifications feed.
func ProvideNotificationService(i do.Injector) (*notifications.Service, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return notifications.NewService(
		do.MustInvoke[*APIClientHandle](i),
		do.MustInvoke[*session.Container](i),
		log.WithComponent("notifications"),
	), nil
}

// ProvideProfileService provides profile editing.
func ProvideProfileService(i do.Injector) (*profile.Service, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return profile.NewService(
		do.MustInvoke[*APIClientHandle](i),
		do.MustInvoke[*session.Container](i),
		do.MustInvoke[*PrefsHandle](i),
		log.WithComponent("profile"),
	), nil
}

// ProvideRouter provides the navigation router.
func ProvideRouter(i do.Injector) (*router.Router, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return router.New(context.Background(),
		do.MustInvoke[*session.Container](i),
		do.MustInvoke[*PrefsHandle](i),
		log.WithComponent("router"),
	), nil
}
