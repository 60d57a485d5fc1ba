package di

import (
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmateapp/shelfmate/internal/config"
	"github.com/shelfmateapp/shelfmate/internal/di/providers"
	"github.com/shelfmateapp/shelfmate/internal/domain"
	"github.com/shelfmateapp/shelfmate/internal/router"
	"github.com/shelfmateapp/shelfmate/internal/session"
	"github.com/shelfmateapp/shelfmate/internal/theme"
)

func TestContainer_ResolvesFreshInstall(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://127.0.0.1:1/api/v1")
	t.Setenv("IDENTITY_PROVIDER", "firebase")
	t.Setenv("IDENTITY_API_KEY", "test-key")
	t.Setenv("THEME_SOURCE", "none")

	injector := NewContainer(config.Flags{
		DataPath:     t.TempDir(),
		PrefsBackend: "sqlite",
		EnvFile:      "does-not-exist.env",
	})
	t.Cleanup(func() { _ = injector.Shutdown() })

	sess := do.MustInvoke[*session.Container](injector)
	assert.Equal(t, domain.SessionSignedOut, sess.Status())

	r := do.MustInvoke[*router.Router](injector)
	assert.Equal(t, router.RouteOnboarding, r.Current())

	th := do.MustInvoke[*providers.ThemeHandle](injector)
	assert.Equal(t, theme.PreferenceSystem, th.Preference())
	assert.False(t, th.IsDark())
}

func TestContainer_InvalidConfig(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("DISCOVER_BACKEND", "false")
	t.Setenv("IDENTITY_API_KEY", "test-key")

	injector := NewContainer(config.Flags{DataPath: t.TempDir(), EnvFile: "does-not-exist.env"})
	t.Cleanup(func() { _ = injector.Shutdown() })

	_, err := do.Invoke[*config.Config](injector)
	require.Error(t, err)
}
