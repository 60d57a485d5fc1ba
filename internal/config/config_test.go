package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Environment: "development"},
		Logger:   LoggerConfig{Level: "info"},
		Storage:  StorageConfig{DataPath: "/data", Backend: "badger"},
		API:      APIConfig{BaseURL: "https://api.example.com", RPS: 5, Burst: 10, Timeout: time.Second},
		Identity: IdentityConfig{Provider: "firebase", APIKey: "key"},
		Theme:    ThemeConfig{Source: "none"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown environment", func(c *Config) { c.App.Environment = "test" }},
		{"uppercase environment", func(c *Config) { c.App.Environment = "DEVELOPMENT" }},
		{"unknown log level", func(c *Config) { c.Logger.Level = "trace" }},
		{"empty data path", func(c *Config) { c.Storage.DataPath = "" }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "bolt" }},
		{"missing base url", func(c *Config) { c.API.BaseURL = "" }},
		{"relative base url", func(c *Config) { c.API.BaseURL = "api/v1" }},
		{"zero rps", func(c *Config) { c.API.RPS = 0 }},
		{"firebase without key", func(c *Config) { c.Identity.APIKey = "" }},
		{"oidc without issuer", func(c *Config) { c.Identity.Provider = "oidc" }},
		{"unknown provider", func(c *Config) { c.Identity.Provider = "saml" }},
		{"file theme without path", func(c *Config) { c.Theme.Source = "file" }},
		{"unknown theme source", func(c *Config) { c.Theme.Source = "gsettings" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_DiscoveryAllowsMissingBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.API.BaseURL = ""
	cfg.Discovery.Enabled = true
	assert.NoError(t, cfg.Validate())
}

func TestValidate_LogLevelCaseInsensitive(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Level = "DEBUG"
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("API_BASE_URL", "https://env.example.com")
	t.Setenv("IDENTITY_API_KEY", "k")
	t.Setenv("THEME_SOURCE", "none")
	t.Setenv("LOG_LEVEL", "info")

	cfg, err := LoadConfig(Flags{
		DataPath: dir,
		LogLevel: "debug",
		EnvFile:  filepath.Join(dir, "missing.env"),
	})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level, "flag beats env")
	assert.Equal(t, "https://env.example.com", cfg.API.BaseURL)
	assert.Equal(t, dir, cfg.Storage.DataPath)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.InDelta(t, 5.0, cfg.API.RPS, 0.0001)
	assert.Equal(t, filepath.Join(dir, "prefs"), cfg.PrefsPath())
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("API_BASE_URL=https://dotenv.example.com/\nPREFS_BACKEND=sqlite\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("API_BASE_URL")
		os.Unsetenv("PREFS_BACKEND")
	})
	t.Setenv("IDENTITY_API_KEY", "k")
	t.Setenv("THEME_SOURCE", "none")

	cfg, err := LoadConfig(Flags{DataPath: dir, EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, "https://dotenv.example.com", cfg.API.BaseURL, "trailing slash trimmed")
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(dir, "prefs.db"), cfg.PrefsPath())
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("IDENTITY_API_KEY", "k")
	t.Setenv("API_TIMEOUT", "soon")

	_, err := LoadConfig(Flags{DataPath: dir, EnvFile: filepath.Join(dir, "none")})
	assert.ErrorContains(t, err, "API_TIMEOUT")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/shelf", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "shelf"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("/a/../b", "")
	require.NoError(t, err)
	assert.Equal(t, "/b", got)
}

func TestGetBoolConfigValue(t *testing.T) {
	t.Setenv("SHELFMATE_TEST_BOOL", "YES")
	assert.True(t, getBoolConfigValue("", "SHELFMATE_TEST_BOOL", false))
	assert.False(t, getBoolConfigValue("no", "SHELFMATE_TEST_BOOL", true))
	assert.True(t, getBoolConfigValue("", "SHELFMATE_TEST_UNSET", true))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("SHELFMATE_TEST_INT", "abc")
	assert.Equal(t, 7, getIntConfigValue("", "SHELFMATE_TEST_INT", 7))
	assert.Equal(t, 3, getIntConfigValue("3", "SHELFMATE_TEST_INT", 7))
}
