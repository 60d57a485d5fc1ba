// Package config provides client configuration with support for command-line flags, environment variables, and .env files.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the client configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Storage   StorageConfig
	API       APIConfig
	Identity  IdentityConfig
	Theme     ThemeConfig
	Discovery DiscoveryConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds local persistence configuration.
type StorageConfig struct {
	// DataPath holds the preference store and the device key (default: ~/.shelfmate).
	DataPath string
	// Backend selects the preference store engine: badger or sqlite.
	Backend string
}

// APIConfig holds backend REST API configuration.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

// IdentityConfig holds identity provider configuration.
type IdentityConfig struct {
	// Provider is firebase or oidc.
	Provider string

	// Firebase-compatible REST provider.
	APIKey   string
	Endpoint string

	// OIDC password-grant provider.
	Issuer       string
	ClientID     string
	ClientSecret string
}

// ThemeConfig holds appearance configuration.
type ThemeConfig struct {
	// Source of the OS color scheme: portal (D-Bus), file, or none.
	Source     string
	SchemeFile string
}

// DiscoveryConfig controls locating the backend on the local network.
type DiscoveryConfig struct {
	Enabled bool
	Service string
	Timeout time.Duration
}

// Flags carries command-line overrides. Empty strings mean "not set".
type Flags struct {
	Env          string
	LogLevel     string
	DataPath     string
	PrefsBackend string
	BaseURL      string
	EnvFile      string
}

const (
	defaultFirebaseEndpoint = "https://identitytoolkit.googleapis.com/v1"
	defaultServiceType      = "_shelfmate._tcp"
)

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(flags Flags) (*Config, error) {
	envFile := flags.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv.Load never overrides variables that are already set, which keeps env above .env.
	_ = godotenv.Load(envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(flags.Env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(flags.LogLevel, "LOG_LEVEL", "warn"),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(flags.DataPath, "DATA_PATH", ""),
			Backend:  getConfigValue(flags.PrefsBackend, "PREFS_BACKEND", "badger"),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(getConfigValue(flags.BaseURL, "API_BASE_URL", ""), "/"),
			Burst:   getIntConfigValue("", "API_BURST", 10),
		},
		Identity: IdentityConfig{
			Provider:     getConfigValue("", "IDENTITY_PROVIDER", "firebase"),
			APIKey:       getConfigValue("", "IDENTITY_API_KEY", ""),
			Endpoint:     getConfigValue("", "IDENTITY_ENDPOINT", defaultFirebaseEndpoint),
			Issuer:       getConfigValue("", "OIDC_ISSUER", ""),
			ClientID:     getConfigValue("", "OIDC_CLIENT_ID", ""),
			ClientSecret: getConfigValue("", "OIDC_CLIENT_SECRET", ""),
		},
		Theme: ThemeConfig{
			Source:     getConfigValue("", "THEME_SOURCE", "portal"),
			SchemeFile: getConfigValue("", "THEME_SCHEME_FILE", ""),
		},
		Discovery: DiscoveryConfig{
			Enabled: getBoolConfigValue("", "DISCOVER_BACKEND", false),
			Service: getConfigValue("", "DISCOVERY_SERVICE", defaultServiceType),
		},
	}

	var err error
	if cfg.API.Timeout, err = getDurationConfigValue("API_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.Discovery.Timeout, err = getDurationConfigValue("DISCOVERY_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.API.RPS, err = getFloatConfigValue("API_RPS", 5); err != nil {
		return nil, err
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if err := cfg.expandSchemeFile(); err != nil {
		return nil, fmt.Errorf("invalid theme scheme file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	switch c.Storage.Backend {
	case "badger", "sqlite":
	default:
		return fmt.Errorf("invalid prefs backend: %q (must be badger or sqlite)", c.Storage.Backend)
	}

	if c.API.BaseURL == "" && !c.Discovery.Enabled {
		return errors.New("API_BASE_URL is required unless DISCOVER_BACKEND is enabled")
	}
	if c.API.BaseURL != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid API base URL: %q", c.API.BaseURL)
		}
	}
	if c.API.RPS <= 0 || c.API.Burst <= 0 {
		return errors.New("API rate limit must be positive")
	}

	switch c.Identity.Provider {
	case "firebase":
		if c.Identity.APIKey == "" {
			return errors.New("IDENTITY_API_KEY is required for the firebase provider")
		}
	case "oidc":
		if c.Identity.Issuer == "" || c.Identity.ClientID == "" {
			return errors.New("OIDC_ISSUER and OIDC_CLIENT_ID are required for the oidc provider")
		}
	default:
		return fmt.Errorf("invalid identity provider: %q (must be firebase or oidc)", c.Identity.Provider)
	}

	switch c.Theme.Source {
	case "portal", "none":
	case "file":
		if c.Theme.SchemeFile == "" {
			return errors.New("THEME_SCHEME_FILE is required when THEME_SOURCE=file")
		}
	default:
		return fmt.Errorf("invalid theme source: %q (must be portal, file, or none)", c.Theme.Source)
	}

	return nil
}

// PrefsPath returns the on-disk location of the preference store for the configured backend.
func (c *Config) PrefsPath() string {
	if c.Storage.Backend == "sqlite" {
		return filepath.Join(c.Storage.DataPath, "prefs.db")
	}
	return filepath.Join(c.Storage.DataPath, "prefs")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Storage.DataPath, filepath.Join(homeDir, ".shelfmate"))
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

func (c *Config) expandSchemeFile() error {
	expanded, err := expandPath(c.Theme.SchemeFile, "")
	if err != nil {
		return err
	}
	c.Theme.SchemeFile = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

func getFloatConfigValue(envKey string, defaultValue float64) (float64, error) {
	strValue := getConfigValue("", envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return result, nil
}

func getDurationConfigValue(envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue("", envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}
