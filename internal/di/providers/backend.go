package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/shelfmateapp/shelfmate/internal/api"
	"github.com/shelfmateapp/shelfmate/internal/config"
	"github.com/shelfmateapp/shelfmate/internal/discovery"
	"github.com/shelfmateapp/shelfmate/internal/identity"
	"github.com/shelfmateapp/shelfmate/internal/logger"
	"github.com/shelfmateapp/shelfmate/internal/prefs"
)

// APIClientHandle wraps the backend client with shutdown capability.
type APIClientHandle struct {
	*api.Client
}

// Shutdown implements do.Shutdownable.
func (h *APIClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideAPIClient builds the backend client. Without a configured base URL the backend is
// located through Avahi.
func ProvideAPIClient(i do.Injector) (*APIClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	store := do.MustInvoke[*PrefsHandle](i)

	baseURL := cfg.API.BaseURL
	if baseURL == "" {
		found, err := discoverBackend(cfg, log)
		if err != nil {
			return nil, err
		}
		baseURL = found
	}

	deviceID, err := prefs.InstallID(context.Background(), store)
	if err != nil {
		log.Warn("Install id unavailable, sending a fresh one", "error", err)
	}

	client, err := api.New(api.Options{
		BaseURL:  baseURL,
		Timeout:  cfg.API.Timeout,
		RPS:      cfg.API.RPS,
		Burst:    cfg.API.Burst,
		DeviceID: deviceID,
	}, log.WithComponent("api"))
	if err != nil {
		return nil, err
	}
	return &APIClientHandle{Client: client}, nil
}

func discoverBackend(cfg *config.Config, log *logger.Logger) (string, error) {
	if !cfg.Discovery.Enabled {
		return "", errors.New("no API base URL configured")
	}

	browser, err := discovery.NewAvahi(log.WithComponent("discovery"))
	if err != nil {
		return "", fmt.Errorf("backend discovery: %w", err)
	}
	defer browser.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Discovery.Timeout)
	defer cancel()

	baseURL, err := discovery.Discover(ctx, browser, cfg.Discovery.Service)
	if err != nil {
		return "", fmt.Errorf("backend discovery: %w", err)
	}
	log.Info("Backend discovered", "base_url", baseURL)
	return baseURL, nil
}

// ProvideIdentity provides the configured identity provider.
func ProvideIdentity(i do.Injector) (identity.Provider, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*APIClientHandle](i)

	switch cfg.Identity.Provider {
	case "oidc":
		return identity.NewOIDC(cfg.Identity.Issuer, cfg.Identity.ClientID, cfg.Identity.ClientSecret,
			client.HTTPClient(), log.WithComponent("identity")), nil
	default:
		return identity.NewFirebase(cfg.Identity.Endpoint, cfg.Identity.APIKey,
			client.HTTPClient(), log.WithComponent("identity")), nil
	}
}
