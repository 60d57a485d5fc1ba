package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/shelfmateapp/shelfmate/internal/auth"
	"github.com/shelfmateapp/shelfmate/internal/config"
	"github.com/shelfmateapp/shelfmate/internal/logger"
	"github.com/shelfmateapp/shelfmate/internal/prefs"
)

// PrefsHandle wraps the preference store with shutdown capability.
type PrefsHandle struct {
	prefs.Store
}

// Shutdown implements do.Shutdownable.
func (h *PrefsHandle) Shutdown() error {
	return h.Close()
}

// ProvidePrefs opens the preference store under the data path.
func ProvidePrefs(i do.Injector) (*PrefsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o700); err != nil {
		return nil, fmt.Errorf("create data path: %w", err)
	}

	path := cfg.PrefsPath()
	store, err := prefs.Open(cfg.Storage.Backend, path, log.WithComponent("prefs"))
	if err != nil {
		return nil, err
	}

	log.Debug("Preference store opened", "backend", cfg.Storage.Backend, "path", path)
	return &PrefsHandle{Store: store}, nil
}

// ProvideSealer loads or generates the device key and builds the token sealer.
func ProvideSealer(i do.Injector) (*auth.Sealer, error) {
	cfg := do.MustInvoke[*config.Config](i)

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o700); err != nil {
		return nil, fmt.Errorf("create data path: %w", err)
	}
	key, err := auth.LoadOrGenerateKey(cfg.Storage.DataPath)
	if err != nil {
		return nil, err
	}
	return auth.NewSealer(key)
}
