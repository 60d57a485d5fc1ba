// Package prefs is the device-local preference store: string key/value pairs that survive restarts.
//
// Values carry no schema version. Writes are last-write-wins; two in-flight writers to the same key
// may race and either may win.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotFound is returned by Get when the key has never been written or was deleted.
var ErrNotFound = errors.New("prefs: key not found")

// Well-known keys.
const (
	KeyFirstLaunch       = "app.first_launch"
	KeyInstallID         = "app.install_id"
	KeySessionToken      = "session.token"
	KeyThemePreference   = "theme.preference"
	KeyNotifications     = "settings.notifications"
	KeyDataSaver         = "settings.data_saver"
	KeyAutoBackup        = "settings.auto_backup"
	KeyLanguage          = "settings.language"
	KeyLibraryVisibility = "settings.library_visibility"
)

// Backend names accepted by Open.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Store is a string key/value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open opens the store for the named backend at path.
func Open(backend, path string, logger *slog.Logger) (Store, error) {
	switch backend {
	case BackendBadger:
		return OpenBadger(path, logger)
	case BackendSQLite:
		return OpenSQLite(path, logger)
	default:
		return nil, fmt.Errorf("unknown prefs backend %q", backend)
	}
}
