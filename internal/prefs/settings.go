package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shelfmateapp/shelfmate/internal/domain"
	"github.com/shelfmateapp/shelfmate/internal/id"
)

// LoadSettings reads the settings mirror. Missing or unparsable values fall back to defaults.
// The returned settings are always usable; a non-nil error reports the first read failure.
func LoadSettings(ctx context.Context, s Store) (domain.Settings, error) {
	out := domain.DefaultSettings()
	var firstErr error

	read := func(key string) (string, bool) {
		v, err := s.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, ErrNotFound) && firstErr == nil {
				firstErr = err
			}
			return "", false
		}
		return v, true
	}
	readBool := func(key string, dst *bool) {
		if v, ok := read(key); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	readBool(KeyNotifications, &out.NotificationsEnabled)
	readBool(KeyDataSaver, &out.DataSaver)
	readBool(KeyAutoBackup, &out.AutoBackup)
	if v, ok := read(KeyLanguage); ok && v != "" {
		out.Language = v
	}
	if v, ok := read(KeyLibraryVisibility); ok {
		if vis := domain.LibraryVisibility(v); vis.Valid() {
			out.LibraryVisibility = vis
		}
	}

	return out, firstErr
}

// SaveSettings writes every settings field. All writes are attempted; the errors are joined.
func SaveSettings(ctx context.Context, s Store, settings domain.Settings) error {
	return errors.Join(
		s.Set(ctx, KeyNotifications, strconv.FormatBool(settings.NotificationsEnabled)),
		s.Set(ctx, KeyDataSaver, strconv.FormatBool(settings.DataSaver)),
		s.Set(ctx, KeyAutoBackup, strconv.FormatBool(settings.AutoBackup)),
		s.Set(ctx, KeyLanguage, settings.Language),
		s.Set(ctx, KeyLibraryVisibility, string(settings.LibraryVisibility)),
	)
}

// SetSetting updates a single settings field by its short name (notifications, data_saver,
// auto_backup, language, library_visibility).
func SetSetting(ctx context.Context, s Store, name, value string) error {
	switch name {
	case "notifications", "data_saver", "auto_backup":
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%s must be true or false", name)
		}
	case "language":
		code, err := NormalizeLanguage(value)
		if err != nil {
			return err
		}
		value = code
	case "library_visibility":
		if !domain.LibraryVisibility(value).Valid() {
			return errors.New("library_visibility must be public, friends, or private")
		}
	default:
		return fmt.Errorf("unknown setting %q", name)
	}
	return s.Set(ctx, "settings."+name, value)
}

// IsFirstLaunch reports whether onboarding has not been completed yet.
// Read failures count as a first launch.
func IsFirstLaunch(ctx context.Context, s Store) (bool, error) {
	v, err := s.Get(ctx, KeyFirstLaunch)
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return true, err
	}
	launched, err := strconv.ParseBool(v)
	if err != nil {
		return true, nil
	}
	return launched, nil
}

// MarkLaunched records that onboarding is done.
func MarkLaunched(ctx context.Context, s Store) error {
	return s.Set(ctx, KeyFirstLaunch, "false")
}

// InstallID returns the per-installation device id, generating and persisting one on first use.
// If the store cannot be written, a fresh id is still returned for this process.
func InstallID(ctx context.Context, s Store) (string, error) {
	v, err := s.Get(ctx, KeyInstallID)
	if err == nil && id.ValidInstallID(v) {
		return v, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return id.NewInstallID(), err
	}

	fresh := id.NewInstallID()
	return fresh, s.Set(ctx, KeyInstallID, fresh)
}
