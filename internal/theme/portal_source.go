package theme

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	portalDest      = "org.freedesktop.portal.Desktop"
	portalPath      = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	portalInterface = "org.freedesktop.portal.Settings"
	appearanceNS    = "org.freedesktop.appearance"
	colorSchemeKey  = "color-scheme"
)

// PortalSource reads the desktop color scheme from the XDG settings portal over the session bus
// and subscribes to its SettingChanged signal.
type PortalSource struct {
	conn   *dbus.Conn
	logger *slog.Logger

	mu     sync.Mutex
	scheme Scheme
}

// NewPortalSource connects to the session bus and reads the current scheme.
func NewPortalSource(logger *slog.Logger) (*PortalSource, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	s := &PortalSource{conn: conn, logger: logger}
	scheme, err := s.read()
	if err != nil {
		conn.Close()
		return nil, err
	}
	s.scheme = scheme
	return s, nil
}

func (s *PortalSource) read() (Scheme, error) {
	obj := s.conn.Object(portalDest, portalPath)

	var value dbus.Variant
	err := obj.Call(portalInterface+".ReadOne", 0, appearanceNS, colorSchemeKey).Store(&value)
	if err != nil {
		// Portals older than version 2 only offer the deprecated Read, which double-wraps the value.
		if callErr := obj.Call(portalInterface+".Read", 0, appearanceNS, colorSchemeKey).Store(&value); callErr != nil {
			return SchemeNoPreference, fmt.Errorf("read %s.%s: %w", appearanceNS, colorSchemeKey, errors.Join(err, callErr))
		}
	}
	return schemeFromVariant(value), nil
}

// schemeFromVariant decodes the portal's uint32 (0 none, 1 dark, 2 light), unwrapping nested variants.
func schemeFromVariant(v dbus.Variant) Scheme {
	for {
		inner, ok := v.Value().(dbus.Variant)
		if !ok {
			break
		}
		v = inner
	}

	n, ok := v.Value().(uint32)
	if !ok {
		return SchemeNoPreference
	}
	switch n {
	case 1:
		return SchemeDark
	case 2:
		return SchemeLight
	default:
		return SchemeNoPreference
	}
}

// Current returns the last scheme seen.
func (s *PortalSource) Current() Scheme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheme
}

// Watch subscribes to SettingChanged and forwards color-scheme updates.
func (s *PortalSource) Watch(ctx context.Context) (<-chan Scheme, error) {
	matchOpts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(portalPath),
		dbus.WithMatchInterface(portalInterface),
		dbus.WithMatchMember("SettingChanged"),
	}
	if err := s.conn.AddMatchSignal(matchOpts...); err != nil {
		return nil, fmt.Errorf("subscribe to SettingChanged: %w", err)
	}

	signals := make(chan *dbus.Signal, 8)
	s.conn.Signal(signals)

	out := make(chan Scheme, 4)
	go func() {
		defer close(out)
		defer func() {
			s.conn.RemoveSignal(signals)
			_ = s.conn.RemoveMatchSignal(matchOpts...)
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				scheme, ok := schemeFromSignal(sig)
				if !ok {
					continue
				}

				s.mu.Lock()
				s.scheme = scheme
				s.mu.Unlock()

				s.logger.Debug("os color scheme changed", "scheme", scheme)
				select {
				case out <- scheme:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// schemeFromSignal extracts the scheme from a SettingChanged(namespace, key, value) signal.
func schemeFromSignal(sig *dbus.Signal) (Scheme, bool) {
	if sig == nil || sig.Name != portalInterface+".SettingChanged" || len(sig.Body) != 3 {
		return SchemeNoPreference, false
	}
	ns, _ := sig.Body[0].(string)
	key, _ := sig.Body[1].(string)
	if ns != appearanceNS || key != colorSchemeKey {
		return SchemeNoPreference, false
	}
	value, ok := sig.Body[2].(dbus.Variant)
	if !ok {
		return SchemeNoPreference, false
	}
	return schemeFromVariant(value), true
}

// Close releases the bus connection.
func (s *PortalSource) Close() error {
	return s.conn.Close()
}
