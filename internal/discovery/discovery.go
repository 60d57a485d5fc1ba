// Package discovery locates a Shelfmate backend advertised on the local network through Avahi.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/holoplot/go-avahi"
)

// DefaultService is the DNS-SD service type backends advertise.
const DefaultService = "_shelfmate._tcp"

// ErrNotFound is returned when no backend answered before the context expired.
var ErrNotFound = errors.New("discovery: no backend found")

// Browser yields resolved services of one type until ctx ends.
type Browser interface {
	Browse(ctx context.Context, service string) (<-chan avahi.Service, error)
}

// Avahi browses through the system avahi-daemon over D-Bus.
type Avahi struct {
	conn   *dbus.Conn
	server *avahi.Server
	logger *slog.Logger
}

// NewAvahi connects to the system bus.
func NewAvahi(logger *slog.Logger) (*Avahi, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}
	server, err := avahi.ServerNew(conn)
	if err != nil {
		return nil, fmt.Errorf("avahi server: %w", err)
	}
	return &Avahi{conn: conn, server: server, logger: logger}, nil
}

// Browse starts a service browser and resolves every service it reports.
func (a *Avahi) Browse(ctx context.Context, service string) (<-chan avahi.Service, error) {
	sb, err := a.server.ServiceBrowserNew(avahi.InterfaceUnspec, avahi.ProtoUnspec, service, "local", 0)
	if err != nil {
		return nil, fmt.Errorf("browse %s: %w", service, err)
	}

	out := make(chan avahi.Service)
	go func() {
		defer close(out)
		defer a.server.ServiceBrowserFree(sb)
		for {
			select {
			case <-ctx.Done():
				return
			case found := <-sb.AddChannel:
				resolved, err := a.server.ResolveService(found.Interface, found.Protocol, found.Name,
					found.Type, found.Domain, avahi.ProtoUnspec, 0)
				if err != nil {
					a.logger.Debug("resolve failed", "name", found.Name, "error", err)
					continue
				}
				select {
				case out <- resolved:
				case <-ctx.Done():
					return
				}
			case <-sb.RemoveChannel:
			}
		}
	}()
	return out, nil
}

// Close releases the D-Bus connection.
func (a *Avahi) Close() error {
	a.server.Close()
	return a.conn.Close()
}

// Discover returns the base URL of the first backend b resolves.
func Discover(ctx context.Context, b Browser, service string) (string, error) {
	if service == "" {
		service = DefaultService
	}
	found, err := b.Browse(ctx, service)
	if err != nil {
		return "", err
	}
	for {
		select {
		case <-ctx.Done():
			return "", ErrNotFound
		case s, ok := <-found:
			if !ok {
				return "", ErrNotFound
			}
			if url := BaseURL(s); url != "" {
				return url, nil
			}
		}
	}
}

// BaseURL builds the API root for a resolved service. TXT keys "scheme" and "path" override the
// defaults of http and /api/v1.
func BaseURL(s avahi.Service) string {
	host := s.Address
	if host == "" {
		host = strings.TrimSuffix(s.Host, ".")
	}
	if host == "" || s.Port == 0 {
		return ""
	}

	txt := parseTXT(s.Txt)
	scheme := txt["scheme"]
	if scheme != "https" {
		scheme = "http"
	}
	path := txt["path"]
	if path == "" {
		path = "/api/v1"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(int(s.Port))) + strings.TrimRight(path, "/")
}

func parseTXT(records [][]byte) map[string]string {
	out := make(map[string]string, len(records))
	for _, r := range records {
		k, v, _ := strings.Cut(string(r), "=")
		out[strings.ToLower(k)] = v
	}
	return out
}
