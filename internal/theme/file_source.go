package theme

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileSource reads the scheme from a text file containing "dark" or "light" and watches it for changes.
// Anything else, including a missing file, means no preference.
type FileSource struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	scheme Scheme
}

// NewFileSource creates a source for path and reads it once.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	s := &FileSource{path: filepath.Clean(path), logger: logger}
	s.scheme = s.read()
	return s
}

func (s *FileSource) read() Scheme {
	//#nosec G304 -- path comes from configuration
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read scheme file", "path", s.path, "error", err)
		}
		return SchemeNoPreference
	}
	return parseSchemeText(string(data))
}

func parseSchemeText(text string) Scheme {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "dark":
		return SchemeDark
	case "light":
		return SchemeLight
	default:
		return SchemeNoPreference
	}
}

// Current returns the last scheme read from the file.
func (s *FileSource) Current() Scheme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheme
}

// Watch watches the file's parent directory so atomic replacements are seen too.
func (s *FileSource) Watch(ctx context.Context) (<-chan Scheme, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	out := make(chan Scheme, 4)
	go func() {
		defer close(out)
		defer w.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != s.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				s.refresh(ctx, out)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("scheme file watcher error", "error", err)
			}
		}
	}()

	return out, nil
}

// refresh re-reads the file and forwards the scheme if it changed.
func (s *FileSource) refresh(ctx context.Context, out chan<- Scheme) {
	next := s.read()

	s.mu.Lock()
	changed := next != s.scheme
	s.scheme = next
	s.mu.Unlock()

	if !changed {
		return
	}
	select {
	case out <- next:
	case <-ctx.Done():
	}
}
