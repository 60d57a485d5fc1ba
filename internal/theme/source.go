package theme

import (
	"context"
	"sync"
)

// SchemeSource reports the OS color scheme and pushes changes.
type SchemeSource interface {
	// Current returns the last known scheme.
	Current() Scheme
	// Watch delivers scheme changes until ctx is done, then closes the channel.
	Watch(ctx context.Context) (<-chan Scheme, error)
}

// StaticSource reports a scheme that only changes through Set. THEME_SOURCE=none uses it.
type StaticSource struct {
	mu       sync.Mutex
	scheme   Scheme
	watchers []chan Scheme
}

// NewStaticSource creates a source reporting scheme.
func NewStaticSource(scheme Scheme) *StaticSource {
	return &StaticSource{scheme: scheme}
}

// Current returns the scheme.
func (s *StaticSource) Current() Scheme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheme
}

// Watch returns a channel that receives every Set until ctx is done.
func (s *StaticSource) Watch(ctx context.Context) (<-chan Scheme, error) {
	ch := make(chan Scheme, 4)

	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, w := range s.watchers {
			if w == ch {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()

	return ch, nil
}

// Set changes the scheme and notifies watchers, as an OS settings change would.
func (s *StaticSource) Set(scheme Scheme) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scheme = scheme
	for _, w := range s.watchers {
		select {
		case w <- scheme:
		default:
		}
	}
}
