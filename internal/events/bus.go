package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/shelfmateapp/shelfmate/internal/id"
)

const (
	busBuffer          = 256
	subscriptionBuffer = 32
)

// Subscription receives events of the kinds it asked for.
type Subscription struct {
	ID string
	// C is closed when the subscription ends.
	C     <-chan Event
	ch    chan Event
	kinds []Type
}

func (s *Subscription) wants(t Type) bool {
	return len(s.kinds) == 0 || slices.Contains(s.kinds, t)
}

// Bus fans events out to subscribers from a single broadcast goroutine.
type Bus struct {
	subs   map[string]*Subscription
	events chan Event
	logger *slog.Logger
	wg     sync.WaitGroup
	mu     sync.RWMutex

	shutdownMu sync.RWMutex
	shutdown   bool
}

// NewBus creates a bus. Call Start in a goroutine before expecting delivery.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[string]*Subscription),
		events: make(chan Event, busBuffer),
		logger: logger,
	}
}

// Start runs the broadcast loop until ctx is done or Shutdown closes the queue.
func (b *Bus) Start(ctx context.Context) {
	b.wg.Add(1)
	defer b.wg.Done()

	for {
		select {
		case event, ok := <-b.events:
			if !ok {
				b.closeAll()
				return
			}
			b.broadcast(event)

		case <-ctx.Done():
			b.closeAll()
			return
		}
	}
}

// Shutdown stops accepting events, drains what is queued, and closes every subscription.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.shutdownMu.Lock()
	if b.shutdown {
		b.shutdownMu.Unlock()
		return nil
	}
	b.shutdown = true
	close(b.events)
	b.shutdownMu.Unlock()

	// Drain alongside Start; whichever goroutine receives an event broadcasts it.
	done := make(chan struct{})
	go func() {
		for event := range b.events {
			b.broadcast(event)
		}
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		b.logger.Warn("event drain timed out, some events may be lost")
		return ctx.Err()
	}

	b.closeAll()
	return nil
}

// Emit queues an event. Events emitted after Shutdown, or while the queue is full, are dropped.
func (b *Bus) Emit(event Event) {
	b.shutdownMu.RLock()
	defer b.shutdownMu.RUnlock()

	if b.shutdown {
		return
	}

	select {
	case b.events <- event:
	default:
		b.logger.Warn("event queue full, dropping event", slog.String("event_type", string(event.Type)))
	}
}

// Subscribe registers a subscriber for the given kinds. No kinds means every event.
func (b *Bus) Subscribe(kinds ...Type) (*Subscription, error) {
	subID, err := id.Generate("sub")
	if err != nil {
		return nil, err
	}

	ch := make(chan Event, subscriptionBuffer)
	sub := &Subscription{ID: subID, C: ch, ch: ch, kinds: kinds}

	b.mu.Lock()
	b.subs[sub.ID] = sub
	b.mu.Unlock()

	return sub, nil
}

// Unsubscribe removes a subscriber and closes its channel. Unknown ids are ignored.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	_, ok := b.subs[sub.ID]
	delete(b.subs, sub.ID)
	b.mu.Unlock()

	if ok {
		close(sub.ch)
	}
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) broadcast(event Event) {
	var delivered, dropped int

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if !sub.wants(event.Type) {
			continue
		}
		// Slow subscribers lose events rather than stall the bus.
		select {
		case sub.ch <- event:
			delivered++
		default:
			dropped++
			b.logger.Warn("dropped event for slow subscriber",
				slog.String("subscription_id", sub.ID),
				slog.String("event_type", string(event.Type)))
		}
	}

	b.logger.Debug("event broadcast",
		slog.String("event_type", string(event.Type)),
		slog.Group("stats",
			slog.Int("delivered", delivered),
			slog.Int("dropped", dropped)))
}

func (b *Bus) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for subID, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, subID)
	}
}
