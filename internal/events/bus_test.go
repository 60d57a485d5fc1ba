package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmateapp/shelfmate/internal/domain"
	"github.com/shelfmateapp/shelfmate/internal/logger"
)

func startBus(t *testing.T) *Bus {
	t.Helper()
	b := NewBus(logger.Discard().Logger)
	ctx, cancel := context.WithCancel(context.Background())
	go b.Start(ctx)
	t.Cleanup(func() {
		_ = b.Shutdown(context.Background())
		cancel()
	})
	return b
}

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case e, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBus_DeliversByKind(t *testing.T) {
	b := startBus(t)

	graph, err := b.Subscribe(TypeGraphMutated)
	require.NoError(t, err)
	all, err := b.Subscribe()
	require.NoError(t, err)

	b.Emit(New(TypeThemeChanged, ThemeChangedData{Preference: "dark", Dark: true}))
	at := time.Now()
	b.Emit(New(TypeGraphMutated, GraphMutatedData{At: at}))

	e := receive(t, graph)
	assert.Equal(t, TypeGraphMutated, e.Type)
	assert.Equal(t, at, e.Data.(GraphMutatedData).At)

	assert.Equal(t, TypeThemeChanged, receive(t, all).Type)
	assert.Equal(t, TypeGraphMutated, receive(t, all).Type)
}

func TestBus_Unsubscribe(t *testing.T) {
	b := startBus(t)

	sub, err := b.Subscribe(TypeSessionChanged)
	require.NoError(t, err)
	assert.Equal(t, 1, b.SubscriberCount())

	b.Unsubscribe(sub)
	assert.Equal(t, 0, b.SubscriberCount())

	_, ok := <-sub.C
	assert.False(t, ok)

	// Second unsubscribe is harmless.
	b.Unsubscribe(sub)
}

func TestBus_ShutdownDrainsAndCloses(t *testing.T) {
	b := NewBus(logger.Discard().Logger)

	sub, err := b.Subscribe()
	require.NoError(t, err)

	// Queued before the loop starts.
	b.Emit(New(TypeSessionChanged, SessionChangedData{Status: domain.SessionSignedIn}))

	go b.Start(context.Background())
	require.NoError(t, b.Shutdown(context.Background()))

	e, ok := <-sub.C
	require.True(t, ok)
	assert.Equal(t, TypeSessionChanged, e.Type)

	_, ok = <-sub.C
	assert.False(t, ok)

	// Emit after shutdown is dropped, not a panic.
	b.Emit(New(TypeSessionChanged, nil))
	require.NoError(t, b.Shutdown(context.Background()))
}

func TestBus_ShutdownWithoutStart(t *testing.T) {
	b := NewBus(logger.Discard().Logger)
	sub, err := b.Subscribe()
	require.NoError(t, err)

	require.NoError(t, b.Shutdown(context.Background()))
	_, ok := <-sub.C
	assert.False(t, ok)
}

func TestBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := startBus(t)

	slow, err := b.Subscribe(TypeLibraryLoaded)
	require.NoError(t, err)
	fast, err := b.Subscribe(TypeLibraryLoaded)
	require.NoError(t, err)

	for i := range subscriptionBuffer + 10 {
		b.Emit(New(TypeLibraryLoaded, LibraryLoadedData{Generation: uint64(i)}))
		receive(t, fast)
	}

	assert.Len(t, slow.C, subscriptionBuffer)
}

func TestNoopEmitter(t *testing.T) {
	var e Emitter = NoopEmitter{}
	e.Emit(New(TypeGraphMutated, nil))
}
