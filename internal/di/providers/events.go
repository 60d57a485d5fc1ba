package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/shelfmateapp/shelfmate/internal/events"
	"github.com/shelfmateapp/shelfmate/internal/logger"
)

// BusHandle wraps the event bus with its context for lifecycle management.
type BusHandle struct {
	*events.Bus
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *BusHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Bus.Shutdown(ctx)
}

// ProvideBus provides the in-process event bus, started in the background.
func ProvideBus(i do.Injector) (*BusHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	bus := events.NewBus(log.WithComponent("events"))

	ctx, cancel := context.WithCancel(context.Background())
	go bus.Start(ctx)

	return &BusHandle{Bus: bus, cancel: cancel}, nil
}
