package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for the event bus to drain.
	shutdownTimeout = 5 * time.Second
)
