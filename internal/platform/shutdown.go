package platform

import (
	"context"
	"os/signal"
)

// NewShutdownContext returns a context canceled when the process is asked to stop
func NewShutdownContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
