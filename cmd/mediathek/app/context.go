package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ContextWithSignals returns a context that ends on SIGINT or SIGTERM.
// A long update or the API server stops through it.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
