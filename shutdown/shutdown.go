// Package shutdown turns SIGINT and SIGTERM into context cancellation so the
// dispenser can park its pumps before the process exits.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/amp-labs/winedispenser/logger"
)

// Handler owns the signal channel and the hooks to run before cancellation.
type Handler struct {
	mut     sync.Mutex
	hooks   []func(ctx context.Context)
	signals chan os.Signal
	request chan struct{}
	once    sync.Once
}

// New returns a handler that is not yet listening.
func New() *Handler {
	return &Handler{
		signals: make(chan os.Signal, 1),
		request: make(chan struct{}, 1),
	}
}

// BeforeShutdown registers a function to be called before the context
// returned by Listen is cancelled. The context passed to the hook is still
// alive. Hooks run in registration order.
func (h *Handler) BeforeShutdown(hook func(ctx context.Context)) {
	h.mut.Lock()
	defer h.mut.Unlock()

	h.hooks = append(h.hooks, hook)
}

// Trigger starts the same shutdown a signal would, for a program that is
// finished on its own. Extra calls are ignored.
func (h *Handler) Trigger() {
	select {
	case h.request <- struct{}{}:
	default:
	}
}

// Listen subscribes to SIGINT and SIGTERM and returns a context derived from
// parent that is cancelled after the first signal or Trigger, once every
// hook has run.
func (h *Handler) Listen(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)

	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer cancel()
		defer signal.Stop(h.signals)

		select {
		case sig := <-h.signals:
			logger.Get(ctx).WarnContext(ctx, "Received "+sig.String()+", shutting down...")
			h.cleanup(ctx)
		case <-h.request:
			logger.Get(ctx).InfoContext(ctx, "Shutdown requested")
			h.cleanup(ctx)
		case <-ctx.Done():
		}
	}()

	return ctx
}

func (h *Handler) cleanup(ctx context.Context) {
	h.once.Do(func() {
		h.mut.Lock()
		hooks := h.hooks
		h.hooks = nil
		h.mut.Unlock()

		for _, hook := range hooks {
			hook(ctx)
		}
	})
}

// SetupHandler listens on a fresh handler rooted at the background context.
func SetupHandler() (context.Context, *Handler) {
	h := New()

	return h.Listen(context.Background()), h
}
