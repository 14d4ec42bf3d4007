package statemachine

import (
	"context"
	"log/slog"

	"github.com/amp-labs/winedispenser/logger"
)

// Logger provides logging hooks for engine activity.
type Logger interface {
	StateEntered(ctx context.Context, state State)
	TransitionExecuted(ctx context.Context, from, to State, event Event)
	EventIgnored(ctx context.Context, state State, event Event)
}

// DefaultLogger implements Logger using slog.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger creates a logger writing to l. With a nil l it writes to
// logger.Get(ctx) at call time, so context values are attached.
func NewDefaultLogger(l *slog.Logger) *DefaultLogger {
	return &DefaultLogger{logger: l}
}

func (l *DefaultLogger) get(ctx context.Context) *slog.Logger {
	if l.logger != nil {
		return l.logger
	}

	return logger.Get(ctx)
}

func (l *DefaultLogger) StateEntered(ctx context.Context, state State) {
	l.get(ctx).DebugContext(ctx, "State entered", "state", state.String())
}

func (l *DefaultLogger) TransitionExecuted(ctx context.Context, from, to State, event Event) {
	l.get(ctx).InfoContext(ctx, "Transition executed",
		"from", from.String(),
		"to", to.String(),
		"event", event.String(),
	)
}

func (l *DefaultLogger) EventIgnored(ctx context.Context, state State, event Event) {
	l.get(ctx).DebugContext(ctx, "Event ignored",
		"state", state.String(),
		"event", event.String(),
	)
}
