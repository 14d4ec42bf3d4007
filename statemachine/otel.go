package statemachine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/amp-labs/winedispenser/statemachine"

// startHandleSpan creates the span covering one Handle call.
// The caller is responsible for calling span.End().
//
//nolint:spancheck // Span lifecycle managed by caller
func startHandleSpan(ctx context.Context, from State, event Event) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "statemachine.handle")
	span.SetAttributes(
		attribute.String("from_state", from.String()),
		attribute.String("event", event.String()),
	)

	return ctx, span
}

// startEntrySpan creates a child span for a state's entry action.
// The caller is responsible for calling span.End().
//
//nolint:spancheck // Span lifecycle managed by caller
func startEntrySpan(ctx context.Context, state State) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "state."+state.String())
	span.SetAttributes(attribute.String("state", state.String()))

	return ctx, span
}
