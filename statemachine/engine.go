package statemachine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Metric outcome constants.
const (
	outcomeApplied = "applied"
	outcomeIgnored = "ignored"
	outcomeError   = "error"
)

// Engine holds the current machine state and resolves events against the
// rule table. It is driven by a single control loop and is not safe for
// concurrent use.
type Engine struct {
	table   Table
	actions EntryActions
	logger  Logger

	current State
	started bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTable replaces the default rule table. The table is copied.
func WithTable(table Table) Option {
	return func(e *Engine) {
		e.table = append(Table(nil), table...)
	}
}

// WithLogger sets the logger hooks. A nil logger disables logging.
func WithLogger(logger Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine that dispatches state entries to actions.
func NewEngine(actions EntryActions, opts ...Option) (*Engine, error) {
	if actions == nil {
		return nil, ErrNoEntryActions
	}

	engine := &Engine{
		table:   DefaultTable(),
		actions: actions,
		logger:  NewDefaultLogger(nil),
		current: StateUnknown,
	}

	for _, opt := range opts {
		opt(engine)
	}

	if err := engine.table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rule table: %w", err)
	}

	return engine, nil
}

// Current returns the current state. Before Start it is StateUnknown.
func (e *Engine) Current() State {
	return e.current
}

// Table returns a copy of the engine's rule table.
func (e *Engine) Table() Table {
	return append(Table(nil), e.table...)
}

// Start puts the machine in Idle and runs the Idle entry action.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.enter(ctx, Idle); err != nil {
		return WrapStateError(Idle, err)
	}

	e.current = Idle
	e.started = true
	recordCurrentState(Idle)

	return nil
}

// Handle resolves event against the current state. If a rule matches, the
// target state's entry action runs once and the target becomes current; the
// result is true. If none matches, nothing changes and the result is false.
func (e *Engine) Handle(ctx context.Context, event Event) (applied bool, err error) {
	if !e.started {
		return false, ErrNotStarted
	}

	from := e.current

	ctx, span := startHandleSpan(ctx, from, event)

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		span.SetAttributes(attribute.Bool("applied", applied))
		span.End()
	}()

	to, found := e.table.Lookup(from, event)
	if !found {
		eventsTotal.WithLabelValues(event.String(), outcomeIgnored).Inc()

		if e.logger != nil {
			e.logger.EventIgnored(ctx, from, event)
		}

		return false, nil
	}

	if err := e.enter(ctx, to); err != nil {
		eventsTotal.WithLabelValues(event.String(), outcomeError).Inc()

		return false, WrapStateError(from, err)
	}

	e.current = to

	eventsTotal.WithLabelValues(event.String(), outcomeApplied).Inc()
	transitionsTotal.WithLabelValues(from.String(), to.String()).Inc()
	recordCurrentState(to)

	if e.logger != nil {
		e.logger.TransitionExecuted(ctx, from, to, event)
	}

	return true, nil
}

// Run starts the machine and then feeds it events from source until source
// returns an error.
func (e *Engine) Run(ctx context.Context, source EventSource) error {
	if err := e.Start(ctx); err != nil {
		return err
	}

	for {
		event, err := source.Next(ctx)
		if err != nil {
			return WrapStateError(e.current, err)
		}

		if _, err := e.Handle(ctx, event); err != nil {
			return err
		}
	}
}

func (e *Engine) enter(ctx context.Context, state State) (err error) {
	ctx, span := startEntrySpan(ctx, state)
	start := time.Now()

	defer func() {
		span.SetAttributes(attribute.Int64("duration_us", time.Since(start).Microseconds()))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
	}()

	if err := e.actions.Enter(ctx, state); err != nil {
		return err
	}

	if e.logger != nil {
		e.logger.StateEntered(ctx, state)
	}

	return nil
}
