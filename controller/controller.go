// Package controller wires the board, the detector and the engine into the
// dispenser's single control loop.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/amp-labs/winedispenser/clock"
	"github.com/amp-labs/winedispenser/detector"
	"github.com/amp-labs/winedispenser/hardware"
	"github.com/amp-labs/winedispenser/logger"
	"github.com/amp-labs/winedispenser/startup"
	"github.com/amp-labs/winedispenser/statemachine"
	"github.com/amp-labs/winedispenser/statemachine/actions"
	"go.uber.org/atomic"
)

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("controller is already running")

// Controller owns the board and the engine. Run drives them from one
// goroutine; State and Ready may be called from any goroutine.
type Controller struct {
	cfg     Config
	board   *hardware.Board
	engine  *statemachine.Engine
	sleeper clock.Sleeper
	running atomic.Bool
	state   atomic.Uint32
	ready   chan struct{}
}

type options struct {
	sleeper    clock.Sleeper
	logger     statemachine.Logger
	engineOpts []statemachine.Option
}

// Option configures a Controller.
type Option func(*options)

// WithSleeper replaces the wall clock for both the self-test and the poll
// loop.
func WithSleeper(s clock.Sleeper) Option {
	return func(o *options) {
		o.sleeper = s
	}
}

// WithLogger replaces the engine's transition logger.
func WithLogger(l statemachine.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithEngineOptions passes extra options to the engine, such as a custom
// table.
func WithEngineOptions(opts ...statemachine.Option) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// New claims the pins of bank and builds the engine. Nothing is written to
// the outputs until Run.
func New(bank hardware.PinBank, cfg Config, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{
		sleeper: clock.Real{},
		logger:  statemachine.NewDefaultLogger(nil),
	}

	for _, opt := range opts {
		opt(&o)
	}

	board, err := hardware.NewBoard(bank)
	if err != nil {
		return nil, fmt.Errorf("failed to set up board: %w", err)
	}

	c := &Controller{
		cfg:     cfg,
		board:   board,
		sleeper: o.sleeper,
		ready:   make(chan struct{}),
	}

	engineOpts := append([]statemachine.Option{
		statemachine.WithLogger(&stateMirror{next: o.logger, state: &c.state}),
	}, o.engineOpts...)

	c.engine, err = statemachine.NewEngine(actions.New(board), engineOpts...)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// State returns the state most recently entered, or StateUnknown before the
// engine has started.
func (c *Controller) State() statemachine.State {
	return statemachine.State(c.state.Load()) //nolint:gosec // states fit in uint8
}

// Ready is closed once the self-test is over, the detector holds its
// baseline and the machine has entered Idle. Input changes made before then
// may be folded into the baseline and never reported. It stays open if Run
// fails earlier.
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

// Run performs the self-test, seeds the detector and then handles edge
// events until ctx is done. On return both pumps are off. The returned error
// is ctx's error, or the error that stopped the self-test or the engine.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	defer c.park(ctx)

	log := logger.Get(ctx)

	log.InfoContext(ctx, "Starting dispenser",
		"poll_interval", c.cfg.PollInterval,
		"boot_alarm", c.cfg.BootAlarm,
		"inputs", fmt.Sprintf("%+v", hardware.Sample(c.board)))

	if err := startup.SelfTest(ctx, c.board,
		startup.WithBlinks(c.cfg.SelfTestBlinks),
		startup.WithPeriod(c.cfg.SelfTestPeriod),
		startup.WithSleeper(c.sleeper),
	); err != nil {
		return err
	}

	detectorOpts := []detector.Option{
		detector.WithInterval(c.cfg.PollInterval),
		detector.WithSleeper(c.sleeper),
	}

	if c.cfg.BootAlarm {
		detectorOpts = append(detectorOpts, detector.WithBootAlarm())
	}

	det := detector.New(c.board, detectorOpts...)

	log.DebugContext(ctx, "Detector seeded",
		"water_low", det.Baseline().WaterLow,
		"wine_low", det.Baseline().WineLow)

	err := c.engine.Run(ctx, &readySource{next: det, ready: c.ready})
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		log.InfoContext(ctx, "Control loop stopped", "state", c.State().String())

		return ctxErr
	}

	return err
}

// park stops both pumps so a stopped host simulator never leaves a valve open.
func (c *Controller) park(ctx context.Context) {
	c.board.SetWater(false)
	c.board.SetWine(false)

	logger.Get(ctx).DebugContext(ctx, "Pumps parked")
}

// readySource closes ready on the first poll, which the engine only makes
// after Start succeeded.
type readySource struct {
	next  statemachine.EventSource
	ready chan struct{}
	once  sync.Once
}

func (s *readySource) Next(ctx context.Context) (statemachine.Event, error) {
	s.once.Do(func() {
		logger.Get(ctx).DebugContext(ctx, "Controller ready")
		close(s.ready)
	})

	return s.next.Next(ctx)
}

// stateMirror records each entered state for State before passing the hook
// on.
type stateMirror struct {
	next  statemachine.Logger
	state *atomic.Uint32
}

func (m *stateMirror) StateEntered(ctx context.Context, state statemachine.State) {
	m.state.Store(uint32(state))

	if m.next != nil {
		m.next.StateEntered(ctx, state)
	}
}

func (m *stateMirror) TransitionExecuted(ctx context.Context, from, to statemachine.State, event statemachine.Event) {
	if m.next != nil {
		m.next.TransitionExecuted(ctx, from, to, event)
	}
}

func (m *stateMirror) EventIgnored(ctx context.Context, state statemachine.State, event statemachine.Event) {
	if m.next != nil {
		m.next.EventIgnored(ctx, state, event)
	}
}
