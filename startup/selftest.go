// Package startup runs the power-up self-test that precedes the control loop.
package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/amp-labs/winedispenser/clock"
	"github.com/amp-labs/winedispenser/hardware"
	"github.com/amp-labs/winedispenser/logger"
)

const (
	// DefaultBlinks is how many on/off cycles the self-test runs.
	DefaultBlinks = 3
	// DefaultPeriod is how long each half of a cycle lasts.
	DefaultPeriod = 100 * time.Millisecond
)

// Panel is what the self-test drives: the three indicators and the onboard
// status line.
type Panel interface {
	hardware.ActuatorDriver
	hardware.StatusLine
}

type options struct {
	blinks  int
	period  time.Duration
	sleeper clock.Sleeper
}

// Option is a functional option for SelfTest.
type Option func(*options)

// WithBlinks sets the number of on/off cycles.
func WithBlinks(n int) Option {
	return func(o *options) {
		o.blinks = n
	}
}

// WithPeriod sets the length of each on and each off phase.
func WithPeriod(d time.Duration) Option {
	return func(o *options) {
		o.period = d
	}
}

// WithSleeper replaces the wall clock.
func WithSleeper(s clock.Sleeper) Option {
	return func(o *options) {
		o.sleeper = s
	}
}

// SelfTest blinks every indicator so an operator can see that the lamps and
// the board work. In each cycle the power, wine and water indicators light
// with the status line low, then go dark with the status line high. Pumps are
// not touched. All indicators are left off.
func SelfTest(ctx context.Context, panel Panel, opts ...Option) error {
	o := options{
		blinks:  DefaultBlinks,
		period:  DefaultPeriod,
		sleeper: clock.Real{},
	}

	for _, opt := range opts {
		opt(&o)
	}

	logger.Get(ctx).DebugContext(ctx, "Running self-test", "blinks", o.blinks, "period", o.period)

	for cycle := range o.blinks {
		setIndicators(panel, true)

		if err := o.sleeper.Sleep(ctx, o.period); err != nil {
			return fmt.Errorf("self-test cycle %d: %w", cycle+1, err)
		}

		setIndicators(panel, false)

		if err := o.sleeper.Sleep(ctx, o.period); err != nil {
			return fmt.Errorf("self-test cycle %d: %w", cycle+1, err)
		}
	}

	return nil
}

func setIndicators(panel Panel, on bool) {
	panel.SetWineLed(on)
	panel.SetWaterLed(on)
	panel.SetPowerLed(on)
	panel.SetStatusLine(!on)
}
