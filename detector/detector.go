// Package detector turns polled sensor levels into a stream of edge events.
package detector

import (
	"context"
	"time"

	"github.com/amp-labs/winedispenser/clock"
	"github.com/amp-labs/winedispenser/hardware"
	"github.com/amp-labs/winedispenser/statemachine"
)

// DefaultInterval is the pause between polls that found no change.
const DefaultInterval = 10 * time.Millisecond

// Detector remembers the last reported value of each input and reports one
// change per call to Next. It is owned by the control loop and is not safe
// for concurrent use.
type Detector struct {
	reader    hardware.SensorReader
	sleeper   clock.Sleeper
	interval  time.Duration
	bootAlarm bool

	last hardware.Snapshot
}

var _ statemachine.EventSource = (*Detector)(nil)

// Option configures a Detector.
type Option func(*Detector)

// WithInterval sets the pause between unsuccessful polls.
func WithInterval(interval time.Duration) Option {
	return func(d *Detector) {
		d.interval = interval
	}
}

// WithSleeper replaces the wall clock.
func WithSleeper(sleeper clock.Sleeper) Option {
	return func(d *Detector) {
		d.sleeper = sleeper
	}
}

// WithBootAlarm starts every flag from the neutral value instead of the live
// fluid levels, so a reservoir that is already empty at power-up is reported
// by the first poll.
func WithBootAlarm() Option {
	return func(d *Detector) {
		d.bootAlarm = true
	}
}

// New creates a detector over reader. Unless WithBootAlarm is given, the
// water and wine baselines are the levels read now, so a reservoir that is
// already empty is only reported once it changes. The dispense baseline is
// always not-requested.
func New(reader hardware.SensorReader, opts ...Option) *Detector {
	d := &Detector{
		reader:   reader,
		sleeper:  clock.Real{},
		interval: DefaultInterval,
	}

	for _, opt := range opts {
		opt(d)
	}

	if !d.bootAlarm {
		d.last.WaterLow = reader.WaterLow()
		d.last.WineLow = reader.WineLow()
	}

	return d
}

// Baseline returns the last reported value of each input.
func (d *Detector) Baseline() hardware.Snapshot {
	return d.last
}

// Next blocks until an input differs from its last reported value and returns
// the matching event. Water is checked before wine, and wine before dispense;
// only the first changed input is reported per call. Next returns ctx's error
// if ctx is done while waiting.
func (d *Detector) Next(ctx context.Context) (statemachine.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return statemachine.EventUnknown, err
		}

		pollsTotal.Inc()

		if event, ok := d.poll(); ok {
			edgesTotal.WithLabelValues(event.String()).Inc()

			return event, nil
		}

		if err := d.sleeper.Sleep(ctx, d.interval); err != nil {
			return statemachine.EventUnknown, err
		}
	}
}

func (d *Detector) poll() (statemachine.Event, bool) {
	if low := d.reader.WaterLow(); low != d.last.WaterLow {
		d.last.WaterLow = low

		return pick(low, statemachine.WaterLevelDroppedLow, statemachine.WaterLevelRecovered), true
	}

	if low := d.reader.WineLow(); low != d.last.WineLow {
		d.last.WineLow = low

		return pick(low, statemachine.WineLevelDroppedLow, statemachine.WineLevelRecovered), true
	}

	if requested := d.reader.DispenseRequested(); requested != d.last.DispenseRequested {
		d.last.DispenseRequested = requested

		return pick(requested, statemachine.DispenseStart, statemachine.DispenseStop), true
	}

	return statemachine.EventUnknown, false
}

func pick(cond bool, ifTrue, ifFalse statemachine.Event) statemachine.Event {
	if cond {
		return ifTrue
	}

	return ifFalse
}
