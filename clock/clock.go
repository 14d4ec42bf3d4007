// Package clock provides the delay primitive the control loop and the
// self-test wait on, so tests can substitute a clock that never blocks.
package clock

import (
	"context"
	"sync"
	"time"
)

// Sleeper pauses the caller for a duration, or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, dur time.Duration) error
}

// Real sleeps on the wall clock.
type Real struct{}

var _ Sleeper = Real{}

func (Real) Sleep(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(dur)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Fake returns from Sleep immediately. It records every requested duration
// and calls OnSleep, if set, once per call with the 1-based call number. A
// test uses OnSleep to change the simulated world between polls.
type Fake struct {
	OnSleep func(call int, dur time.Duration)

	mut   sync.Mutex
	calls []time.Duration
}

var _ Sleeper = (*Fake)(nil)

func (f *Fake) Sleep(ctx context.Context, dur time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mut.Lock()
	f.calls = append(f.calls, dur)
	call := len(f.calls)
	hook := f.OnSleep
	f.mut.Unlock()

	if hook != nil {
		hook(call, dur)
	}

	return nil
}

// Calls returns the durations passed to Sleep, in order.
func (f *Fake) Calls() []time.Duration {
	f.mut.Lock()
	defer f.mut.Unlock()

	out := make([]time.Duration, len(f.calls))
	copy(out, f.calls)

	return out
}

// Elapsed is the sum of every requested duration.
func (f *Fake) Elapsed() time.Duration {
	var total time.Duration
	for _, d := range f.Calls() {
		total += d
	}

	return total
}
