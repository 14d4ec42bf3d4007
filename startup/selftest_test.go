package startup

import (
	"context"
	"testing"
	"time"

	"github.com/amp-labs/winedispenser/clock"
	"github.com/amp-labs/winedispenser/hardware"
	"github.com/amp-labs/winedispenser/hardware/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfTestSequence(t *testing.T) {
	t.Parallel()

	bank := sim.NewBank()
	board, err := hardware.NewBoard(bank)
	require.NoError(t, err)

	var phases []sim.Outputs

	fake := &clock.Fake{OnSleep: func(int, time.Duration) {
		phases = append(phases, bank.Outputs())
	}}

	require.NoError(t, SelfTest(t.Context(), board, WithSleeper(fake)))

	lit := sim.Outputs{PowerLed: true, WaterLed: true, WineLed: true, Status: false}
	dark := sim.Outputs{Status: true}

	assert.Equal(t, []sim.Outputs{lit, dark, lit, dark, lit, dark}, phases)
	assert.Equal(t, 600*time.Millisecond, fake.Elapsed())
	assert.Zero(t, bank.Writes(hardware.LineWaterValve))
	assert.Zero(t, bank.Writes(hardware.LineWinePump))
}

func TestSelfTestOptions(t *testing.T) {
	t.Parallel()

	bank := sim.NewBank()
	board, err := hardware.NewBoard(bank)
	require.NoError(t, err)

	fake := &clock.Fake{}
	require.NoError(t, SelfTest(t.Context(), board,
		WithSleeper(fake), WithBlinks(1), WithPeriod(5*time.Millisecond)))

	assert.Equal(t, []time.Duration{5 * time.Millisecond, 5 * time.Millisecond}, fake.Calls())
	assert.Equal(t, int64(2), bank.Writes(hardware.LinePowerLed))
}

func TestSelfTestCancelled(t *testing.T) {
	t.Parallel()

	bank := sim.NewBank()
	board, err := hardware.NewBoard(bank)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err = SelfTest(ctx, board, WithSleeper(&clock.Fake{}))
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "cycle 1")
}
