package sim

import (
	"testing"

	"github.com/amp-labs/winedispenser/hardware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhysicalHelpers(t *testing.T) {
	t.Parallel()

	bank := NewBank()

	bank.SetDispense(true)
	assert.False(t, bank.Level(hardware.LineDispense))

	bank.SetWaterLow(true)
	assert.False(t, bank.Level(hardware.LineWaterLow))

	bank.SetWineLow(true)
	bank.SetWineLow(false)
	assert.True(t, bank.Level(hardware.LineWineLow))
}

func TestUnknownLines(t *testing.T) {
	t.Parallel()

	bank := NewBank()

	_, err := bank.Input(hardware.LineWaterValve)
	require.ErrorIs(t, err, hardware.ErrUnknownLine)

	_, err = bank.Output(hardware.LineDispense)
	require.ErrorIs(t, err, hardware.ErrUnknownLine)

	assert.Panics(t, func() { bank.SetLevel(hardware.LinePowerLed, true) })
	assert.Zero(t, bank.Writes(hardware.LineDispense))
}

func TestOutputsSnapshot(t *testing.T) {
	t.Parallel()

	bank := NewBank()

	pin, err := bank.Output(hardware.LinePowerLed)
	require.NoError(t, err)
	pin.Set(true)

	pin, err = bank.Output(hardware.LineWinePump)
	require.NoError(t, err)
	pin.Set(true)

	out := bank.Outputs()
	assert.Equal(t, Outputs{PowerLed: true, Wine: true}, out)
	assert.True(t, out.PumpsRunning())
	assert.Equal(t, "water=off wine=on power_led=on water_led=off wine_led=off", out.String())
	assert.Equal(t, int64(2), bank.TotalWrites())
}
