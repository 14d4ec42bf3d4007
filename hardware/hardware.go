// Package hardware abstracts the dispenser's digital I/O lines.
//
// The core never touches pins directly. It talks to a SensorReader and an
// ActuatorDriver, which the Board implements on top of a PinBank. A PinBank is
// whatever can hand out raw lines: the simulated bank in hardware/sim on a
// host, or a GPIO driver on the device.
package hardware

// SensorReader reports the logical state of the three inputs.
type SensorReader interface {
	// DispenseRequested is true while the dispense button is held.
	DispenseRequested() bool
	// WaterLow is true while the water float switch reports empty.
	WaterLow() bool
	// WineLow is true while the wine float switch reports empty.
	WineLow() bool
}

// ActuatorDriver drives the pumps and the indicator lights. Every call is an
// immediate, idempotent write to one output line.
type ActuatorDriver interface {
	SetWater(on bool)
	SetWine(on bool)
	SetPowerLed(on bool)
	SetWaterLed(on bool)
	SetWineLed(on bool)
}

// StatusLine drives the onboard status line. Only the startup self-test uses it.
type StatusLine interface {
	SetStatusLine(high bool)
}

// Snapshot is one reading of all three inputs.
type Snapshot struct {
	DispenseRequested bool
	WaterLow          bool
	WineLow           bool
}

// Sample reads every input of r once, in water, wine, dispense order.
func Sample(r SensorReader) Snapshot {
	water := r.WaterLow()
	wine := r.WineLow()

	return Snapshot{
		DispenseRequested: r.DispenseRequested(),
		WaterLow:          water,
		WineLow:           wine,
	}
}
