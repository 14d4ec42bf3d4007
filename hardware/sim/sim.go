// Package sim provides an in-memory PinBank so the controller can run and be
// tested on a host without hardware.
//
// Input lines idle high, the way a pulled-up switch does: button released,
// both reservoirs full. The helper methods speak in physical terms and take
// care of the active-low encoding.
package sim

import (
	"fmt"

	"github.com/amp-labs/winedispenser/hardware"
	"go.uber.org/atomic"
)

type line struct {
	level  *atomic.Bool
	writes *atomic.Int64
}

func (l *line) Get() bool {
	return l.level.Load()
}

func (l *line) Set(high bool) {
	l.level.Store(high)
	l.writes.Inc()
}

// Bank is a simulated PinBank. It is safe for one goroutine to change inputs
// while another runs the control loop.
type Bank struct {
	inputs  map[hardware.Line]*line
	outputs map[hardware.Line]*line
}

var _ hardware.PinBank = (*Bank)(nil)

// NewBank returns a bank with every dispenser line present, inputs high and
// outputs low.
func NewBank() *Bank {
	bank := &Bank{
		inputs:  make(map[hardware.Line]*line),
		outputs: make(map[hardware.Line]*line),
	}

	for _, l := range hardware.InputLines() {
		bank.inputs[l] = &line{level: atomic.NewBool(true), writes: atomic.NewInt64(0)}
	}

	for _, l := range hardware.OutputLines() {
		bank.outputs[l] = &line{level: atomic.NewBool(false), writes: atomic.NewInt64(0)}
	}

	return bank
}

func (b *Bank) Input(l hardware.Line) (hardware.InputPin, error) { //nolint:ireturn
	pin, ok := b.inputs[l]
	if !ok {
		return nil, fmt.Errorf("%w: %s", hardware.ErrUnknownLine, l)
	}

	return pin, nil
}

func (b *Bank) Output(l hardware.Line) (hardware.OutputPin, error) { //nolint:ireturn
	pin, ok := b.outputs[l]
	if !ok {
		return nil, fmt.Errorf("%w: %s", hardware.ErrUnknownLine, l)
	}

	return pin, nil
}

// SetLevel drives an input line to the given electrical level.
// It panics if l is not an input line.
func (b *Bank) SetLevel(l hardware.Line, high bool) {
	pin, ok := b.inputs[l]
	if !ok {
		panic(fmt.Sprintf("sim: %s is not an input line", l))
	}

	pin.level.Store(high)
}

// Level returns the electrical level of any line.
func (b *Bank) Level(l hardware.Line) bool {
	if pin, ok := b.inputs[l]; ok {
		return pin.Get()
	}

	if pin, ok := b.outputs[l]; ok {
		return pin.Get()
	}

	return false
}

// Writes returns how many times an output line has been written.
func (b *Bank) Writes(l hardware.Line) int64 {
	pin, ok := b.outputs[l]
	if !ok {
		return 0
	}

	return pin.writes.Load()
}

// TotalWrites sums Writes over every output line.
func (b *Bank) TotalWrites() int64 {
	var total int64
	for _, pin := range b.outputs {
		total += pin.writes.Load()
	}

	return total
}

// SetDispense presses (true) or releases (false) the dispense button.
func (b *Bank) SetDispense(pressed bool) {
	b.SetLevel(hardware.LineDispense, !pressed)
}

// SetWaterLow empties (true) or refills (false) the water reservoir.
func (b *Bank) SetWaterLow(low bool) {
	b.SetLevel(hardware.LineWaterLow, !low)
}

// SetWineLow empties (true) or refills (false) the wine reservoir.
func (b *Bank) SetWineLow(low bool) {
	b.SetLevel(hardware.LineWineLow, !low)
}

// Outputs is the state of every output line at one instant.
type Outputs struct {
	Water    bool
	Wine     bool
	PowerLed bool
	WaterLed bool
	WineLed  bool
	Status   bool
}

// Outputs reads back every output line.
func (b *Bank) Outputs() Outputs {
	return Outputs{
		Water:    b.Level(hardware.LineWaterValve),
		Wine:     b.Level(hardware.LineWinePump),
		PowerLed: b.Level(hardware.LinePowerLed),
		WaterLed: b.Level(hardware.LineWaterLed),
		WineLed:  b.Level(hardware.LineWineLed),
		Status:   b.Level(hardware.LineStatus),
	}
}

// PumpsRunning reports whether either pump line is driven.
func (o Outputs) PumpsRunning() bool {
	return o.Water || o.Wine
}

func (o Outputs) String() string {
	return fmt.Sprintf("water=%s wine=%s power_led=%s water_led=%s wine_led=%s",
		onOff(o.Water), onOff(o.Wine), onOff(o.PowerLed), onOff(o.WaterLed), onOff(o.WineLed))
}

func onOff(v bool) string {
	if v {
		return "on"
	}

	return "off"
}
