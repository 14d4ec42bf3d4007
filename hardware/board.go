package hardware

import (
	"errors"
	"fmt"
)

// ErrUnknownLine is returned when a PinBank cannot provide a line the board needs.
var ErrUnknownLine = errors.New("unknown line")

// Line names a physical I/O line by its port and bit.
type Line string

// Lines used by the dispenser.
const (
	LineDispense Line = "PA0"
	LineWaterLow Line = "PA1"
	LineWineLow  Line = "PA2"

	LineWaterValve Line = "PB2"
	LineWinePump   Line = "PB3"

	LineWaterLed Line = "PA5"
	LineWineLed  Line = "PA6"
	LinePowerLed Line = "PA7"

	LineStatus Line = "PD7"
)

// InputLines lists the board's input lines in the order they are claimed.
func InputLines() []Line {
	return []Line{LineDispense, LineWaterLow, LineWineLow}
}

// OutputLines lists the board's output lines in the order they are claimed.
func OutputLines() []Line {
	return []Line{LineWaterValve, LineWinePump, LineWaterLed, LineWineLed, LinePowerLed, LineStatus}
}

// InputPin reads the electrical level of one line. True means high.
type InputPin interface {
	Get() bool
}

// OutputPin sets the electrical level of one line. True means high.
type OutputPin interface {
	Set(high bool)
}

// PinBank hands out configured lines.
type PinBank interface {
	Input(line Line) (InputPin, error)
	Output(line Line) (OutputPin, error)
}

// Board maps the dispenser's logical signals onto raw lines. Inputs are
// active-low (a low line means the condition holds); outputs are active-high.
type Board struct {
	dispense InputPin
	waterLow InputPin
	wineLow  InputPin

	water    OutputPin
	wine     OutputPin
	waterLed OutputPin
	wineLed  OutputPin
	powerLed OutputPin
	status   OutputPin
}

var (
	_ SensorReader   = (*Board)(nil)
	_ ActuatorDriver = (*Board)(nil)
	_ StatusLine     = (*Board)(nil)
)

// NewBoard claims every line the dispenser uses from bank.
func NewBoard(bank PinBank) (*Board, error) {
	inputs := make(map[Line]InputPin, len(InputLines()))

	for _, line := range InputLines() {
		pin, err := bank.Input(line)
		if err != nil {
			return nil, fmt.Errorf("claiming input %s: %w", line, err)
		}

		inputs[line] = pin
	}

	outputs := make(map[Line]OutputPin, len(OutputLines()))

	for _, line := range OutputLines() {
		pin, err := bank.Output(line)
		if err != nil {
			return nil, fmt.Errorf("claiming output %s: %w", line, err)
		}

		outputs[line] = pin
	}

	return &Board{
		dispense: inputs[LineDispense],
		waterLow: inputs[LineWaterLow],
		wineLow:  inputs[LineWineLow],
		water:    outputs[LineWaterValve],
		wine:     outputs[LineWinePump],
		waterLed: outputs[LineWaterLed],
		wineLed:  outputs[LineWineLed],
		powerLed: outputs[LinePowerLed],
		status:   outputs[LineStatus],
	}, nil
}

func (b *Board) DispenseRequested() bool {
	return !b.dispense.Get()
}

func (b *Board) WaterLow() bool {
	return !b.waterLow.Get()
}

func (b *Board) WineLow() bool {
	return !b.wineLow.Get()
}

func (b *Board) SetWater(on bool) {
	b.water.Set(on)
}

func (b *Board) SetWine(on bool) {
	b.wine.Set(on)
}

func (b *Board) SetPowerLed(on bool) {
	b.powerLed.Set(on)
}

func (b *Board) SetWaterLed(on bool) {
	b.waterLed.Set(on)
}

func (b *Board) SetWineLed(on bool) {
	b.wineLed.Set(on)
}

func (b *Board) SetStatusLine(high bool) {
	b.status.Set(high)
}
