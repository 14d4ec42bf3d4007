// Package actions holds the entry action of every machine state: the output
// pattern that is written in full each time the state is entered.
package actions

import (
	"context"
	"fmt"

	"github.com/amp-labs/winedispenser/hardware"
	"github.com/amp-labs/winedispenser/statemachine"
)

// Set dispatches state entries to the per-state output patterns.
type Set struct {
	driver hardware.ActuatorDriver
}

var _ statemachine.EntryActions = (*Set)(nil)

// New returns the action set writing to driver.
func New(driver hardware.ActuatorDriver) *Set {
	return &Set{driver: driver}
}

// Enter applies the output pattern of state.
func (s *Set) Enter(_ context.Context, state statemachine.State) error {
	switch state {
	case statemachine.Idle:
		s.idle()
	case statemachine.Dispensing:
		s.dispensing()
	case statemachine.OutOfWine:
		s.outOfWine()
	case statemachine.OutOfWater:
		s.outOfWater()
	case statemachine.OutOfWaterAndWine:
		s.outOfWaterAndWine()
	default:
		return fmt.Errorf("%w: %d", statemachine.ErrUnknownState, uint8(state))
	}

	return nil
}

func (s *Set) idle() {
	s.driver.SetWater(false)
	s.driver.SetWine(false)

	s.driver.SetPowerLed(true)
	s.driver.SetWineLed(false)
	s.driver.SetWaterLed(false)
}

// Indicators are left as they were.
func (s *Set) dispensing() {
	s.driver.SetWater(true)
	s.driver.SetWine(true)
}

func (s *Set) outOfWine() {
	s.driver.SetWater(false)
	s.driver.SetWine(false)
	s.driver.SetWineLed(true)
	s.driver.SetWaterLed(false)
}

func (s *Set) outOfWater() {
	s.driver.SetWater(false)
	s.driver.SetWine(false)
	s.driver.SetWaterLed(true)
	s.driver.SetWineLed(false)
}

// Pumps are already off on every path into this state.
func (s *Set) outOfWaterAndWine() {
	s.driver.SetWineLed(true)
	s.driver.SetWaterLed(true)
}
