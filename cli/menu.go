// Package cli is the interactive front-end of the host simulator: a menu that
// toggles the simulated inputs and prints the resulting outputs.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/amp-labs/winedispenser/clock"
	"github.com/amp-labs/winedispenser/hardware"
	"github.com/amp-labs/winedispenser/hardware/sim"
	"github.com/amp-labs/winedispenser/statemachine"
	"github.com/manifoldco/promptui"
)

// Selector shows a list and returns the chosen index. *promptui.Select
// satisfies it.
type Selector interface {
	Run() (int, string, error)
}

// Menu choices, in display order.
const (
	ChoiceDispense = iota
	ChoiceWater
	ChoiceWine
	ChoiceQuit
)

// DefaultSettle is how long the menu waits after a toggle before printing,
// so the control loop has polled at least once.
const DefaultSettle = 50 * time.Millisecond

// Menu toggles the inputs of a simulated bank.
type Menu struct {
	bank    *sim.Bank
	state   func() statemachine.State
	out     io.Writer
	sleeper clock.Sleeper
	settle  time.Duration
	newSel  func(label string, items []string) Selector
}

// MenuOption configures a Menu.
type MenuOption func(*Menu)

// WithSelector replaces the promptui select, mostly for tests.
func WithSelector(f func(label string, items []string) Selector) MenuOption {
	return func(m *Menu) {
		m.newSel = f
	}
}

// WithSettle sets the pause after a toggle and the clock used for it.
func WithSettle(d time.Duration, sleeper clock.Sleeper) MenuOption {
	return func(m *Menu) {
		m.settle = d
		m.sleeper = sleeper
	}
}

// NewMenu returns a menu over bank. state reports the machine state for the
// status panel.
func NewMenu(bank *sim.Bank, state func() statemachine.State, out io.Writer, opts ...MenuOption) *Menu {
	m := &Menu{
		bank:    bank,
		state:   state,
		out:     out,
		sleeper: clock.Real{},
		settle:  DefaultSettle,
		newSel: func(label string, items []string) Selector {
			return &promptui.Select{Label: label, Items: items, Size: len(items)}
		},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Items returns the menu entries for the current input levels.
func (m *Menu) Items() []string {
	pressed := !m.bank.Level(hardware.LineDispense)
	waterLow := !m.bank.Level(hardware.LineWaterLow)
	wineLow := !m.bank.Level(hardware.LineWineLow)

	return []string{
		ChoiceDispense: pick(pressed, "Release dispense button", "Press dispense button"),
		ChoiceWater:    pick(waterLow, "Refill water reservoir", "Drain water reservoir"),
		ChoiceWine:     pick(wineLow, "Refill wine reservoir", "Drain wine reservoir"),
		ChoiceQuit:     "Quit",
	}
}

// Run shows the menu until the operator quits, interrupts the prompt, or ctx
// is done. Quitting is not an error.
func (m *Menu) Run(ctx context.Context) error {
	m.printStatus()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		idx, _, err := m.newSel("Dispenser", m.Items()).Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}

			return fmt.Errorf("menu: %w", err)
		}

		if idx == ChoiceQuit {
			return nil
		}

		m.Toggle(idx)

		if err := m.sleeper.Sleep(ctx, m.settle); err != nil {
			return err
		}

		m.printStatus()
	}
}

// Toggle flips the input behind a menu choice. Other indexes are ignored.
func (m *Menu) Toggle(choice int) {
	switch choice {
	case ChoiceDispense:
		m.bank.SetDispense(m.bank.Level(hardware.LineDispense))
	case ChoiceWater:
		m.bank.SetWaterLow(m.bank.Level(hardware.LineWaterLow))
	case ChoiceWine:
		m.bank.SetWineLow(m.bank.Level(hardware.LineWineLow))
	}
}

// Status renders the state and outputs as a banner.
func (m *Menu) Status() string {
	return Banner(fmt.Sprintf("state: %s\n%s", m.state(), m.bank.Outputs()), DefaultWidth, AlignLeft)
}

func (m *Menu) printStatus() {
	_, _ = io.WriteString(m.out, m.Status())
}

func pick(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}

	return ifFalse
}
