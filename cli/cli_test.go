package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/amp-labs/winedispenser/clock"
	"github.com/amp-labs/winedispenser/hardware"
	"github.com/amp-labs/winedispenser/hardware/sim"
	"github.com/amp-labs/winedispenser/statemachine"
	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTestTerminal = errors.New("terminal gone")

// scripted answers each prompt with the next queued choice.
type scripted struct {
	choices []int
	err     error
	shown   [][]string
}

func (s *scripted) factory(_ string, items []string) Selector {
	s.shown = append(s.shown, items)

	return s
}

func (s *scripted) Run() (int, string, error) {
	if len(s.choices) == 0 {
		return 0, "", s.err
	}

	idx := s.choices[0]
	s.choices = s.choices[1:]

	return idx, "", nil
}

func TestBanner(t *testing.T) { //nolint:paralleltest // reads the environment
	t.Setenv(EnvNoBanner, "false")

	out := Banner("ab\ncdef", 8, AlignCenter)
	assert.Equal(t, "╒══════╕\n│  ab  │\n│ cdef │\n└──────┘\n", out)

	assert.Equal(t, "│ab    │", strings.Split(Banner("ab", 8, AlignLeft), "\n")[1])
	assert.Equal(t, "│    ab│", strings.Split(Banner("ab", 8, AlignRight), "\n")[1])
	assert.Equal(t, "│abcde…│", strings.Split(Banner("abcdefghij", 8, AlignLeft), "\n")[1])

	assert.Empty(t, Banner("ab", 2, AlignLeft))
	assert.Empty(t, Banner("ab", 8, 42))

	t.Setenv(EnvNoBanner, "true")
	assert.Equal(t, "ab\n", Banner("ab", 8, AlignCenter))
}

func TestMenuTogglesInputs(t *testing.T) { //nolint:paralleltest // reads the environment
	t.Setenv(EnvNoBanner, "true")

	bank := sim.NewBank()
	sel := &scripted{choices: []int{ChoiceDispense, ChoiceWater, ChoiceWine, ChoiceDispense, ChoiceQuit}}
	fake := &clock.Fake{}

	var out bytes.Buffer

	menu := NewMenu(bank, func() statemachine.State { return statemachine.Idle }, &out,
		WithSelector(sel.factory), WithSettle(DefaultSettle, fake))

	require.NoError(t, menu.Run(t.Context()))

	assert.True(t, bank.Level(hardware.LineDispense), "pressed then released")
	assert.False(t, bank.Level(hardware.LineWaterLow), "water drained")
	assert.False(t, bank.Level(hardware.LineWineLow), "wine drained")

	require.Len(t, sel.shown, 5)
	assert.Equal(t, "Press dispense button", sel.shown[0][ChoiceDispense])
	assert.Equal(t, "Release dispense button", sel.shown[1][ChoiceDispense])
	assert.Equal(t, "Refill water reservoir", sel.shown[4][ChoiceWater])
	assert.Equal(t, "Refill wine reservoir", sel.shown[4][ChoiceWine])
	assert.Equal(t, "Quit", sel.shown[4][ChoiceQuit])

	assert.Len(t, fake.Calls(), 4)
	assert.Equal(t, 5, strings.Count(out.String(), "state: Idle"))
}

func TestMenuStops(t *testing.T) { //nolint:paralleltest // reads the environment
	t.Setenv(EnvNoBanner, "true")

	state := func() statemachine.State { return statemachine.OutOfWine }

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "interrupt", err: promptui.ErrInterrupt},
		{name: "eof", err: promptui.ErrEOF},
		{name: "terminal error", err: errTestTerminal, wantErr: errTestTerminal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := &scripted{err: tt.err}
			menu := NewMenu(sim.NewBank(), state, &bytes.Buffer{}, WithSelector(sel.factory))

			err := menu.Run(t.Context())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	menu := NewMenu(sim.NewBank(), state, &bytes.Buffer{}, WithSelector((&scripted{}).factory))
	require.ErrorIs(t, menu.Run(ctx), context.Canceled)
}

func TestStatus(t *testing.T) { //nolint:paralleltest // reads the environment
	t.Setenv(EnvNoBanner, "false")

	menu := NewMenu(sim.NewBank(), func() statemachine.State { return statemachine.Dispensing }, &bytes.Buffer{})

	status := menu.Status()
	assert.Contains(t, status, "state: Dispensing")
	assert.Contains(t, status, "water=off wine=off")
	assert.True(t, strings.HasPrefix(status, boxTopLeft))
}
