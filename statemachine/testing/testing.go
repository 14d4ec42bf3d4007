// Package testing provides a harness that runs the real engine and action set
// against a simulated board, for scripted event-sequence tests.
package testing

import (
	"testing"

	"github.com/amp-labs/winedispenser/hardware"
	"github.com/amp-labs/winedispenser/hardware/sim"
	"github.com/amp-labs/winedispenser/statemachine"
	"github.com/amp-labs/winedispenser/statemachine/actions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TraceEntry records one handled event.
type TraceEntry struct {
	From    statemachine.State
	Event   statemachine.Event
	To      statemachine.State
	Applied bool
	Outputs sim.Outputs
	Writes  int64 // output writes caused by this event
}

// Harness wraps an engine wired to a simulated board.
type Harness struct {
	*statemachine.Engine

	Bank  *sim.Bank
	Board *hardware.Board

	t     *testing.T
	trace []TraceEntry
}

// New returns a started harness: the engine is in Idle and the Idle outputs
// are applied.
func New(t *testing.T, opts ...statemachine.Option) *Harness {
	t.Helper()

	bank := sim.NewBank()

	board, err := hardware.NewBoard(bank)
	require.NoError(t, err, "failed to create board")

	engine, err := statemachine.NewEngine(actions.New(board),
		append([]statemachine.Option{statemachine.WithLogger(nil)}, opts...)...)
	require.NoError(t, err, "failed to create engine")

	require.NoError(t, engine.Start(t.Context()), "failed to start engine")

	return &Harness{
		Engine: engine,
		Bank:   bank,
		Board:  board,
		t:      t,
	}
}

// Apply hands each event to the engine in order and records the outcome.
func (h *Harness) Apply(events ...statemachine.Event) *Harness {
	h.t.Helper()

	for _, event := range events {
		from := h.Current()
		writesBefore := h.Bank.TotalWrites()

		applied, err := h.Handle(h.t.Context(), event)
		require.NoError(h.t, err, "handling %s in %s", event, from)

		h.trace = append(h.trace, TraceEntry{
			From:    from,
			Event:   event,
			To:      h.Current(),
			Applied: applied,
			Outputs: h.Bank.Outputs(),
			Writes:  h.Bank.TotalWrites() - writesBefore,
		})
	}

	return h
}

// Drive moves the machine from Idle to state along the shortest rule path.
// The drive is not recorded in the trace.
func (h *Harness) Drive(state statemachine.State) *Harness {
	h.t.Helper()

	require.Equal(h.t, statemachine.Idle, h.Current(), "Drive starts from Idle")

	path, ok := PathTo(h.Table(), statemachine.Idle, state)
	require.True(h.t, ok, "no path from Idle to %s", state)

	for _, event := range path {
		_, err := h.Handle(h.t.Context(), event)
		require.NoError(h.t, err)
	}

	require.Equal(h.t, state, h.Current())

	return h
}

// Trace returns every event applied so far.
func (h *Harness) Trace() []TraceEntry {
	return append([]TraceEntry(nil), h.trace...)
}

// Last returns the most recent trace entry.
func (h *Harness) Last() TraceEntry {
	h.t.Helper()
	require.NotEmpty(h.t, h.trace, "no events applied")

	return h.trace[len(h.trace)-1]
}

// AssertState checks the current state.
func (h *Harness) AssertState(expected statemachine.State) *Harness {
	h.t.Helper()
	assert.Equal(h.t, expected, h.Current(), "current state")

	return h
}

// AssertOutputs checks the pumps and indicators, ignoring the status line.
func (h *Harness) AssertOutputs(expected sim.Outputs) *Harness {
	h.t.Helper()

	got := h.Bank.Outputs()
	got.Status = expected.Status
	assert.Equal(h.t, expected, got, "outputs in %s", h.Current())

	return h
}

// AssertPumpsOff checks that neither pump is driven.
func (h *Harness) AssertPumpsOff() *Harness {
	h.t.Helper()
	assert.False(h.t, h.Bank.Outputs().PumpsRunning(), "pumps running in %s", h.Current())

	return h
}

// PathTo finds the shortest event sequence leading from one state to another.
func PathTo(table statemachine.Table, from, to statemachine.State) ([]statemachine.Event, bool) {
	type node struct {
		state statemachine.State
		path  []statemachine.Event
	}

	seen := map[statemachine.State]bool{from: true}
	queue := []node{{state: from}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.state == to {
			return cur.path, true
		}

		for _, rule := range table.From(cur.state) {
			if seen[rule.To] {
				continue
			}

			seen[rule.To] = true
			path := append(append([]statemachine.Event(nil), cur.path...), rule.Event)
			queue = append(queue, node{state: rule.To, path: path})
		}
	}

	return nil, false
}
