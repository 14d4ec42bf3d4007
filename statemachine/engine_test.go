package statemachine

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTestEntryFailed = errors.New("entry failed")

// recordingActions remembers every state it was asked to enter.
type recordingActions struct {
	entered []State
	failOn  State
}

func (r *recordingActions) Enter(_ context.Context, state State) error {
	if r.failOn != StateUnknown && state == r.failOn {
		return errTestEntryFailed
	}

	r.entered = append(r.entered, state)

	return nil
}

type recordingLogger struct {
	entered     []State
	transitions []Rule
	ignored     []Rule
}

func (l *recordingLogger) StateEntered(_ context.Context, state State) {
	l.entered = append(l.entered, state)
}

func (l *recordingLogger) TransitionExecuted(_ context.Context, from, to State, event Event) {
	l.transitions = append(l.transitions, Rule{From: from, Event: event, To: to})
}

func (l *recordingLogger) EventIgnored(_ context.Context, state State, event Event) {
	l.ignored = append(l.ignored, Rule{From: state, Event: event, To: state})
}

// sliceSource replays events, then reports io.EOF.
type sliceSource struct {
	events []Event
}

func (s *sliceSource) Next(context.Context) (Event, error) {
	if len(s.events) == 0 {
		return EventUnknown, io.EOF
	}

	ev := s.events[0]
	s.events = s.events[1:]

	return ev, nil
}

func newStartedEngine(t *testing.T, actions EntryActions, opts ...Option) *Engine {
	t.Helper()

	engine, err := NewEngine(actions, append([]Option{WithLogger(nil)}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, engine.Start(t.Context()))

	return engine
}

func TestStartEntersIdle(t *testing.T) {
	t.Parallel()

	actions := &recordingActions{}

	engine, err := NewEngine(actions, WithLogger(NewDefaultLogger(slogt.New(t))))
	require.NoError(t, err)
	assert.Equal(t, StateUnknown, engine.Current())

	require.NoError(t, engine.Start(t.Context()))
	assert.Equal(t, Idle, engine.Current())
	assert.Equal(t, []State{Idle}, actions.entered)
}

func TestHandleBeforeStart(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(&recordingActions{}, WithLogger(nil))
	require.NoError(t, err)

	_, err = engine.Handle(t.Context(), DispenseStart)
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestEveryRuleTransitions(t *testing.T) {
	t.Parallel()

	for _, rule := range DefaultTable() {
		t.Run(rule.String(), func(t *testing.T) {
			t.Parallel()

			actions := &recordingActions{}
			engine := newStartedEngine(t, actions)
			engine.current = rule.From
			actions.entered = nil

			applied, err := engine.Handle(t.Context(), rule.Event)
			require.NoError(t, err)
			assert.True(t, applied)
			assert.Equal(t, rule.To, engine.Current())
			assert.Equal(t, []State{rule.To}, actions.entered, "entry action runs exactly once")
		})
	}
}

func TestUnmatchedEventsAreNoops(t *testing.T) {
	t.Parallel()

	table := DefaultTable()

	for _, state := range States() {
		for _, event := range Events() {
			if _, ok := table.Lookup(state, event); ok {
				continue
			}

			t.Run(state.String()+"/"+event.String(), func(t *testing.T) {
				t.Parallel()

				actions := &recordingActions{}
				log := &recordingLogger{}
				engine := newStartedEngine(t, actions, WithLogger(log))
				engine.current = state
				actions.entered = nil

				applied, err := engine.Handle(t.Context(), event)
				require.NoError(t, err)
				assert.False(t, applied)
				assert.Equal(t, state, engine.Current())
				assert.Empty(t, actions.entered)
				assert.Equal(t, []Rule{{From: state, Event: event, To: state}}, log.ignored)
			})
		}
	}
}

func TestUnknownEventIsNoop(t *testing.T) {
	t.Parallel()

	actions := &recordingActions{}
	engine := newStartedEngine(t, actions)

	applied, err := engine.Handle(t.Context(), Event(99))
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, Idle, engine.Current())
	assert.Equal(t, []State{Idle}, actions.entered)
}

func TestEntryFailureKeepsState(t *testing.T) {
	t.Parallel()

	actions := &recordingActions{failOn: Dispensing}
	engine := newStartedEngine(t, actions)

	applied, err := engine.Handle(t.Context(), DispenseStart)
	require.ErrorIs(t, err, errTestEntryFailed)
	assert.False(t, applied)
	assert.Equal(t, Idle, engine.Current())

	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, Idle, stateErr.State)
}

func TestNewEngineValidation(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(nil)
	require.ErrorIs(t, err, ErrNoEntryActions)

	dup := append(DefaultTable(), Rule{From: Idle, Event: DispenseStart, To: OutOfWine})
	_, err = NewEngine(&recordingActions{}, WithTable(dup))
	require.ErrorIs(t, err, ErrDuplicateRule)

	var ruleErr *RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, 12, ruleErr.Index)

	_, err = NewEngine(&recordingActions{}, WithTable(Table{{From: Idle, Event: EventUnknown, To: Dispensing}}))
	require.ErrorIs(t, err, ErrUnknownEvent)

	_, err = NewEngine(&recordingActions{}, WithTable(Table{{From: Idle, Event: DispenseStart, To: StateUnknown}}))
	require.ErrorIs(t, err, ErrUnknownState)
}

func TestWithTableIsCopied(t *testing.T) {
	t.Parallel()

	table := Table{{From: Idle, Event: DispenseStart, To: Dispensing}}
	engine := newStartedEngine(t, &recordingActions{}, WithTable(table))

	table[0].To = OutOfWine

	_, err := engine.Handle(t.Context(), DispenseStart)
	require.NoError(t, err)
	assert.Equal(t, Dispensing, engine.Current())
	assert.Len(t, engine.Table(), 1)
}

func TestRun(t *testing.T) {
	t.Parallel()

	actions := &recordingActions{}
	log := &recordingLogger{}

	engine, err := NewEngine(actions, WithLogger(log))
	require.NoError(t, err)

	source := &sliceSource{events: []Event{
		DispenseStart,
		WaterLevelDroppedLow,
		DispenseStop,
		WineLevelDroppedLow,
		WaterLevelRecovered,
		WineLevelRecovered,
	}}

	err = engine.Run(t.Context(), source)
	require.ErrorIs(t, err, io.EOF)

	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, Idle, stateErr.State)

	assert.Equal(t, []State{Idle, Dispensing, OutOfWater, OutOfWaterAndWine, OutOfWine, Idle}, actions.entered)
	assert.Equal(t, actions.entered, log.entered)
	assert.Len(t, log.transitions, 5)
	assert.Equal(t, []Rule{{From: OutOfWater, Event: DispenseStop, To: OutOfWater}}, log.ignored)
}

func TestRunStartFailure(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(&recordingActions{failOn: Idle}, WithLogger(nil))
	require.NoError(t, err)

	err = engine.Run(t.Context(), &sliceSource{})
	require.ErrorIs(t, err, errTestEntryFailed)
}

func TestEntryActionsFunc(t *testing.T) {
	t.Parallel()

	var got State

	fn := EntryActionsFunc(func(_ context.Context, s State) error {
		got = s

		return nil
	})

	require.NoError(t, fn.Enter(t.Context(), OutOfWine))
	assert.Equal(t, OutOfWine, got)
}
