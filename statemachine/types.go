// Package statemachine is the dispenser's finite-state machine: the machine
// states, the edge events that drive them, the static rule table and the
// engine that resolves events against it.
package statemachine

import (
	"context"
	"fmt"
)

// State is a machine state. Exactly one is current at any instant.
type State uint8

const (
	// StateUnknown is the zero value. It is never a current state.
	StateUnknown State = iota
	Idle
	Dispensing
	OutOfWater
	OutOfWine
	OutOfWaterAndWine
)

var stateNames = [...]string{ //nolint:gochecknoglobals
	StateUnknown:      "Unknown",
	Idle:              "Idle",
	Dispensing:        "Dispensing",
	OutOfWater:        "OutOfWater",
	OutOfWine:         "OutOfWine",
	OutOfWaterAndWine: "OutOfWaterAndWine",
}

// States returns every valid state in declaration order.
func States() []State {
	return []State{Idle, Dispensing, OutOfWater, OutOfWine, OutOfWaterAndWine}
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}

	return stateNames[StateUnknown]
}

// Valid reports whether s is one of the five machine states.
func (s State) Valid() bool {
	return s >= Idle && s <= OutOfWaterAndWine
}

// OutOfStock reports whether s is one of the low-fluid states.
func (s State) OutOfStock() bool {
	return s == OutOfWater || s == OutOfWine || s == OutOfWaterAndWine
}

// Event is a single detected edge on one input.
type Event uint8

const (
	// EventUnknown is the zero value. The detector never emits it.
	EventUnknown Event = iota
	DispenseStart
	DispenseStop
	WaterLevelDroppedLow
	WaterLevelRecovered
	WineLevelDroppedLow
	WineLevelRecovered
)

var eventNames = [...]string{ //nolint:gochecknoglobals
	EventUnknown:         "Unknown",
	DispenseStart:        "DispenseStart",
	DispenseStop:         "DispenseStop",
	WaterLevelDroppedLow: "WaterLevelDroppedLow",
	WaterLevelRecovered:  "WaterLevelRecovered",
	WineLevelDroppedLow:  "WineLevelDroppedLow",
	WineLevelRecovered:   "WineLevelRecovered",
}

// Events returns every valid event in declaration order.
func Events() []Event {
	return []Event{
		DispenseStart, DispenseStop,
		WaterLevelDroppedLow, WaterLevelRecovered,
		WineLevelDroppedLow, WineLevelRecovered,
	}
}

func (e Event) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}

	return eventNames[EventUnknown]
}

// Valid reports whether e is one of the six edge events.
func (e Event) Valid() bool {
	return e >= DispenseStart && e <= WineLevelRecovered
}

// EntryActions applies the output pattern of a state. The engine calls Enter
// exactly once each time a state is entered.
type EntryActions interface {
	Enter(ctx context.Context, state State) error
}

// EntryActionsFunc adapts a function to EntryActions.
type EntryActionsFunc func(ctx context.Context, state State) error

func (f EntryActionsFunc) Enter(ctx context.Context, state State) error {
	return f(ctx, state)
}

// EventSource yields edge events one at a time, blocking until the next one.
type EventSource interface {
	Next(ctx context.Context) (Event, error)
}

// ParseState returns the state named s.
func ParseState(s string) (State, error) {
	for _, state := range States() {
		if state.String() == s {
			return state, nil
		}
	}

	return StateUnknown, fmt.Errorf("%w: %q", ErrUnknownState, s)
}

func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownState, uint8(s))
	}

	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// ParseEvent returns the event named s.
func ParseEvent(s string) (Event, error) {
	for _, event := range Events() {
		if event.String() == s {
			return event, nil
		}
	}

	return EventUnknown, fmt.Errorf("%w: %q", ErrUnknownEvent, s)
}

func (e Event) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEvent, uint8(e))
	}

	return []byte(e.String()), nil
}

func (e *Event) UnmarshalText(text []byte) error {
	parsed, err := ParseEvent(string(text))
	if err != nil {
		return err
	}

	*e = parsed

	return nil
}
