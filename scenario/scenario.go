// Package scenario replays scripted input changes against the simulated pin
// bank, so the controller can be exercised without hardware.
package scenario

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/amp-labs/winedispenser/clock"
	"github.com/amp-labs/winedispenser/hardware/sim"
	"github.com/amp-labs/winedispenser/logger"
	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyStep is returned for a step that changes no input.
	ErrEmptyStep = errors.New("step changes no input")
	// ErrNegativeDelay is returned for a step with a negative delay.
	ErrNegativeDelay = errors.New("step delay is negative")
	// ErrNoSteps is returned for a scenario without steps.
	ErrNoSteps = errors.New("scenario has no steps")
)

// Step waits After, then sets every input it names. Unnamed inputs keep
// their level.
type Step struct {
	After    Delay `yaml:"after"`
	Press    *bool `yaml:"press,omitempty"`
	WaterLow *bool `yaml:"water_low,omitempty"`
	WineLow  *bool `yaml:"wine_low,omitempty"`
}

// Scenario is a named list of steps.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Delay is a time.Duration written as "50ms" in YAML.
type Delay time.Duration

func (d Delay) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Delay) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	*d = Delay(parsed)

	return nil
}

// Load reads and parses the scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return sc, nil
}

// Parse decodes a scenario. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario

	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoSteps
		}

		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}

	return &sc, nil
}

// Validate checks every step.
func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return ErrNoSteps
	}

	for i, step := range s.Steps {
		if step.Press == nil && step.WaterLow == nil && step.WineLow == nil {
			return fmt.Errorf("step %d: %w", i+1, ErrEmptyStep)
		}

		if step.After < 0 {
			return fmt.Errorf("step %d: %w", i+1, ErrNegativeDelay)
		}
	}

	return nil
}

// Duration is the sum of every step delay.
func (s *Scenario) Duration() time.Duration {
	var total time.Duration
	for _, step := range s.Steps {
		total += time.Duration(step.After)
	}

	return total
}

// Play runs the steps in order against bank. It returns ctx's error if ctx
// is done before the last step.
func (s *Scenario) Play(ctx context.Context, bank *sim.Bank, sleeper clock.Sleeper) error {
	log := logger.Get(ctx).With("scenario", s.Name)

	for i, step := range s.Steps {
		if err := sleeper.Sleep(ctx, time.Duration(step.After)); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}

		step.apply(bank)

		log.DebugContext(ctx, "Scenario step applied", "step", i+1, "inputs", step.String())
	}

	log.InfoContext(ctx, "Scenario finished", "steps", len(s.Steps))

	return nil
}

func (st Step) apply(bank *sim.Bank) {
	if st.Press != nil {
		bank.SetDispense(*st.Press)
	}

	if st.WaterLow != nil {
		bank.SetWaterLow(*st.WaterLow)
	}

	if st.WineLow != nil {
		bank.SetWineLow(*st.WineLow)
	}
}

func (st Step) String() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "after=%s", time.Duration(st.After))

	for _, field := range []struct {
		name string
		val  *bool
	}{
		{"press", st.Press},
		{"water_low", st.WaterLow},
		{"wine_low", st.WineLow},
	} {
		if field.val != nil {
			fmt.Fprintf(&buf, " %s=%t", field.name, *field.val)
		}
	}

	return buf.String()
}
