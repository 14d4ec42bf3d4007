// Command dispenser runs the dispenser controller on a simulated pin bank.
//
// DISPENSER_MODE selects the front-end: "interactive" (default) shows a menu
// that toggles the inputs, "scenario" replays the YAML file named by
// DISPENSER_SCENARIO, and "diagram" prints the transition table and exits.
// DISPENSER_TABLE optionally names an exported table to run instead of the
// built-in one.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/amp-labs/winedispenser/build"
	"github.com/amp-labs/winedispenser/cli"
	"github.com/amp-labs/winedispenser/clock"
	"github.com/amp-labs/winedispenser/controller"
	"github.com/amp-labs/winedispenser/envutil"
	"github.com/amp-labs/winedispenser/hardware/sim"
	"github.com/amp-labs/winedispenser/logger"
	"github.com/amp-labs/winedispenser/scenario"
	"github.com/amp-labs/winedispenser/shutdown"
	"github.com/amp-labs/winedispenser/statemachine"
	"github.com/amp-labs/winedispenser/statemachine/validator"
	"github.com/amp-labs/winedispenser/statemachine/visualizer"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Modes accepted in DISPENSER_MODE.
const (
	ModeInteractive = "interactive"
	ModeScenario    = "scenario"
	ModeDiagram     = "diagram"
)

// Diagram formats accepted in DISPENSER_DIAGRAM_FORMAT.
const (
	FormatMermaid = "mermaid"
	FormatYAML    = "yaml"
)

// scenarioSettle is how long the controller keeps running after the last
// scenario step.
const scenarioSettle = 100 * time.Millisecond

// buildInfo is injected with -ldflags "-X main.buildInfo=<json>".
var buildInfo string //nolint:gochecknoglobals

var (
	errMissingScenario = errors.New("DISPENSER_SCENARIO is required in scenario mode")
	errInvalidTable    = errors.New("invalid transition table")
)

type settings struct {
	mode     string
	scenario string
	format   string
	table    string
	ctrl     controller.Config
}

func loadSettings() (settings, error) {
	var (
		s   settings
		err error
	)

	s.mode, err = envutil.String("DISPENSER_MODE",
		envutil.Default(ModeInteractive),
		envutil.Validate(envutil.OneOf(ModeInteractive, ModeScenario, ModeDiagram))).Value()
	if err != nil {
		return s, err
	}

	s.format, err = envutil.String("DISPENSER_DIAGRAM_FORMAT",
		envutil.Default(FormatMermaid),
		envutil.Validate(envutil.OneOf(FormatMermaid, FormatYAML))).Value()
	if err != nil {
		return s, err
	}

	s.table = envutil.String("DISPENSER_TABLE").ValueOrElse("")
	s.scenario = envutil.String("DISPENSER_SCENARIO").ValueOrElse("")
	if s.mode == ModeScenario && s.scenario == "" {
		return s, errMissingScenario
	}

	s.ctrl, err = controller.LoadConfig()

	return s, err
}

func main() {
	s, err := loadSettings()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	var logOpts []logger.Option

	// promptui owns stdout in interactive mode.
	if s.mode == ModeInteractive && !envutil.String("LOG_OUTPUT").HasValue() {
		logOpts = append(logOpts, logger.WithOutput(os.Stderr))
	}

	if _, err := logger.ConfigureLogging("dispenser", logOpts...); err != nil {
		slog.Error("Failed to configure logging", "error", err)
		os.Exit(1)
	}

	ctx, handler := shutdown.SetupHandler()
	ctx = logger.WithSession(ctx, uuid.NewString())
	ctx = logger.With(ctx, "mode", s.mode)

	logger.Get(ctx).InfoContext(ctx, "Dispenser simulator starting",
		"build", build.Current(buildInfo))

	if err := run(ctx, handler, s, os.Stdout, clock.Real{}); err != nil {
		logger.Get(ctx).ErrorContext(ctx, "Dispenser stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, handler *shutdown.Handler, s settings, stdout io.Writer, sleeper clock.Sleeper) error {
	table, err := loadTable(s.table)
	if err != nil {
		return err
	}

	if s.mode == ModeDiagram {
		return printDiagram(stdout, table, s.format)
	}

	bank := sim.NewBank()

	ctrl, err := controller.New(bank, s.ctrl,
		controller.WithSleeper(sleeper),
		controller.WithEngineOptions(statemachine.WithTable(table)))
	if err != nil {
		return err
	}

	handler.BeforeShutdown(func(ctx context.Context) {
		logger.Get(ctx).InfoContext(ctx, "Stopping dispenser", "state", ctrl.State().String())
	})

	done := make(chan error, 1)

	go func() {
		done <- ctrl.Run(ctx)
	}()

	front := func(ctx context.Context) error {
		return cli.NewMenu(bank, ctrl.State, stdout).Run(ctx)
	}

	if s.mode == ModeScenario {
		front = func(ctx context.Context) error {
			return playScenario(ctx, s.scenario, bank, sleeper)
		}
	}

	frontDone := make(chan error, 1)

	go func() {
		frontDone <- whenReady(ctx, ctrl, front)
	}()

	var frontErr, runErr error

	// A prompt blocked on the terminal cannot be interrupted, so a stopped
	// controller does not wait for the front-end.
	select {
	case frontErr = <-frontDone:
		handler.Trigger()

		runErr = <-done
	case runErr = <-done:
		handler.Trigger()
	}

	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	logTransitionCounts(ctx)

	if errors.Is(frontErr, context.Canceled) {
		frontErr = nil
	}

	return errors.Join(frontErr, runErr)
}

// whenReady holds the front-end back until the controller has taken its
// baseline, so no input change is lost to the self-test.
func whenReady(ctx context.Context, ctrl *controller.Controller, front func(context.Context) error) error {
	select {
	case <-ctrl.Ready():
	case <-ctx.Done():
		return ctx.Err()
	}

	return front(ctx)
}

func loadTable(path string) (statemachine.Table, error) {
	if path == "" {
		return statemachine.DefaultTable(), nil
	}

	table, err := visualizer.LoadYAML(path)
	if err != nil {
		return nil, err
	}

	if result := validator.Validate(table); !result.Valid {
		return nil, fmt.Errorf("%w: %s:\n%s", errInvalidTable, path, result)
	}

	return table, nil
}

func playScenario(ctx context.Context, path string, bank *sim.Bank, sleeper clock.Sleeper) error {
	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}

	logger.Get(ctx).InfoContext(ctx, "Playing scenario",
		"name", sc.Name, "steps", len(sc.Steps), "duration", sc.Duration())

	if err := sc.Play(ctx, bank, sleeper); err != nil {
		return err
	}

	if err := sleeper.Sleep(ctx, scenarioSettle); err != nil {
		return err
	}

	logger.Get(ctx).InfoContext(ctx, "Final outputs", "outputs", bank.Outputs().String())

	return nil
}

func printDiagram(out io.Writer, table statemachine.Table, format string) error {
	var text string

	switch format {
	case FormatYAML:
		data, err := visualizer.GenerateYAML(table)
		if err != nil {
			return err
		}

		text = string(data)
	default:
		diagram, err := visualizer.GenerateMermaid(table)
		if err != nil {
			return err
		}

		text = diagram
	}

	_, err := io.WriteString(out, text)

	return err
}

func logTransitionCounts(ctx context.Context) {
	counts, err := statemachine.TransitionCounts(prometheus.DefaultGatherer)
	if err != nil {
		logger.Get(ctx).WarnContext(ctx, "Failed to gather transition counts", "error", err)

		return
	}

	if len(counts) == 0 {
		logger.Get(ctx).InfoContext(ctx, "No transitions executed")

		return
	}

	for _, key := range slices.Sorted(maps.Keys(counts)) {
		logger.Get(ctx).InfoContext(ctx, "Transition total", "transition", key, "count", counts[key])
	}
}
