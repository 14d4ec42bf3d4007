package visualizer

import "github.com/amp-labs/winedispenser/statemachine"

// Options configures the diagram output.
type Options struct {
	// ShowEvents labels each edge with its triggering event
	ShowEvents bool

	// Direction controls diagram flow: "TB" (top-bottom) or "LR" (left-right)
	Direction string

	// HighlightPath highlights the states of one walk through the diagram
	HighlightPath []statemachine.State

	// Fenced wraps the diagram in a markdown code fence
	Fenced bool
}

// DefaultOptions returns the options used by the simulator.
func DefaultOptions() Options {
	return Options{
		ShowEvents: true,
		Direction:  "TB",
		Fenced:     true,
	}
}

// WithShowEvents enables/disables edge labels.
func (o Options) WithShowEvents(show bool) Options {
	o.ShowEvents = show

	return o
}

// WithDirection sets the diagram direction.
func (o Options) WithDirection(direction string) Options {
	o.Direction = direction

	return o
}

// WithHighlightPath sets states to highlight.
func (o Options) WithHighlightPath(path ...statemachine.State) Options {
	o.HighlightPath = path

	return o
}

// WithFenced enables/disables the markdown fence.
func (o Options) WithFenced(fenced bool) Options {
	o.Fenced = fenced

	return o
}
