package statemachine

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric definitions with appropriate labels.
var (
	// eventsTotal counts handled events by outcome (applied, ignored or error).
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispenser_events_total",
		Help: "Total number of edge events handled by the engine, by event and outcome",
	}, []string{"event", "outcome"})

	// transitionsTotal counts applied state transitions.
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispenser_transitions_total",
		Help: "Total number of state transitions by from_state and to_state",
	}, []string{"from_state", "to_state"})

	// currentState is 1 for the current state and 0 for every other state.
	currentState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dispenser_state",
		Help: "Current machine state (1 for the active state, 0 otherwise)",
	}, []string{"state"})
)

func recordCurrentState(state State) {
	for _, s := range States() {
		value := 0.0
		if s == state {
			value = 1
		}

		currentState.WithLabelValues(s.String()).Set(value)
	}
}

// TransitionCounts gathers dispenser_transitions_total from gatherer and
// returns it keyed by "From->To".
func TransitionCounts(gatherer prometheus.Gatherer) (map[string]float64, error) {
	families, err := gatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}

	counts := make(map[string]float64)

	for _, family := range families {
		if family.GetName() != "dispenser_transitions_total" {
			continue
		}

		for _, metric := range family.GetMetric() {
			var from, to string

			for _, label := range metric.GetLabel() {
				switch label.GetName() {
				case "from_state":
					from = label.GetValue()
				case "to_state":
					to = label.GetValue()
				}
			}

			counts[from+"->"+to] += metric.GetCounter().GetValue()
		}
	}

	return counts, nil
}
