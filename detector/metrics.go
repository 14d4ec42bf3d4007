package detector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispenser_detector_polls_total",
		Help: "Total number of sensor poll cycles",
	})

	edgesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispenser_detector_edges_total",
		Help: "Total number of edge events emitted, by event",
	}, []string{"event"})
)
