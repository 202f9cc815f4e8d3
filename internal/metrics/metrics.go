// Package metrics declares the Prometheus instruments for media sessions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session metrics
var (
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasession_operations_total",
			Help: "Total number of session operations by outcome",
		},
		[]string{"operation", "result"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediasession_operation_duration_seconds",
			Help:    "Session operation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"operation"},
	)

	SessionState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mediasession_state",
			Help: "Current session lifecycle state (1 for the active state, 0 otherwise)",
		},
		[]string{"state"},
	)
)

// Published output metrics
var (
	PublishedOutputsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasession_published_outputs_total",
			Help: "Total number of transform outputs pushed to object storage",
		},
		[]string{"status"},
	)
)
