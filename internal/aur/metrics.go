package aur

import "github.com/prometheus/client_golang/prometheus"

var (
	inflightOperations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "auric_inflight_operations",
			Help: "Number of currently active operations.",
		},
	)

	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auric_operations_total",
			Help: "Total number of completed operations.",
		},
		[]string{"kind", "status"},
	)

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auric_operation_duration_seconds",
			Help:    "Operation duration from queue to callback, in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	transferBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auric_transfer_bytes_total",
			Help: "Total response bytes accumulated across all transfers.",
		},
	)
)

func init() {
	prometheus.MustRegister(inflightOperations)
	prometheus.MustRegister(operationsTotal)
	prometheus.MustRegister(operationDuration)
	prometheus.MustRegister(transferBytesTotal)
}
