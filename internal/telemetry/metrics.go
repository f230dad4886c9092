package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ScansTotal counts snapshot acquisitions by outcome
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portstat",
			Name:      "scans_total",
			Help:      "Total number of listening port scans",
		},
		[]string{"result"},
	)

	// NewPortsTotal counts findings that were alerted on
	NewPortsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "portstat",
			Name:      "new_ports_total",
			Help:      "Total number of newly opened ports reported",
		},
	)

	// SuppressedPortsTotal counts new ports hidden by the ignore filters
	SuppressedPortsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "portstat",
			Name:      "suppressed_ports_total",
			Help:      "Total number of newly opened ports excluded by ignore filters",
		},
	)

	// EventLogErrorsTotal counts failed appends to the JSON event log
	EventLogErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "portstat",
			Name:      "event_log_errors_total",
			Help:      "Total number of failed event log writes",
		},
	)

	// ListeningPorts is the size of the most recent snapshot
	ListeningPorts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "portstat",
			Name:      "listening_ports",
			Help:      "Number of listening ports in the latest scan",
		},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// It is safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.MustRegister(
			ScansTotal,
			NewPortsTotal,
			SuppressedPortsTotal,
			EventLogErrorsTotal,
			ListeningPorts,
		)
	})
}
