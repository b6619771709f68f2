// Package metrics provides Prometheus metrics for arr-quality runs.
// A run is a one-shot process, so nothing is scraped: the registry is
// written out in the node-exporter textfile format when the run ends.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/poiley/arr-quality/internal/adapters"
)

const (
	// Namespace for all arr-quality metrics
	namespace = "arrquality"
)

// Registry holds every arr-quality collector. It is separate from the
// default registry so the textfile carries no Go runtime metrics.
var Registry = prometheus.NewRegistry()

var (
	// RunTotal tracks runs by outcome
	RunTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_total",
			Help:      "Total number of runs by outcome",
		},
		[]string{"outcome"},
	)

	// RunDuration tracks run duration
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of runs in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// ResourcesCreated tracks resources created on the service
	ResourcesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resources_created_total",
			Help:      "Total number of resources created on the *arr service",
		},
		[]string{"resource_type"},
	)

	// TransportErrors tracks failed calls to the service
	TransportErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_errors_total",
			Help:      "Total number of failed calls to the *arr service",
		},
		[]string{"transport"},
	)

	// LastRunTimestamp is the unix time the last run finished
	LastRunTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		},
	)
)

func init() {
	Registry.MustRegister(
		RunTotal,
		RunDuration,
		ResourcesCreated,
		TransportErrors,
		LastRunTimestamp,
	)
}

// Recorder feeds run telemetry into the package collectors.
type Recorder struct {
	// Transport labels transport errors
	Transport string
}

// NewRecorder creates a Recorder for runs over the given transport.
func NewRecorder(transport string) *Recorder {
	return &Recorder{Transport: transport}
}

// RecordCreated records a resource created on the service
func (r *Recorder) RecordCreated(resourceType string) {
	ResourcesCreated.WithLabelValues(resourceType).Inc()
}

// RecordRun records a finished run
func (r *Recorder) RecordRun(outcome string, duration time.Duration) {
	RunTotal.WithLabelValues(outcome).Inc()
	RunDuration.Observe(duration.Seconds())
	LastRunTimestamp.SetToCurrentTime()
}

// RecordError counts err against the transport when it is a transport
// failure. Other errors are ignored.
func (r *Recorder) RecordError(err error) {
	var te *adapters.TransportError
	if errors.As(err, &te) {
		TransportErrors.WithLabelValues(r.Transport).Inc()
	}
}

// WriteTextfile writes the registry to path in the textfile collector
// format. The file is replaced atomically.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
