package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// metricsOnce ensures metrics are registered only once
	metricsOnce sync.Once

	// registry holds every FLAME metric so a batch run can dump them to a
	// node_exporter textfile without touching the global registerer
	registry *prometheus.Registry

	// sourceRunsTotal tracks source runs by source and outcome
	sourceRunsTotal *prometheus.CounterVec

	// sourceAlertsTotal tracks alerts produced per source and severity
	sourceAlertsTotal *prometheus.CounterVec

	// sourceRunDuration tracks fetch+parse latency per source
	sourceRunDuration *prometheus.HistogramVec

	// httpErrorsTotal tracks transport errors by type
	httpErrorsTotal *prometheus.CounterVec

	// ft3MappingsTotal tracks FT3 suggestions by confidence
	ft3MappingsTotal *prometheus.CounterVec

	// ft3ApplyTotal tracks header patch outcomes
	ft3ApplyTotal *prometheus.CounterVec
)

// InitMetrics registers all FLAME metrics. Safe to call more than once.
func InitMetrics() {
	metricsOnce.Do(func() {
		registry = prometheus.NewRegistry()
		factory := promauto.With(registry)

		sourceRunsTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flame_source_runs_total",
				Help: "Total number of regulatory source runs by source and outcome",
			},
			[]string{"source", "outcome"},
		)

		sourceAlertsTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flame_source_alerts_total",
				Help: "Total number of alerts produced by source and severity",
			},
			[]string{"source", "severity"},
		)

		sourceRunDuration = factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flame_source_run_duration_seconds",
				Help:    "Duration of regulatory source fetch and parse in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"source"},
		)

		httpErrorsTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flame_http_errors_total",
				Help: "Total number of upstream HTTP errors by error type",
			},
			[]string{"error_type"},
		)

		ft3MappingsTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flame_ft3_mappings_total",
				Help: "Total number of FT3 mapping suggestions by confidence",
			},
			[]string{"confidence"},
		)

		ft3ApplyTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flame_ft3_apply_total",
				Help: "Total number of ft3_tactics header patches by result",
			},
			[]string{"result"},
		)
	})
}

// RecordSourceRun records one source run
// outcome: "success", "fetch_error", "panic"
func RecordSourceRun(source, outcome string) {
	if sourceRunsTotal != nil {
		sourceRunsTotal.WithLabelValues(source, outcome).Inc()
	}
}

// RecordAlert counts one produced alert
func RecordAlert(source, severity string) {
	if sourceAlertsTotal != nil {
		sourceAlertsTotal.WithLabelValues(source, severity).Inc()
	}
}

// RecordHTTPError records a transport error by type
// errorType: "timeout", "auth", "rate_limit", "server_error", "connection", "circuit_open", "http_error"
func RecordHTTPError(errorType string) {
	if httpErrorsTotal != nil {
		httpErrorsTotal.WithLabelValues(errorType).Inc()
	}
}

// RecordMapping counts one FT3 suggestion
func RecordMapping(confidence string) {
	if ft3MappingsTotal != nil {
		ft3MappingsTotal.WithLabelValues(confidence).Inc()
	}
}

// RecordApply counts one header patch attempt
// result: "applied", "failed"
func RecordApply(result string) {
	if ft3ApplyTotal != nil {
		ft3ApplyTotal.WithLabelValues(result).Inc()
	}
}

// SourceTimer is a helper for timing source runs
type SourceTimer struct {
	source string
	start  time.Time
}

// StartTimer creates a new timer for source
func StartTimer(source string) *SourceTimer {
	return &SourceTimer{source: source, start: time.Now()}
}

// ObserveDuration records the elapsed time since the timer started
func (t *SourceTimer) ObserveDuration() {
	if t != nil && sourceRunDuration != nil {
		sourceRunDuration.WithLabelValues(t.source).Observe(time.Since(t.start).Seconds())
	}
}

// WriteTextfile writes the current metric values in the text exposition
// format, for pickup by node_exporter's textfile collector.
func WriteTextfile(path string) error {
	InitMetrics()
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Gatherer exposes the registry for tests and callers that embed it.
func Gatherer() prometheus.Gatherer {
	InitMetrics()
	return registry
}
