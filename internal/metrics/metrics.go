// Package metrics holds the Prometheus collectors shared by the CLI and the
// worker.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

type Metrics struct {
	registry          *prometheus.Registry
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	outputsTotal      prometheus.Counter
	outputBytesTotal  prometheus.Counter
	runsTotal         *prometheus.CounterVec
	activeRuns        prometheus.Gauge
}

// New builds a registry. Process collectors are only useful for long-lived
// processes, so the CLI leaves them out.
func New(withRuntime bool) *Metrics {
	registry := prometheus.NewRegistry()
	if withRuntime {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		registry: registry,
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imgbox_operations_total",
			Help: "Total image operations by kind and outcome.",
		}, []string{"operation", "status"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "imgbox_operation_duration_seconds",
			Help:    "Time spent applying each image operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		outputsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "imgbox_outputs_written_total",
			Help: "Total encoded images written to files or object storage.",
		}),
		outputBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "imgbox_output_bytes_total",
			Help: "Total encoded bytes written.",
		}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imgbox_runs_total",
			Help: "Total operation sequences by final status.",
		}, []string{"status"}),
		activeRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "imgbox_active_runs",
			Help: "Operation sequences currently running.",
		}),
	}

	registry.MustRegister(
		m.operationsTotal,
		m.operationDuration,
		m.outputsTotal,
		m.outputBytesTotal,
		m.runsTotal,
		m.activeRuns,
	)
	return m
}

func (m *Metrics) ObserveOperation(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusFailed
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveOutput(bytes int) {
	if m == nil {
		return
	}
	m.outputsTotal.Inc()
	m.outputBytesTotal.Add(float64(bytes))
}

// StartRun marks a run active; the returned func records its outcome.
func (m *Metrics) StartRun() func(err error) {
	if m == nil {
		return func(error) {}
	}
	m.activeRuns.Inc()
	return func(err error) {
		m.activeRuns.Dec()
		status := StatusOK
		if err != nil {
			status = StatusFailed
		}
		m.runsTotal.WithLabelValues(status).Inc()
	}
}

// MustRegister adds process-specific collectors to the shared registry.
func (m *Metrics) MustRegister(cs ...prometheus.Collector) {
	m.registry.MustRegister(cs...)
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the current values in the node exporter textfile
// format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
