package worker

import (
	"github.com/dunamismax/imgbox/internal/domain"
	"github.com/dunamismax/imgbox/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// workerMetrics are the task-level series. Operation and output series live
// in the shared metrics registry.
type workerMetrics struct {
	tasksTotal         *prometheus.CounterVec
	taskDuration       *prometheus.HistogramVec
	pixelsOutTotal     prometheus.Counter
	computeTimeMSTotal prometheus.Counter
}

func newWorkerMetrics(shared *metrics.Metrics) *workerMetrics {
	m := &workerMetrics{
		tasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imgbox_worker_tasks_total",
			Help: "Total sequence tasks by final status.",
		}, []string{"status"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "imgbox_worker_task_duration_seconds",
			Help:    "Wall time for each sequence task, including the wait for a run slot.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		pixelsOutTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "imgbox_usage_pixels_out_total",
			Help: "Total pixels written across all successful runs.",
		}),
		computeTimeMSTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "imgbox_usage_compute_time_ms_total",
			Help: "Total compute time in milliseconds across successful runs.",
		}),
	}

	if shared != nil {
		shared.MustRegister(
			m.tasksTotal,
			m.taskDuration,
			m.pixelsOutTotal,
			m.computeTimeMSTotal,
		)
	}
	return m
}

func (m *workerMetrics) observeUsage(usage domain.Usage) {
	m.pixelsOutTotal.Add(float64(usage.PixelsOut))
	m.computeTimeMSTotal.Add(float64(usage.ComputeTimeMS))
}
