package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agendagen_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)

	// Session metrics
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agendagen_sessions_active",
		Help: "Sessions currently held in memory",
	})

	Mutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agendagen_mutations_total",
			Help: "Document mutations by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	// Export metrics
	ExportQueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agendagen_export_queue_length",
		Help: "Export jobs waiting for a worker",
	})

	ExportJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agendagen_export_jobs_total",
			Help: "Finished export jobs by format and final status",
		},
		[]string{"format", "status"},
	)

	PrintEngineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agendagen_print_engine_seconds",
		Help:    "Print engine render latency",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
	})

	PrintEngineRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agendagen_print_engine_retries_total",
		Help: "Print engine calls retried after a transient failure",
	})
)
