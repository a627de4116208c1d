package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scandoc_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scandoc_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Processing metrics
	processingTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scandoc_processing_total",
			Help: "Total number of processed images",
		},
		[]string{"endpoint", "outcome"}, // outcome: success, no_text, error
	)

	processingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scandoc_processing_duration_seconds",
			Help:    "Image processing duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50, 100},
		},
		[]string{"endpoint"},
	)

	fragmentsExtracted = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scandoc_fragments_extracted",
			Help:    "Number of text fragments extracted per image",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scandoc_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 5 * 1024 * 1024, 10 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scandoc_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scandoc_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

// recordOutcome tracks the result of one processing run.
func recordOutcome(endpoint string, res *pipelineOutcome) {
	switch {
	case res.err != nil:
		processingTotal.WithLabelValues(endpoint, "error").Inc()
	case !res.success:
		processingTotal.WithLabelValues(endpoint, "no_text").Inc()
	default:
		processingTotal.WithLabelValues(endpoint, "success").Inc()
	}
}

// pipelineOutcome is a small carrier for metric recording.
type pipelineOutcome struct {
	success bool
	err     error
}
