package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "nai"
	subsystem = "gateway"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Outcome is "success", "validation" or an error kind.
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "generations_total",
			Help:      "Generations by model and outcome",
		},
		[]string{"model", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "generation_duration_seconds",
			Help:      "End to end generation duration in seconds",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"model", "outcome"},
	)

	ImagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "images_total",
			Help:      "Images returned to callers",
		},
		[]string{"model"},
	)

	UpstreamResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upstream_responses_total",
			Help:      "Upstream responses by status code",
		},
		[]string{"status"},
	)

	StreamFramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "stream_frames_total",
			Help:      "Decoded stream frames by event type",
		},
		[]string{"event_type"},
	)

	TruncatedStreamsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "truncated_streams_total",
			Help:      "Streams that ended in a truncated trailing frame",
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint string, status int, durationSec float64) {
	code := strconv.Itoa(status)
	RequestsTotal.WithLabelValues(method, endpoint, code).Inc()
	RequestDuration.WithLabelValues(method, endpoint, code).Observe(durationSec)
}

// RecordGeneration records one generation attempt
func RecordGeneration(model, outcome string, durationSec float64, images int) {
	if model == "" {
		model = "unknown"
	}
	GenerationsTotal.WithLabelValues(model, outcome).Inc()
	GenerationDuration.WithLabelValues(model, outcome).Observe(durationSec)
	if images > 0 {
		ImagesTotal.WithLabelValues(model).Add(float64(images))
	}
}

func RecordUpstreamStatus(status int) {
	UpstreamResponsesTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

func RecordFrame(eventType string) {
	if eventType == "" {
		eventType = "unknown"
	}
	StreamFramesTotal.WithLabelValues(eventType).Inc()
}

func RecordTruncatedStream() {
	TruncatedStreamsTotal.Inc()
}
