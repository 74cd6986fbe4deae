// Package metrics holds the Prometheus collectors for the capture pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voicecap"

const (
	StageTranscribe = "transcribe"
	StageTemporal   = "temporal"
	StageStructure  = "structure"
	StageNormalize  = "normalize"
	StagePersist    = "persist"
	StageWebhook    = "webhook"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	capturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "captures_total",
			Help:      "Captures processed, by mode and result code.",
		},
		[]string{"mode", "result"},
	)

	captureDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "capture_duration_seconds",
			Help:      "End-to-end pipeline latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Latency of each pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage", "outcome"},
	)

	uploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "upload_bytes",
			Help:      "Size of accepted audio uploads.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	rejectedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "rejected_requests_total",
			Help:      "Upload requests rejected before the pipeline ran.",
		},
		[]string{"reason"},
	)
)

func ObserveStage(stage string, started time.Time, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	stageDuration.WithLabelValues(stage, outcome).Observe(time.Since(started).Seconds())
}

func ObserveCapture(mode, result string, started time.Time) {
	capturesTotal.WithLabelValues(mode, result).Inc()
	captureDuration.WithLabelValues(mode).Observe(time.Since(started).Seconds())
}

func ObserveUpload(size int) {
	uploadBytes.Observe(float64(size))
}

func RejectRequest(reason string) {
	rejectedRequestsTotal.WithLabelValues(reason).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
