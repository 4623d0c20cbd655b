package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for ProxyRequests.
const (
	OutcomeSuccess         = "success"
	OutcomeBackendError    = "backend_error"
	OutcomeValidationError = "validation_error"
	OutcomeTransportError  = "transport_error"
	OutcomeLocalError      = "local_error"
)

var (
	// 1. Throughput
	ProxyRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frontend_proxy_requests_total",
		Help: "Proxy requests handled, by route and outcome",
	}, []string{"route", "outcome"})

	UploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frontend_upload_bytes_total",
		Help: "Bytes relayed to the backend upload endpoint",
	})

	// 2. Latency of the single outbound call each proxy makes
	BackendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "frontend_backend_request_duration_seconds",
		Help:    "Time spent waiting on the backend service",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// 3. State
	StagedUploads = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "frontend_staged_uploads",
		Help: "Upload temp files currently on local disk",
	})
)
