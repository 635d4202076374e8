package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animax_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "animax_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "animax_http_active_requests",
			Help: "Requests currently being served",
		},
	)

	RateLimitedRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "animax_rate_limited_requests_total",
			Help: "Requests rejected by the per-IP rate limiter",
		},
	)

	// Media
	MediaUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animax_media_uploads_total",
			Help: "Media uploads by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	MediaCleanupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animax_media_cleanup_failures_total",
			Help: "Object store deletions that failed during a cascading delete",
		},
		[]string{"entity", "step"},
	)

	// Catalog
	CascadeDeletes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animax_cascade_deletes_total",
			Help: "Completed cascading deletes by entity",
		},
		[]string{"entity"},
	)

	// Auth
	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animax_auth_failures_total",
			Help: "Rejected requests at the authentication gate by reason",
		},
		[]string{"reason"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordMediaUpload(kind string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	MediaUploads.WithLabelValues(kind, outcome).Inc()
}

func RecordMediaCleanupFailure(entity, step string) {
	MediaCleanupFailures.WithLabelValues(entity, step).Inc()
}

func RecordCascadeDelete(entity string) {
	CascadeDeletes.WithLabelValues(entity).Inc()
}

func RecordAuthFailure(reason string) {
	AuthFailures.WithLabelValues(reason).Inc()
}
