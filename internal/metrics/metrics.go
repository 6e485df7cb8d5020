package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	linksCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlink_created_total",
			Help: "Short links created, by code kind (random or custom).",
		},
		[]string{"kind"},
	)

	codeCollisionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlink_code_collisions_total",
			Help: "Random short codes rejected by the unique index and regenerated.",
		},
	)

	redirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlink_redirects_total",
			Help: "Redirect lookups by result.",
		},
		[]string{"result"},
	)

	clickRecordFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlink_click_record_failures_total",
			Help: "Clicks whose counter increment or event insert failed.",
		},
	)

	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Authentication attempts by method and outcome.",
		},
		[]string{"method", "outcome"},
	)

	rateLimitHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter.",
		},
	)
)

func RecordLinkCreated(custom bool) {
	kind := "random"
	if custom {
		kind = "custom"
	}
	linksCreatedTotal.WithLabelValues(kind).Inc()
}

func RecordCodeCollision() {
	codeCollisionsTotal.Inc()
}

// RecordRedirect - result: "found" или "not_found"
func RecordRedirect(result string) {
	redirectsTotal.WithLabelValues(result).Inc()
}

func RecordClickFailure() {
	clickRecordFailuresTotal.Inc()
}

// RecordAuth - method: "password", "register", "refresh", провайдер OAuth
func RecordAuth(method string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	authAttemptsTotal.WithLabelValues(method, outcome).Inc()
}

func RecordRateLimitHit() {
	rateLimitHitsTotal.Inc()
}
