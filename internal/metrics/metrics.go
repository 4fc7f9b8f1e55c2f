package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sentiment analysis metrics
var (
	// AnalysesTotal counts analysis runs by resulting sentiment
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_analyses_total",
			Help: "Total sentiment analyses by resulting sentiment",
		},
		[]string{"sentiment"},
	)
)

// Tenant resolution metrics
var (
	// TenantResolutionsTotal counts hostname resolutions by outcome.
	// Outcomes: "matched", "sentinel", "fallback" (unknown subdomain,
	// fail-open), "rejected" (strict mode).
	TenantResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_resolutions_total",
			Help: "Total tenant resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// TenantBindFailuresTotal counts failed session-variable binds.
	// A non-zero value in fail-open mode means queries may have run unscoped.
	TenantBindFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_bind_failures_total",
			Help: "Total failures to set tenant session variables on a connection",
		},
	)
)

// HTTP error metrics
var (
	// HTTPErrorsTotal tracks HTTP errors by structured error type
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total HTTP errors by error type",
		},
		[]string{"type"},
	)
)

// Organization cache metrics
var (
	// OrgCacheHitsTotal counts organization cache hits by layer ("memory", "redis")
	OrgCacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "org_cache_hits_total",
			Help: "Organization cache hits by layer",
		},
		[]string{"layer"},
	)

	// OrgCacheMissesTotal counts lookups that fell through to Postgres
	OrgCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "org_cache_misses_total",
			Help: "Organization cache misses (served from Postgres)",
		},
	)

	// CircuitBreakerStateChanges tracks breaker transitions by component and new state
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)
)

// Notification metrics
var (
	// NotificationsTotal counts outbound notifications by status ("sent", "failed")
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total outbound notifications by status",
		},
		[]string{"status"},
	)
)
