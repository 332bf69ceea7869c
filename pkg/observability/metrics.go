package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts API requests by route, method and status code.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fredmortgage_http_requests_total",
			Help: "HTTP requests handled, by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPDuration observes request latency by route.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fredmortgage_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// SchedulesBuilt counts amortization ledgers built, by calculator variant
	// and payment frequency.
	SchedulesBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fredmortgage_schedules_built_total",
			Help: "Amortization schedules computed.",
		},
		[]string{"variant", "period"},
	)

	// ScheduleBuildDuration observes how long a ledger fold takes.
	ScheduleBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fredmortgage_schedule_build_duration_seconds",
			Help:    "Time spent building amortization ledgers.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		},
	)

	// SchedulePeriods observes the number of periods until payoff.
	SchedulePeriods = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fredmortgage_schedule_periods",
			Help:    "Periods until payoff of computed schedules.",
			Buckets: []float64{12, 60, 120, 180, 240, 360, 520, 780, 1560},
		},
	)

	// CacheLookups counts schedule cache lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fredmortgage_schedule_cache_lookups_total",
			Help: "Schedule cache lookups, by result.",
		},
		[]string{"result"},
	)

	// CalculationErrors counts rejected operations by error kind.
	CalculationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fredmortgage_calculation_errors_total",
			Help: "Rejected mortgage operations, by error kind.",
		},
		[]string{"operation", "kind"},
	)
)

// MetricsHandler serves the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
