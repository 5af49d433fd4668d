package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenger_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "challenger_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ClientsSavedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenger_clients_saved_total",
			Help: "Client records persisted, by operation and resulting status",
		},
		[]string{"operation", "status"},
	)

	RenewalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenger_renewals_total",
			Help: "Subscription renewals, by period and payment method",
		},
		[]string{"period", "payment_method"},
	)

	RenewalRevenueTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "challenger_renewal_revenue_som_total",
			Help: "Sum of amounts charged on renewal",
		},
	)

	FreezesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenger_freezes_total",
			Help: "Freeze submissions, split into recorded episodes and repeats",
		},
		[]string{"outcome"},
	)

	VisitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenger_visits_total",
			Help: "Visit ledger changes",
		},
		[]string{"action"},
	)

	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenger_validation_failures_total",
			Help: "Rejected submissions by error kind",
		},
		[]string{"kind"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenger_cache_lookups_total",
			Help: "Reference data cache lookups",
		},
		[]string{"result"},
	)

	ClientsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "challenger_clients",
			Help: "Clients by lifecycle status as of the last summary",
		},
		[]string{"status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordClientSaved(operation, status string) {
	ClientsSavedTotal.WithLabelValues(operation, status).Inc()
}

func RecordRenewal(period, paymentMethod string, amount int64) {
	RenewalsTotal.WithLabelValues(period, paymentMethod).Inc()
	if amount > 0 {
		RenewalRevenueTotal.Add(float64(amount))
	}
}

func RecordFreeze(recorded bool) {
	if recorded {
		FreezesTotal.WithLabelValues("recorded").Inc()
		return
	}
	FreezesTotal.WithLabelValues("repeat").Inc()
}

func RecordVisit(action string) {
	VisitsTotal.WithLabelValues(action).Inc()
}

func RecordValidationFailure(kind string) {
	ValidationFailuresTotal.WithLabelValues(kind).Inc()
}

func RecordCacheLookup(hit bool) {
	if hit {
		CacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	CacheLookupsTotal.WithLabelValues("miss").Inc()
}

func SetClientsByStatus(counts map[string]int) {
	for status, n := range counts {
		ClientsByStatus.WithLabelValues(status).Set(float64(n))
	}
}
