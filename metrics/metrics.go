// Package metrics provides Prometheus metrics for hn402.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts API requests by route and response status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hn402",
			Name:      "requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"route", "status"},
	)

	// RequestDuration measures request handling duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hn402",
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// PaymentsSettledTotal counts settled payments by route.
	PaymentsSettledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hn402",
			Name:      "payments_settled_total",
			Help:      "Total number of settled payments",
		},
		[]string{"route"},
	)

	// RevenueAtomicTotal sums settled payment amounts in atomic units.
	RevenueAtomicTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hn402",
			Name:      "revenue_atomic_total",
			Help:      "Total settled revenue in atomic currency units",
		},
		[]string{"route"},
	)

	// PaymentRejectionsTotal counts rejected payments by reason.
	PaymentRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hn402",
			Name:      "payment_rejections_total",
			Help:      "Total number of rejected payment attempts",
		},
		[]string{"reason"},
	)

	// UpstreamFetchesTotal counts upstream API calls by kind and outcome.
	UpstreamFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hn402",
			Name:      "upstream_fetches_total",
			Help:      "Total number of upstream Hacker News API calls",
		},
		[]string{"kind", "outcome"},
	)
)

// ObserveRequest records one handled request.
func ObserveRequest(route, status string, seconds float64) {
	RequestsTotal.WithLabelValues(route, status).Inc()
	RequestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordSettlement records a settled payment and its revenue.
func RecordSettlement(route string, amount int64) {
	PaymentsSettledTotal.WithLabelValues(route).Inc()
	RevenueAtomicTotal.WithLabelValues(route).Add(float64(amount))
}

// RecordRejection records a rejected payment attempt.
func RecordRejection(reason string) {
	PaymentRejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordUpstreamFetch records one upstream API call.
func RecordUpstreamFetch(kind, outcome string) {
	UpstreamFetchesTotal.WithLabelValues(kind, outcome).Inc()
}
