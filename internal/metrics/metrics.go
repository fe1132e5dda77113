package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ptf_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ptf_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AdmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ptf_admissions_total",
			Help: "Check-in decisions by result and rejection reason",
		},
		[]string{"result", "reason"},
	)

	AdmissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ptf_admission_duration_seconds",
			Help:    "Duration of the admission transaction",
			Buckets: prometheus.DefBuckets,
		},
	)

	CheckoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ptf_checkouts_total",
			Help: "Total number of completed check-outs",
		},
	)

	SessionsDebitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ptf_sessions_debited_total",
			Help: "Sessions consumed, by session log type",
		},
		[]string{"type"},
	)

	SessionsCreditedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ptf_sessions_credited_total",
			Help: "Sessions restored by administrative correction",
		},
	)

	SubscriptionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ptf_subscriptions_created_total",
			Help: "Subscriptions issued, by membership type",
		},
		[]string{"membership_type"},
	)

	SubscriptionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ptf_subscriptions_expired_total",
			Help: "Subscriptions transitioned to expired by lifecycle refresh",
		},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ptf_cache_requests_total",
			Help: "Cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordAdmission(admitted bool, reason string, duration float64) {
	result := "admitted"
	if !admitted {
		result = "rejected"
	}
	AdmissionsTotal.WithLabelValues(result, reason).Inc()
	AdmissionDuration.Observe(duration)
}

func RecordCheckout() {
	CheckoutsTotal.Inc()
}

func RecordSessionDebit(logType string) {
	SessionsDebitedTotal.WithLabelValues(logType).Inc()
}

func RecordSessionCredit() {
	SessionsCreditedTotal.Inc()
}

func RecordSubscriptionCreated(membershipType string) {
	SubscriptionsCreatedTotal.WithLabelValues(membershipType).Inc()
}

func RecordSubscriptionExpired() {
	SubscriptionsExpiredTotal.Inc()
}

func RecordCacheLookup(hit bool) {
	if hit {
		CacheRequestsTotal.WithLabelValues("hit").Inc()
	} else {
		CacheRequestsTotal.WithLabelValues("miss").Inc()
	}
}
