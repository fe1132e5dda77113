package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("POST", "/members/:id/check-in", "200", 0.05)
	RecordHTTPRequest("POST", "/members/:id/check-in", "200", 0.07)
	RecordHTTPRequest("POST", "/members/:id/check-in", "409", 0.01)

	okCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/members/:id/check-in", "200"))
	rejectCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/members/:id/check-in", "409"))

	assert.Equal(t, float64(2), okCount)
	assert.Equal(t, float64(1), rejectCount)
}

func TestRecordAdmission(t *testing.T) {
	AdmissionsTotal.Reset()

	RecordAdmission(true, "", 0.02)
	RecordAdmission(true, "", 0.03)
	RecordAdmission(false, "payment_pending", 0.01)
	RecordAdmission(false, "no_sessions_remaining", 0.01)

	admitted := testutil.ToFloat64(AdmissionsTotal.WithLabelValues("admitted", ""))
	payment := testutil.ToFloat64(AdmissionsTotal.WithLabelValues("rejected", "payment_pending"))
	balance := testutil.ToFloat64(AdmissionsTotal.WithLabelValues("rejected", "no_sessions_remaining"))

	assert.Equal(t, float64(2), admitted)
	assert.Equal(t, float64(1), payment)
	assert.Equal(t, float64(1), balance)
}

func TestRecordCheckout(t *testing.T) {
	testCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ptf_checkouts_total_test",
			Help: "Total number of completed check-outs",
		},
	)

	oldCounter := CheckoutsTotal
	CheckoutsTotal = testCounter
	defer func() { CheckoutsTotal = oldCounter }()

	RecordCheckout()
	RecordCheckout()

	assert.Equal(t, float64(2), testutil.ToFloat64(testCounter))
}

func TestRecordSessionDebit(t *testing.T) {
	SessionsDebitedTotal.Reset()

	RecordSessionDebit("regular")
	RecordSessionDebit("regular")
	RecordSessionDebit("complimentary")

	regular := testutil.ToFloat64(SessionsDebitedTotal.WithLabelValues("regular"))
	comp := testutil.ToFloat64(SessionsDebitedTotal.WithLabelValues("complimentary"))

	assert.Equal(t, float64(2), regular)
	assert.Equal(t, float64(1), comp)
}

func TestRecordSubscriptionCreated(t *testing.T) {
	SubscriptionsCreatedTotal.Reset()

	RecordSubscriptionCreated("indoor")
	RecordSubscriptionCreated("outdoor")
	RecordSubscriptionCreated("indoor")

	indoor := testutil.ToFloat64(SubscriptionsCreatedTotal.WithLabelValues("indoor"))
	outdoor := testutil.ToFloat64(SubscriptionsCreatedTotal.WithLabelValues("outdoor"))

	assert.Equal(t, float64(2), indoor)
	assert.Equal(t, float64(1), outdoor)
}

func TestRecordCacheLookup(t *testing.T) {
	CacheRequestsTotal.Reset()

	RecordCacheLookup(true)
	RecordCacheLookup(true)
	RecordCacheLookup(false)

	hits := testutil.ToFloat64(CacheRequestsTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(CacheRequestsTotal.WithLabelValues("miss"))

	assert.Equal(t, float64(2), hits)
	assert.Equal(t, float64(1), misses)
}
