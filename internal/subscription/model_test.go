package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsExpired_AdmissibleOnEndDate(t *testing.T) {
	sub := &Subscription{
		TotalSessionsAllowed: 12,
		SessionsUsed:         3,
		EndDate:              date(2026, 3, 15),
	}

	// Still good on the end date itself, even late in the evening.
	assert.False(t, sub.IsExpired(time.Date(2026, 3, 15, 23, 30, 0, 0, time.UTC), time.UTC))
	// Gone the next morning.
	assert.True(t, sub.IsExpired(time.Date(2026, 3, 16, 0, 30, 0, 0, time.UTC), time.UTC))
}

func TestIsExpired_SessionsExhausted(t *testing.T) {
	sub := &Subscription{
		TotalSessionsAllowed: 8,
		SessionsUsed:         8,
		EndDate:              date(2026, 12, 31),
	}

	assert.True(t, sub.IsExpired(date(2026, 6, 1), time.UTC))
}

func TestIsExpiringSoon(t *testing.T) {
	now := date(2026, 3, 10)

	tests := []struct {
		name      string
		endDate   time.Time
		total     int
		used      int
		expecting bool
	}{
		{"far out, plenty left", date(2026, 6, 1), 20, 2, false},
		{"end date within a week", date(2026, 3, 15), 20, 2, true},
		{"end date today", date(2026, 3, 10), 20, 2, true},
		{"three sessions left", date(2026, 6, 1), 20, 17, true},
		{"four sessions left", date(2026, 6, 1), 20, 16, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &Subscription{
				TotalSessionsAllowed: tt.total,
				SessionsUsed:         tt.used,
				EndDate:              tt.endDate,
			}
			assert.Equal(t, tt.expecting, sub.IsExpiringSoon(now, time.UTC))
		})
	}
}

func TestUsagePercentage(t *testing.T) {
	sub := &Subscription{TotalSessionsAllowed: 8, SessionsUsed: 2}
	assert.InDelta(t, 25.0, sub.UsagePercentage(), 0.001)

	empty := &Subscription{}
	assert.Equal(t, 0.0, empty.UsagePercentage())
}

func TestClassifyPayment(t *testing.T) {
	now := date(2026, 3, 10)

	overdue := date(2026, 3, 5)
	bucket, days := classifyPayment(&overdue, now, time.UTC)
	assert.Equal(t, BucketOverdue, bucket)
	assert.Equal(t, 5, days)

	today := date(2026, 3, 10)
	bucket, days = classifyPayment(&today, now, time.UTC)
	assert.Equal(t, BucketDueToday, bucket)
	assert.Equal(t, 0, days)

	soon := date(2026, 3, 14)
	bucket, _ = classifyPayment(&soon, now, time.UTC)
	assert.Equal(t, BucketDueSoon, bucket)

	far := date(2026, 5, 1)
	bucket, _ = classifyPayment(&far, now, time.UTC)
	assert.Equal(t, BucketCurrent, bucket)

	bucket, days = classifyPayment(nil, now, time.UTC)
	assert.Equal(t, BucketCurrent, bucket)
	assert.Equal(t, 0, days)
}

func TestClassifyRenewal(t *testing.T) {
	assert.Equal(t, UrgencyCritical, classifyRenewal(0))
	assert.Equal(t, UrgencyCritical, classifyRenewal(7))
	assert.Equal(t, UrgencyHigh, classifyRenewal(8))
	assert.Equal(t, UrgencyHigh, classifyRenewal(15))
	assert.Equal(t, UrgencyMedium, classifyRenewal(16))
	assert.Equal(t, UrgencyMedium, classifyRenewal(30))
	assert.Equal(t, UrgencyLow, classifyRenewal(31))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, canTransition(StatusActive, StatusSuspended))
	assert.True(t, canTransition(StatusActive, StatusCancelled))
	assert.True(t, canTransition(StatusActive, StatusExpired))
	assert.True(t, canTransition(StatusSuspended, StatusActive))
	assert.True(t, canTransition(StatusSuspended, StatusCancelled))
	assert.True(t, canTransition(StatusExpired, StatusCancelled))

	assert.False(t, canTransition(StatusExpired, StatusActive))
	assert.False(t, canTransition(StatusCancelled, StatusActive))
	assert.False(t, canTransition(StatusCancelled, StatusExpired))
	assert.False(t, canTransition(StatusSuspended, StatusExpired))
}
