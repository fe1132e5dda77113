package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedClock(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	c := NewFixed(start)

	assert.Equal(t, start, c.Now())

	c.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), c.Now())

	c.Set(start.AddDate(0, 0, 1))
	assert.Equal(t, start.AddDate(0, 0, 1), c.Now())
}

func TestDayOf(t *testing.T) {
	nairobi, err := time.LoadLocation("Africa/Nairobi")
	require.NoError(t, err)

	// 22:30 UTC is 01:30 the next day in Nairobi (UTC+3).
	late := time.Date(2025, 6, 1, 22, 30, 0, 0, time.UTC)
	day := DayOf(late, nairobi)
	assert.Equal(t, 2, day.Day())
	assert.Equal(t, 0, day.Hour())
}

func TestSameDayAcrossTimezone(t *testing.T) {
	nairobi, err := time.LoadLocation("Africa/Nairobi")
	require.NoError(t, err)

	a := time.Date(2025, 6, 1, 22, 30, 0, 0, time.UTC) // June 2 in Nairobi
	b := time.Date(2025, 6, 2, 4, 0, 0, 0, time.UTC)   // June 2 in Nairobi

	assert.False(t, SameDay(a, b, time.UTC))
	assert.True(t, SameDay(a, b, nairobi))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2025, 6, 8, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 7, DaysBetween(a, b, time.UTC))
	assert.Equal(t, -7, DaysBetween(b, a, time.UTC))
	assert.Equal(t, 0, DaysBetween(a, a, time.UTC))
}
