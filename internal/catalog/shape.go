package catalog

import "time"

// Shape is the plan duration/frequency variant. Renewal arithmetic hangs
// off the shape so the engine never branches on raw strings.
type Shape string

const (
	ShapeDaily     Shape = "daily"
	ShapeWeekly    Shape = "weekly"
	ShapeMonthly   Shape = "monthly"
	ShapeQuarterly Shape = "quarterly"
	ShapeBiAnnual  Shape = "bi_annual"
	ShapeAnnual    Shape = "annual"
	ShapePerWeek1  Shape = "per_week_1"
	ShapePerWeek2  Shape = "per_week_2"
	ShapePerWeek3  Shape = "per_week_3"
	ShapePerWeek4  Shape = "per_week_4"
	ShapePerWeek5  Shape = "per_week_5"
)

func (s Shape) Valid() bool {
	switch s {
	case ShapeDaily, ShapeWeekly, ShapeMonthly, ShapeQuarterly,
		ShapeBiAnnual, ShapeAnnual,
		ShapePerWeek1, ShapePerWeek2, ShapePerWeek3, ShapePerWeek4, ShapePerWeek5:
		return true
	default:
		return false
	}
}

// TotalSessions is the session budget a subscription of this shape starts
// with. A daily pass entitles exactly one session.
func (s Shape) TotalSessions(sessionsPerWeek, durationWeeks int) int {
	if s == ShapeDaily {
		return 1
	}
	return sessionsPerWeek * durationWeeks
}

// EndDate is the last admissible day of a subscription started on start.
func (s Shape) EndDate(start time.Time, durationWeeks int) time.Time {
	if s == ShapeDaily {
		return start.AddDate(0, 0, 1)
	}
	return start.AddDate(0, 0, durationWeeks*7)
}
