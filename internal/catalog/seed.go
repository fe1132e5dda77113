package catalog

import "github.com/shopspring/decimal"

func kes(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// BuiltinPlans is the seedable rate card. CreateOrGet only accepts codes
// from this set; anything else is plan_unknown.
func BuiltinPlans() []Plan {
	return []Plan{
		{
			Code: "indoor_daily", Name: "Indoor Day Pass",
			MembershipType: MembershipIndoor, Shape: ShapeDaily,
			SessionsPerWeek: 7, DurationWeeks: 1,
			SessionFee: kes(1000), Active: true,
		},
		{
			Code: "indoor_monthly", Name: "Indoor Monthly",
			MembershipType: MembershipIndoor, Shape: ShapeMonthly,
			SessionsPerWeek: 7, DurationWeeks: 4,
			MonthlyFee: kes(8500), Active: true,
		},
		{
			Code: "indoor_quarterly", Name: "Indoor Quarterly",
			MembershipType: MembershipIndoor, Shape: ShapeQuarterly,
			SessionsPerWeek: 7, DurationWeeks: 13,
			MonthlyFee: kes(7500), Active: true,
		},
		{
			Code: "indoor_bi_annual", Name: "Indoor Six Months",
			MembershipType: MembershipIndoor, Shape: ShapeBiAnnual,
			SessionsPerWeek: 7, DurationWeeks: 26,
			MonthlyFee: kes(7000), Active: true,
		},
		{
			Code: "indoor_annual", Name: "Indoor Annual",
			MembershipType: MembershipIndoor, Shape: ShapeAnnual,
			SessionsPerWeek: 7, DurationWeeks: 52,
			MonthlyFee: kes(6500), Active: true,
		},
		{
			Code: "outdoor_weekly", Name: "Outdoor Weekly",
			MembershipType: MembershipOutdoor, Shape: ShapeWeekly,
			SessionsPerWeek: 5, DurationWeeks: 1,
			WeeklyFee: kes(1500), Active: true,
		},
		{
			Code: "outdoor_1_per_week", Name: "Outdoor 1 Session / Week",
			MembershipType: MembershipOutdoor, Shape: ShapePerWeek1,
			SessionsPerWeek: 1, DurationWeeks: 4,
			WeeklyFee: kes(500), SessionFee: kes(500), Active: true,
		},
		{
			Code: "outdoor_2_per_week", Name: "Outdoor 2 Sessions / Week",
			MembershipType: MembershipOutdoor, Shape: ShapePerWeek2,
			SessionsPerWeek: 2, DurationWeeks: 4,
			WeeklyFee: kes(900), SessionFee: kes(450), Active: true,
		},
		{
			Code: "outdoor_3_per_week", Name: "Outdoor 3 Sessions / Week",
			MembershipType: MembershipOutdoor, Shape: ShapePerWeek3,
			SessionsPerWeek: 3, DurationWeeks: 4,
			WeeklyFee: kes(1200), SessionFee: kes(400), Active: true,
		},
		{
			Code: "outdoor_4_per_week", Name: "Outdoor 4 Sessions / Week",
			MembershipType: MembershipOutdoor, Shape: ShapePerWeek4,
			SessionsPerWeek: 4, DurationWeeks: 4,
			WeeklyFee: kes(1400), SessionFee: kes(350), Active: true,
		},
		{
			Code: "outdoor_5_per_week", Name: "Outdoor 5 Sessions / Week",
			MembershipType: MembershipOutdoor, Shape: ShapePerWeek5,
			SessionsPerWeek: 5, DurationWeeks: 4,
			WeeklyFee: kes(1500), SessionFee: kes(300), Active: true,
		},
	}
}

// BuiltinLocations seeds the outdoor training grounds.
func BuiltinLocations() []Location {
	return []Location{
		{Code: "arboretum", Name: "Arboretum Park"},
		{Code: "karura", Name: "Karura Forest"},
		{Code: "uhuru_park", Name: "Uhuru Park"},
	}
}
