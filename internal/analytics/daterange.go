package analytics

import (
	"time"

	"github.com/rmcgee/healthdash/internal/healthapi"
)

// Named range selectors understood by ResolveRange.
const (
	RangeLast7Days  = "last-7-days"
	RangeLast30Days = "last-30-days"
	RangeLast90Days = "last-90-days"
	RangeThisWeek   = "this-week"
	RangeThisMonth  = "this-month"
)

const dateLayout = "2006-01-02"

// ResolveRange maps a named period selector to concrete calendar dates.
// The end date is always the current date; "last N days" windows start N
// days back, calendar windows start at the most recent Monday or the first
// of the month. Policy: an unrecognized selector resolves to the 30-day
// window instead of failing.
func ResolveRange(selector string, now time.Time) healthapi.DateRange {
	end := now

	var start time.Time
	switch selector {
	case RangeLast7Days:
		start = now.AddDate(0, 0, -7)
	case RangeLast90Days:
		start = now.AddDate(0, 0, -90)
	case RangeThisWeek:
		start = startOfWeek(now)
	case RangeThisMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case RangeLast30Days:
		start = now.AddDate(0, 0, -30)
	default:
		start = now.AddDate(0, 0, -30)
	}

	return healthapi.DateRange{
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
	}
}

// startOfWeek returns the most recent Monday on or before t.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started 6 days earlier
	}
	return t.AddDate(0, 0, -(weekday - 1))
}
