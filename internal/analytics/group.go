package analytics

import (
	"github.com/rmcgee/healthdash/internal/healthapi"
)

// GroupWorkoutsByDate partitions workouts by the calendar date of their
// start timestamp, preserving input order within each group.
func GroupWorkoutsByDate(workouts []healthapi.Workout) map[string][]healthapi.Workout {
	groups := make(map[string][]healthapi.Workout)
	for _, w := range workouts {
		date := w.StartDate.Format(dateLayout)
		groups[date] = append(groups[date], w)
	}
	return groups
}

// IndexDailyMetricsByDate builds a date -> metrics lookup. If the input
// contains duplicate dates, the later entity silently overwrites the
// earlier one; the backend guarantees at most one entity per date, so a
// duplicate means the newest row is the authoritative one.
func IndexDailyMetricsByDate(metrics []healthapi.DailyMetrics) map[string]healthapi.DailyMetrics {
	index := make(map[string]healthapi.DailyMetrics, len(metrics))
	for _, m := range metrics {
		index[m.Date] = m
	}
	return index
}

// IndexNightlyMetricsByDate builds a date -> metrics lookup with the same
// later-entry-wins behavior as IndexDailyMetricsByDate.
func IndexNightlyMetricsByDate(metrics []healthapi.NightlyMetrics) map[string]healthapi.NightlyMetrics {
	index := make(map[string]healthapi.NightlyMetrics, len(metrics))
	for _, m := range metrics {
		index[m.Date] = m
	}
	return index
}
