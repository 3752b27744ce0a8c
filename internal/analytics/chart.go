package analytics

import (
	"github.com/rmcgee/healthdash/internal/healthapi"
)

// ChartPoint is one point of a single-metric trend chart.
type ChartPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// WorkoutChartRow is one bar-chart row per workout. Absent optional fields
// are rendered as 0 so the workout still appears in every chart dimension.
type WorkoutChartRow struct {
	Date         string  `json:"date"`
	ActivityType string  `json:"activity_type"`
	Duration     float64 `json:"duration"` // minutes
	Distance     float64 `json:"distance"`
	Energy       float64 `json:"energy"`
	AvgHeartRate float64 `json:"avg_heart_rate"`
	TrimpScore   float64 `json:"trimp_score"`
}

const minutesPerHour = 60.0

// WorkoutChartRows projects workouts into bar-chart rows. A workout with no
// recorded distance still appears in the duration chart with distance 0.
// Output order matches input order; the adapter never sorts.
func WorkoutChartRows(workouts []healthapi.Workout) []WorkoutChartRow {
	rows := make([]WorkoutChartRow, 0, len(workouts))
	for _, w := range workouts {
		rows = append(rows, WorkoutChartRow{
			Date:         w.StartDate.Format(dateLayout),
			ActivityType: w.ActivityType,
			Duration:     w.Duration,
			Distance:     orZero(w.TotalDistance),
			Energy:       orZero(w.TotalEnergyBurned),
			AvgHeartRate: orZero(w.AvgHeartRate),
			TrimpScore:   orZero(w.TrimpScore),
		})
	}
	return rows
}

// RestingHRTrendPoints projects daily metrics into a resting heart rate
// trend, excluding days with no recorded value.
func RestingHRTrendPoints(metrics []healthapi.DailyMetrics) []ChartPoint {
	return dailyPoints(metrics, func(m healthapi.DailyMetrics) *float64 { return m.RestingHR })
}

// StepTrendPoints projects daily metrics into a step-count trend,
// excluding days with no recorded value.
func StepTrendPoints(metrics []healthapi.DailyMetrics) []ChartPoint {
	return dailyPoints(metrics, func(m healthapi.DailyMetrics) *float64 { return m.Steps })
}

// ActiveEnergyTrendPoints projects daily metrics into an active-energy
// trend, excluding days with no recorded value.
func ActiveEnergyTrendPoints(metrics []healthapi.DailyMetrics) []ChartPoint {
	return dailyPoints(metrics, func(m healthapi.DailyMetrics) *float64 { return m.ActiveEnergyKcal })
}

// VO2MaxTrendPoints projects daily metrics into a VO2max trend, excluding
// days with no recorded value.
func VO2MaxTrendPoints(metrics []healthapi.DailyMetrics) []ChartPoint {
	return dailyPoints(metrics, func(m healthapi.DailyMetrics) *float64 { return m.VO2Max })
}

// SleepTrendPoints projects nightly metrics into a sleep-duration trend,
// excluding nights with no recorded duration. Sleep duration is stored in
// minutes; the hours conversion happens here at the adapter boundary, not
// in the aggregator.
func SleepTrendPoints(metrics []healthapi.NightlyMetrics, inHours bool) []ChartPoint {
	points := make([]ChartPoint, 0, len(metrics))
	for _, m := range metrics {
		if m.SleepDurationMin == nil {
			continue
		}
		value := *m.SleepDurationMin
		if inHours {
			value /= minutesPerHour
		}
		points = append(points, ChartPoint{Date: m.Date, Value: value})
	}
	return points
}

// SleepEfficiencyPoints projects nightly metrics into a sleep-efficiency
// trend, excluding nights with no recorded efficiency.
func SleepEfficiencyPoints(metrics []healthapi.NightlyMetrics) []ChartPoint {
	points := make([]ChartPoint, 0, len(metrics))
	for _, m := range metrics {
		if m.SleepEfficiencyPct == nil {
			continue
		}
		points = append(points, ChartPoint{Date: m.Date, Value: *m.SleepEfficiencyPct})
	}
	return points
}

func dailyPoints(metrics []healthapi.DailyMetrics, field func(healthapi.DailyMetrics) *float64) []ChartPoint {
	points := make([]ChartPoint, 0, len(metrics))
	for _, m := range metrics {
		v := field(m)
		if v == nil {
			continue
		}
		points = append(points, ChartPoint{Date: m.Date, Value: *v})
	}
	return points
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
