package healthapi

import "time"

// Workout is a single recorded workout as returned by the backend.
// Distance, energy, heart rate and training-load fields are optional:
// the source device may not have recorded them.
type Workout struct {
	ID                int64     `json:"id"`
	ActivityType      string    `json:"activity_type"`
	Duration          float64   `json:"duration"` // minutes, reported by the device
	TotalDistance     *float64  `json:"total_distance"`
	DistanceUnit      string    `json:"distance_unit,omitempty"`
	TotalEnergyBurned *float64  `json:"total_energy_burned"`
	EnergyUnit        string    `json:"energy_unit,omitempty"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	AvgHeartRate      *float64  `json:"avg_heart_rate"`
	MaxHeartRate      *float64  `json:"max_heart_rate"`
	TrimpScore        *float64  `json:"trimp_score"`
}

// DailyMetrics holds one day's aggregated metrics. Each numeric field is
// independently optional; nil means the source recorded nothing that day.
// The backend guarantees at most one entity per date.
type DailyMetrics struct {
	Date             string   `json:"date"` // YYYY-MM-DD
	Steps            *float64 `json:"steps"`
	Steps7DayAvg     *float64 `json:"steps_7day_avg"`
	StepStreak       *int     `json:"step_streak"`
	RestingHR        *float64 `json:"resting_hr"`
	DistanceWalkedKM *float64 `json:"distance_walked_km"`
	FlightsClimbed   *float64 `json:"flights_climbed"`
	BasalEnergyKcal  *float64 `json:"basal_energy_kcal"`
	ActiveEnergyKcal *float64 `json:"active_energy_kcal"`
	TotalEnergyKcal  *float64 `json:"total_energy_kcal"`
	HRVSDNN          *float64 `json:"hrv_sdnn"`
	VO2Max           *float64 `json:"vo2_max"`
	METMinutes       *float64 `json:"met_minutes"`
}

// NightlyMetrics holds metrics for the night ending on Date.
type NightlyMetrics struct {
	Date                string   `json:"date"` // YYYY-MM-DD
	SleepDurationMin    *float64 `json:"sleep_duration_min"`
	TimeInBedMin        *float64 `json:"time_in_bed_min"`
	SleepEfficiencyPct  *float64 `json:"sleep_efficiency_pct"`
	AvgSleepHR          *float64 `json:"avg_sleep_hr"`
	RespiratoryRateMean *float64 `json:"respiratory_rate_mean"`
	SpO2Median          *float64 `json:"spo2_median"`
	WristTempDeviation  *float64 `json:"wrist_temp_deviation"`
}

// DateRange is a pair of calendar dates in YYYY-MM-DD form.
// StartDate <= EndDate is a precondition for the list endpoints.
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// WorkoutFilter constrains a workout listing. Zero-valued fields mean
// "unconstrained".
type WorkoutFilter struct {
	ActivityType string
	StartDate    string
	EndDate      string
	MinDuration  float64 // minutes
	MaxDuration  float64 // minutes
}

// HealthSummary is computed by the backend's analytics service over a date
// range. It is consumed for display only and never synthesized locally.
type HealthSummary struct {
	DateRange DateRange        `json:"date_range"`
	Workouts  WorkoutSummary   `json:"workouts"`
	HeartRate HeartRateSummary `json:"heart_rate"`
	Activity  ActivitySummary  `json:"activity"`
	Sleep     SleepSummary     `json:"sleep"`
}

type WorkoutSummary struct {
	Count            int     `json:"count"`
	TotalDurationMin float64 `json:"total_duration_min"`
	TotalDistanceKM  float64 `json:"total_distance_km"`
	TotalEnergyKcal  float64 `json:"total_energy_kcal"`
	AvgTrimpScore    float64 `json:"avg_trimp_score"`
}

type HeartRateSummary struct {
	AvgRestingHR  float64 `json:"avg_resting_hr"`
	MinRestingHR  float64 `json:"min_resting_hr"`
	MaxRestingHR  float64 `json:"max_resting_hr"`
	ObservedMaxHR float64 `json:"observed_max_hr"`
}

type ActivitySummary struct {
	AvgSteps         float64 `json:"avg_steps"`
	TotalSteps       float64 `json:"total_steps"`
	AvgActiveKcal    float64 `json:"avg_active_kcal"`
	TotalFlights     float64 `json:"total_flights"`
	LatestVO2Max     float64 `json:"latest_vo2_max"`
	DaysWithActivity int     `json:"days_with_activity"`
}

type SleepSummary struct {
	AvgDurationMin   float64 `json:"avg_duration_min"`
	AvgTimeInBedMin  float64 `json:"avg_time_in_bed_min"`
	AvgEfficiencyPct float64 `json:"avg_efficiency_pct"`
	AvgSleepHR       float64 `json:"avg_sleep_hr"`
}

// TrendPoint is one validated point of a daily-metric trend response.
type TrendPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Token is the bearer token returned by a credential login.
type Token struct {
	Token string `json:"token"`
}
