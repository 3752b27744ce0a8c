package analytics

import (
	"testing"
	"time"

	"github.com/rmcgee/healthdash/internal/healthapi"
)

func TestGroupWorkoutsByDate(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)

	workouts := []healthapi.Workout{
		{ID: 1, ActivityType: "Running", StartDate: day1},
		{ID: 2, ActivityType: "Cycling", StartDate: day2},
		{ID: 3, ActivityType: "Walking", StartDate: day1.Add(10 * time.Hour)},
	}

	groups := GroupWorkoutsByDate(workouts)

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	total := 0
	for _, group := range groups {
		total += len(group)
	}
	if total != len(workouts) {
		t.Errorf("grouping changed workout count: got %d, want %d", total, len(workouts))
	}

	march1 := groups["2024-03-01"]
	if len(march1) != 2 {
		t.Fatalf("expected 2 workouts on 2024-03-01, got %d", len(march1))
	}
	// Input order is preserved within a group
	if march1[0].ID != 1 || march1[1].ID != 3 {
		t.Errorf("group order not preserved: got IDs %d, %d", march1[0].ID, march1[1].ID)
	}
}

func TestGroupWorkoutsByDateEmpty(t *testing.T) {
	groups := GroupWorkoutsByDate(nil)
	if len(groups) != 0 {
		t.Errorf("expected empty map, got %d groups", len(groups))
	}
}

func TestIndexDailyMetricsByDate(t *testing.T) {
	steps1 := 8000.0
	steps2 := 9500.0

	metrics := []healthapi.DailyMetrics{
		{Date: "2024-01-01", Steps: &steps1},
		{Date: "2024-01-02"},
		{Date: "2024-01-01", Steps: &steps2}, // duplicate date
	}

	index := IndexDailyMetricsByDate(metrics)

	if len(index) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(index))
	}

	// The later entity wins on a duplicate date
	got, ok := index["2024-01-01"]
	if !ok {
		t.Fatal("expected entry for 2024-01-01")
	}
	if got.Steps == nil || *got.Steps != steps2 {
		t.Errorf("expected later entry (steps %v) to win, got %v", steps2, got.Steps)
	}
}

func TestIndexNightlyMetricsByDate(t *testing.T) {
	sleep1 := 400.0
	sleep2 := 450.0

	metrics := []healthapi.NightlyMetrics{
		{Date: "2024-01-05", SleepDurationMin: &sleep1},
		{Date: "2024-01-05", SleepDurationMin: &sleep2},
		{Date: "2024-01-06"},
	}

	index := IndexNightlyMetricsByDate(metrics)

	if len(index) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(index))
	}
	if got := index["2024-01-05"]; got.SleepDurationMin == nil || *got.SleepDurationMin != sleep2 {
		t.Errorf("expected later entry to win for 2024-01-05")
	}
}
