package workers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rmcgee/healthdash/internal/healthapi"
	"github.com/rmcgee/healthdash/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func fixedWindow() healthapi.DateRange {
	return healthapi.DateRange{StartDate: "2024-03-01", EndDate: "2024-03-10"}
}

func TestRefreshAllPersistsSnapshots(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	targets := []Target{
		{Name: "workouts", Refresh: func(ctx context.Context) ([]byte, error) {
			return []byte(`[{"id":1}]`), nil
		}},
		{Name: "daily_metrics", Refresh: func(ctx context.Context) ([]byte, error) {
			return []byte(`[{"date":"2024-03-01"}]`), nil
		}},
	}

	refresher := NewSnapshotRefresher(st, time.Minute, fixedWindow, targets)
	refresher.refreshAll(ctx)

	payload, _, err := st.LoadSnapshot(ctx, "workouts", fixedWindow())
	if err != nil {
		t.Fatalf("loading workouts snapshot: %v", err)
	}
	if string(payload) != `[{"id":1}]` {
		t.Errorf("unexpected payload: %s", payload)
	}

	payload, _, err = st.LoadSnapshot(ctx, "daily_metrics", fixedWindow())
	if err != nil {
		t.Fatalf("loading daily snapshot: %v", err)
	}
	if string(payload) != `[{"date":"2024-03-01"}]` {
		t.Errorf("unexpected payload: %s", payload)
	}
}

func TestRefreshAllKeepsPreviousSnapshotOnFailure(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	var shouldFail atomic.Bool

	targets := []Target{
		{Name: "workouts", Refresh: func(ctx context.Context) ([]byte, error) {
			if shouldFail.Load() {
				return nil, fmt.Errorf("backend unreachable")
			}
			return []byte(`["good"]`), nil
		}},
	}

	refresher := NewSnapshotRefresher(st, time.Minute, fixedWindow, targets)

	refresher.refreshAll(ctx)
	shouldFail.Store(true)
	refresher.refreshAll(ctx)

	// The failed pass must not clobber the persisted payload
	payload, _, err := st.LoadSnapshot(ctx, "workouts", fixedWindow())
	if err != nil {
		t.Fatalf("loading snapshot: %v", err)
	}
	if string(payload) != `["good"]` {
		t.Errorf("failed refresh clobbered the snapshot: %s", payload)
	}
}

func TestRefreshAllContinuesPastFailedTarget(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	targets := []Target{
		{Name: "broken", Refresh: func(ctx context.Context) ([]byte, error) {
			return nil, errors.New("boom")
		}},
		{Name: "healthy", Refresh: func(ctx context.Context) ([]byte, error) {
			return []byte(`["ok"]`), nil
		}},
	}

	refresher := NewSnapshotRefresher(st, time.Minute, fixedWindow, targets)
	refresher.refreshAll(ctx)

	if _, _, err := st.LoadSnapshot(ctx, "broken", fixedWindow()); !errors.Is(err, store.ErrNoSnapshot) {
		t.Errorf("expected no snapshot for failed target, got %v", err)
	}
	if _, _, err := st.LoadSnapshot(ctx, "healthy", fixedWindow()); err != nil {
		t.Errorf("later target must still refresh after an earlier failure: %v", err)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	st := setupTestStore(t)

	var calls atomic.Int32
	targets := []Target{
		{Name: "workouts", Refresh: func(ctx context.Context) ([]byte, error) {
			calls.Add(1)
			return []byte(`[]`), nil
		}},
	}

	refresher := NewSnapshotRefresher(st, time.Hour, fixedWindow, targets)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		refresher.Run(ctx)
		close(done)
	}()

	// The initial pass runs immediately; then cancel before any tick
	deadline := time.After(2 * time.Second)
	for calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("initial refresh pass never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}

	if calls.Load() != 1 {
		t.Errorf("expected exactly the initial pass, got %d", calls.Load())
	}
}
