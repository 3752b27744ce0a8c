// Package workers holds the background loops that keep local state fresh.
package workers

import (
	"context"
	"time"

	"github.com/rmcgee/healthdash/internal/healthapi"
	"github.com/rmcgee/healthdash/internal/logging"
	"github.com/rmcgee/healthdash/internal/store"
)

// Target is one collection the refresher keeps snapshotted. Refresh triggers
// a refetch, waits for it to settle, and returns the collection's current
// JSON payload (or an error if the fetch failed).
type Target struct {
	Name    string
	Refresh func(ctx context.Context) ([]byte, error)
}

// SnapshotRefresher periodically refetches every registered collection and
// persists the successful results, so the dashboard can show the last known
// data while the backend is unreachable.
type SnapshotRefresher struct {
	store    *store.Store
	interval time.Duration
	targets  []Target
	window   func() healthapi.DateRange
}

// NewSnapshotRefresher creates a refresher. window reports the date range
// snapshots are keyed by (the dashboard's currently active range).
func NewSnapshotRefresher(st *store.Store, interval time.Duration, window func() healthapi.DateRange, targets []Target) *SnapshotRefresher {
	return &SnapshotRefresher{
		store:    st,
		interval: interval,
		targets:  targets,
		window:   window,
	}
}

// Run starts the refresh loop and blocks until ctx is cancelled.
func (s *SnapshotRefresher) Run(ctx context.Context) {
	log := logging.Logger
	log.Info().Dur("interval", s.interval).Int("targets", len(s.targets)).Msg("snapshot refresher started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Do an initial pass
	s.refreshAll(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("snapshot refresher stopped")
			return
		case <-ticker.C:
			s.refreshAll(ctx)
		}
	}
}

func (s *SnapshotRefresher) refreshAll(ctx context.Context) {
	log := logging.Logger
	window := s.window()

	for _, target := range s.targets {
		select {
		case <-ctx.Done():
			return
		default:
		}

		payload, err := target.Refresh(ctx)
		if err != nil {
			log.Warn().Str("collection", target.Name).Err(err).Msg("refresh failed, keeping previous snapshot")
			continue
		}

		if err := s.store.SaveSnapshot(ctx, target.Name, window, payload); err != nil {
			log.Error().Str("collection", target.Name).Err(err).Msg("failed to persist snapshot")
			continue
		}

		log.Debug().
			Str("collection", target.Name).
			Str("start", window.StartDate).
			Str("end", window.EndDate).
			Int("bytes", len(payload)).
			Msg("snapshot persisted")
	}
}
