// Package server exposes the adapted health data to the dashboard rendering
// layer over HTTP. Handlers never fail the view: a fetch failure surfaces as
// an empty collection plus an error string in the response body.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rmcgee/healthdash/internal/analytics"
	"github.com/rmcgee/healthdash/internal/fetcher"
	"github.com/rmcgee/healthdash/internal/healthapi"
	"github.com/rmcgee/healthdash/internal/logging"
	"github.com/rmcgee/healthdash/internal/store"
	"github.com/rmcgee/healthdash/internal/workers"
)

// Collection names used as snapshot keys and fetcher labels.
const (
	CollectionWorkouts = "workouts"
	CollectionDaily    = "daily_metrics"
	CollectionNightly  = "nightly_metrics"
	CollectionSummary  = "summary"
)

// Server wires the per-collection fetchers, the analytics adapters and the
// HTTP routes together. Each fetcher owns its own state; they resolve in any
// order and the dashboard payload reflects whatever has settled so far.
type Server struct {
	client       *healthapi.Client
	store        *store.Store
	router       *mux.Router
	defaultRange string
	now          func() time.Time

	// baseCtx outlives individual HTTP requests: fetches triggered by a
	// request must not be cancelled when that request's context is.
	baseCtx context.Context

	workouts *fetcher.Fetcher[healthapi.WorkoutFilter, []healthapi.Workout]
	daily    *fetcher.Fetcher[healthapi.DateRange, []healthapi.DailyMetrics]
	nightly  *fetcher.Fetcher[healthapi.DateRange, []healthapi.NightlyMetrics]
	summary  *fetcher.Fetcher[healthapi.DateRange, healthapi.HealthSummary]
}

// New creates a server bound to the backend client and local store.
// defaultRange is the named range selector used when a request omits one.
func New(ctx context.Context, client *healthapi.Client, st *store.Store, defaultRange string) *Server {
	s := &Server{
		client:       client,
		store:        st,
		defaultRange: defaultRange,
		now:          time.Now,
		baseCtx:      ctx,
	}

	initial := analytics.ResolveRange(defaultRange, s.now())

	s.workouts = fetcher.New(CollectionWorkouts,
		healthapi.WorkoutFilter{StartDate: initial.StartDate, EndDate: initial.EndDate},
		authAware(s, client.ListWorkouts))
	s.daily = fetcher.New(CollectionDaily, initial, authAware(s, client.ListDailyMetrics))
	s.nightly = fetcher.New(CollectionNightly, initial, authAware(s, client.ListNightlyMetrics))
	s.summary = fetcher.New(CollectionSummary, initial,
		func(ctx context.Context, r healthapi.DateRange) (healthapi.HealthSummary, error) {
			summary, err := client.GetHealthSummary(ctx, r)
			s.handleAuthError(err)
			return summary, err
		})

	s.router = mux.NewRouter()
	s.routes()
	return s
}

// authAware wraps a list query so a 401 clears the stored token: the token
// store's explicit absent state, entered exactly once per invalid token.
func authAware[P comparable, T any](s *Server, query func(context.Context, P) ([]T, error)) fetcher.QueryFunc[P, []T] {
	return func(ctx context.Context, params P) ([]T, error) {
		results, err := query(ctx, params)
		s.handleAuthError(err)
		return results, err
	}
}

func (s *Server) handleAuthError(err error) {
	if err == nil || !errors.Is(err, healthapi.ErrUnauthorized) {
		return
	}
	log := logging.Logger
	log.Warn().Msg("backend rejected token, clearing stored token")
	if clearErr := s.store.ClearToken(s.baseCtx); clearErr != nil {
		log.Error().Err(clearErr).Msg("failed to clear stored token")
	}
}

// Start issues the initial fetch on every collection.
func (s *Server) Start() {
	s.workouts.Start(s.baseCtx)
	s.daily.Start(s.baseCtx)
	s.nightly.Start(s.baseCtx)
	s.summary.Start(s.baseCtx)
}

// Handler returns the HTTP handler for the dashboard API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ActiveRange reports the date range the fetchers are currently bound to.
func (s *Server) ActiveRange() healthapi.DateRange {
	return s.daily.Params()
}

// RefreshTargets returns one snapshot-refresh target per collection for the
// background refresher.
func (s *Server) RefreshTargets() []workers.Target {
	return []workers.Target{
		{Name: CollectionWorkouts, Refresh: refreshFetcher(s.workouts)},
		{Name: CollectionDaily, Refresh: refreshFetcher(s.daily)},
		{Name: CollectionNightly, Refresh: refreshFetcher(s.nightly)},
		{Name: CollectionSummary, Refresh: refreshFetcher(s.summary)},
	}
}

// refreshFetcher triggers a refetch, waits for it to settle and returns the
// fetcher's current data as JSON.
func refreshFetcher[P comparable, R any](f *fetcher.Fetcher[P, R]) func(context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		select {
		case <-f.Refetch(ctx):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		snap := f.Snapshot()
		if snap.Error != "" {
			return nil, fmt.Errorf("fetch failed: %s", snap.Error)
		}
		return json.Marshal(snap.Data)
	}
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)

	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/zones", s.handleZones).Methods(http.MethodGet)
	api.HandleFunc("/activity-types", s.handleActivityTypes).Methods(http.MethodGet)

	api.HandleFunc("/charts/workouts", s.handleWorkoutChart).Methods(http.MethodGet)
	api.HandleFunc("/charts/heartrate", s.handleHeartRateChart).Methods(http.MethodGet)
	api.HandleFunc("/charts/steps", s.handleStepsChart).Methods(http.MethodGet)
	api.HandleFunc("/charts/sleep", s.handleSleepChart).Methods(http.MethodGet)
}
