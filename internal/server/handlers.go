package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rmcgee/healthdash/internal/analytics"
	"github.com/rmcgee/healthdash/internal/fetcher"
	"github.com/rmcgee/healthdash/internal/healthapi"
	"github.com/rmcgee/healthdash/internal/logging"
)

// defaultMaxHR is the fallback maximum heart rate when the caller supplies
// none and the backend has no observed maximum.
const defaultMaxHR = 190

// DashboardResponse is the combined view state: one {data, loading, error}
// block per collection plus the chart projections derived from them.
type DashboardResponse struct {
	Range          healthapi.DateRange                          `json:"range"`
	Workouts       fetcher.Snapshot[[]healthapi.Workout]        `json:"workouts"`
	DailyMetrics   fetcher.Snapshot[[]healthapi.DailyMetrics]   `json:"daily_metrics"`
	NightlyMetrics fetcher.Snapshot[[]healthapi.NightlyMetrics] `json:"nightly_metrics"`
	Summary        fetcher.Snapshot[healthapi.HealthSummary]    `json:"summary"`
	Charts         DashboardCharts                              `json:"charts"`
}

type DashboardCharts struct {
	Workouts   []analytics.WorkoutChartRow `json:"workouts"`
	RestingHR  []analytics.ChartPoint      `json:"resting_hr"`
	Steps      []analytics.ChartPoint      `json:"steps"`
	SleepHours []analytics.ChartPoint      `json:"sleep_hours"`
}

type chartResponse struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

// rebind resolves the requested named range and rebinds every fetcher to it.
// Unchanged parameters are a no-op; changed ones trigger a refetch whose
// result lands asynchronously, so the response that follows may still carry
// the previous data with loading=true.
func (s *Server) rebind(r *http.Request) healthapi.DateRange {
	selector := r.URL.Query().Get("range")
	if selector == "" {
		selector = s.defaultRange
	}
	resolved := analytics.ResolveRange(selector, s.now())

	s.workouts.SetParams(s.baseCtx, healthapi.WorkoutFilter{
		ActivityType: r.URL.Query().Get("activity_type"),
		StartDate:    resolved.StartDate,
		EndDate:      resolved.EndDate,
	})
	s.daily.SetParams(s.baseCtx, resolved)
	s.nightly.SetParams(s.baseCtx, resolved)
	s.summary.SetParams(s.baseCtx, resolved)

	return resolved
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	resolved := s.rebind(r)

	workouts := s.workouts.Snapshot()
	daily := s.daily.Snapshot()
	nightly := s.nightly.Snapshot()

	writeJSON(w, DashboardResponse{
		Range:          resolved,
		Workouts:       workouts,
		DailyMetrics:   daily,
		NightlyMetrics: nightly,
		Summary:        s.summary.Snapshot(),
		Charts: DashboardCharts{
			Workouts:   analytics.WorkoutChartRows(workouts.Data),
			RestingHR:  analytics.RestingHRTrendPoints(daily.Data),
			Steps:      analytics.StepTrendPoints(daily.Data),
			SleepHours: analytics.SleepTrendPoints(nightly.Data, true),
		},
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.rebind(r)
	writeJSON(w, s.summary.Snapshot())
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	maxHR := float64(defaultMaxHR)
	if raw := r.URL.Query().Get("max_hr"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "invalid max_hr parameter", http.StatusBadRequest)
			return
		}
		maxHR = parsed
	}

	writeJSON(w, map[string]any{
		"max_hr": maxHR,
		"zones":  analytics.CalculateHeartRateZones(maxHR),
	})
}

func (s *Server) handleWorkoutChart(w http.ResponseWriter, r *http.Request) {
	s.rebind(r)
	snap := s.workouts.Snapshot()
	writeJSON(w, chartResponse{Data: analytics.WorkoutChartRows(snap.Data), Error: snap.Error})
}

func (s *Server) handleHeartRateChart(w http.ResponseWriter, r *http.Request) {
	s.rebind(r)
	snap := s.daily.Snapshot()
	writeJSON(w, chartResponse{Data: analytics.RestingHRTrendPoints(snap.Data), Error: snap.Error})
}

func (s *Server) handleStepsChart(w http.ResponseWriter, r *http.Request) {
	s.rebind(r)
	snap := s.daily.Snapshot()
	writeJSON(w, chartResponse{Data: analytics.StepTrendPoints(snap.Data), Error: snap.Error})
}

func (s *Server) handleSleepChart(w http.ResponseWriter, r *http.Request) {
	s.rebind(r)
	inHours := r.URL.Query().Get("unit") != "minutes"
	snap := s.nightly.Snapshot()
	writeJSON(w, chartResponse{Data: analytics.SleepTrendPoints(snap.Data, inHours), Error: snap.Error})
}

func (s *Server) handleActivityTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.client.ListActivityTypes(r.Context())
	if err != nil {
		s.handleAuthError(err)
		logging.Logger.Warn().Err(err).Msg("failed to list activity types")
		writeJSON(w, chartResponse{Data: []string{}, Error: err.Error()})
		return
	}
	writeJSON(w, chartResponse{Data: types})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	log := logging.Logger
	token, err := s.client.Login(r.Context(), credentials.Username, credentials.Password)
	if err != nil {
		if errors.Is(err, healthapi.ErrUnauthorized) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		log.Error().Err(err).Msg("login failed")
		http.Error(w, "login failed", http.StatusBadGateway)
		return
	}

	if err := s.store.SaveToken(r.Context(), token.Token); err != nil {
		log.Error().Err(err).Msg("failed to persist token")
	}

	log.Info().Str("username", credentials.Username).Msg("login successful")
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleRefresh is the manual re-trigger: every fetcher re-issues its
// request with unchanged parameters.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.workouts.Refetch(s.baseCtx)
	s.daily.Refetch(s.baseCtx)
	s.nightly.Refetch(s.baseCtx)
	s.summary.Refetch(s.baseCtx)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "refreshing"}); err != nil {
		logging.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logger.Error().Err(err).Msg("failed to encode response")
	}
}
