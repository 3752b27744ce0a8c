package healthapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rmcgee/healthdash/internal/logging"
)

const requestTimeout = 30 * time.Second

// Default retry settings for transient transport failures
const (
	defaultMaxRetries     = 3
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 10 * time.Second
)

// ErrUnauthorized indicates the backend rejected the bearer token (401).
// Callers clear the stored token when they see this.
var ErrUnauthorized = fmt.Errorf("unauthorized")

// ErrNotFound indicates the requested resource does not exist (404).
var ErrNotFound = fmt.Errorf("not found")

// listEnvelope is the {results: [...]} wrapper all list endpoints return.
type listEnvelope[T any] struct {
	Results []T `json:"results"`
}

// Client is a health-tracker backend API client with automatic retry on
// transient transport failures. Requests are never retried on 4xx responses.
type Client struct {
	httpClient *retryablehttp.Client
	baseURL    string

	tokenMu sync.RWMutex
	token   string
}

// RetryConfig holds retry/backoff settings
type RetryConfig struct {
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: defaultMaxRetries,
		MinWait:    defaultInitialBackoff,
		MaxWait:    defaultMaxBackoff,
	}
}

// NewClient creates a new backend API client
func NewClient(baseURL, token string) *Client {
	return newClientWithConfig(baseURL, token, DefaultRetryConfig())
}

// NewClientWithRetryConfig creates a new backend API client with custom retry settings
func NewClientWithRetryConfig(baseURL, token string, cfg RetryConfig) *Client {
	return newClientWithConfig(baseURL, token, cfg)
}

func newClientWithConfig(baseURL, token string, cfg RetryConfig) *Client {
	log := logging.Logger
	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = requestTimeout
	client.RetryMax = cfg.MaxRetries
	client.RetryWaitMin = cfg.MinWait
	client.RetryWaitMax = cfg.MaxWait
	client.Logger = &logging.LeveledLogger{}

	// Retry on connection errors and 5xx only. 4xx responses (including 401
	// and 429) are terminal for this backend.
	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		if resp.StatusCode >= 500 {
			return true, nil
		}
		return false, nil
	}

	client.RequestLogHook = func(logger retryablehttp.Logger, req *http.Request, retry int) {
		if retry > 0 {
			log.Info().
				Str("url", req.URL.Path).
				Int("attempt", retry+1).
				Msg("retrying request")
		}
		if logging.IsTraceEnabled() {
			log.Debug().
				Str("method", req.Method).
				Str("url", req.URL.String()).
				Str("headers", formatHeaders(req.Header)).
				Msg("request headers")
		}
	}

	client.ResponseLogHook = func(logger retryablehttp.Logger, resp *http.Response) {
		if logging.IsTraceEnabled() {
			log.Debug().
				Int("status", resp.StatusCode).
				Str("url", resp.Request.URL.Path).
				Str("headers", formatHeaders(resp.Header)).
				Msg("response headers")
		}
	}

	return &Client{
		httpClient: client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// WithRetryConfig sets custom retry configuration (useful for testing)
func (c *Client) WithRetryConfig(maxRetries int, initialBackoff, maxBackoff time.Duration) *Client {
	c.httpClient.RetryMax = maxRetries
	c.httpClient.RetryWaitMin = initialBackoff
	c.httpClient.RetryWaitMax = maxBackoff
	return c
}

// SetToken replaces the bearer token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.tokenMu.Lock()
	c.token = token
	c.tokenMu.Unlock()
}

func (c *Client) bearer() string {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.token
}

// Login exchanges credentials for a bearer token and installs it on the
// client. The token is also returned so callers can persist it.
func (c *Client) Login(ctx context.Context, username, password string) (Token, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return Token{}, fmt.Errorf("encoding credentials: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login/", bytes.NewReader(body))
	if err != nil {
		return Token{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		return Token{}, fmt.Errorf("login rejected: %w", ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		return Token{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var token Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return Token{}, fmt.Errorf("decoding response: %w", err)
	}

	c.SetToken(token.Token)
	return token, nil
}

// ListWorkouts returns workouts matching the filter, date-ascending.
// Omitted filter fields are unconstrained.
func (c *Client) ListWorkouts(ctx context.Context, filter WorkoutFilter) ([]Workout, error) {
	params := url.Values{}
	if filter.ActivityType != "" {
		params.Set("activity_type", filter.ActivityType)
	}
	if filter.StartDate != "" {
		params.Set("start_date", filter.StartDate)
	}
	if filter.EndDate != "" {
		params.Set("end_date", filter.EndDate)
	}
	if filter.MinDuration > 0 {
		params.Set("min_duration", strconv.FormatFloat(filter.MinDuration, 'f', -1, 64))
	}
	if filter.MaxDuration > 0 {
		params.Set("max_duration", strconv.FormatFloat(filter.MaxDuration, 'f', -1, 64))
	}
	return listResource[Workout](ctx, c, "/api/workouts/", params)
}

// ListDailyMetrics returns daily metrics within the date range, date-ascending.
func (c *Client) ListDailyMetrics(ctx context.Context, dateRange DateRange) ([]DailyMetrics, error) {
	return listResource[DailyMetrics](ctx, c, "/api/metrics/daily/", rangeParams(dateRange))
}

// ListNightlyMetrics returns nightly metrics within the date range, date-ascending.
func (c *Client) ListNightlyMetrics(ctx context.Context, dateRange DateRange) ([]NightlyMetrics, error) {
	return listResource[NightlyMetrics](ctx, c, "/api/metrics/nightly/", rangeParams(dateRange))
}

// ListActivityTypes returns the distinct workout activity types present in
// the user's data.
func (c *Client) ListActivityTypes(ctx context.Context) ([]string, error) {
	return listResource[string](ctx, c, "/api/workouts/activity_types/", nil)
}

// GetDailyTrend returns a single daily metric's trend over the trailing
// window, one point per day the metric was recorded.
func (c *Client) GetDailyTrend(ctx context.Context, metric string, days int) ([]TrendPoint, error) {
	params := url.Values{}
	params.Set("metric", metric)
	params.Set("days", strconv.Itoa(days))
	return listResource[TrendPoint](ctx, c, "/api/metrics/daily/trends/", params)
}

// GetHealthSummary returns the backend-computed summary for the date range.
func (c *Client) GetHealthSummary(ctx context.Context, dateRange DateRange) (HealthSummary, error) {
	var summary HealthSummary
	body, err := c.get(ctx, "/api/summary/", rangeParams(dateRange))
	if err != nil {
		return HealthSummary{}, err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(&summary); err != nil {
		return HealthSummary{}, fmt.Errorf("decoding response: %w", err)
	}
	return summary, nil
}

func listResource[T any](ctx context.Context, c *Client, path string, params url.Values) ([]T, error) {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var envelope listEnvelope[T]
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return envelope.Results, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (io.ReadCloser, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		resp.Body.Close()
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

func rangeParams(dateRange DateRange) url.Values {
	params := url.Values{}
	if dateRange.StartDate != "" {
		params.Set("start_date", dateRange.StartDate)
	}
	if dateRange.EndDate != "" {
		params.Set("end_date", dateRange.EndDate)
	}
	return params
}

// formatHeaders formats HTTP headers for trace logging, redacting sensitive values
func formatHeaders(headers http.Header) string {
	if len(headers) == 0 {
		return "{}"
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		value := strings.Join(headers[k], ", ")
		lowerKey := strings.ToLower(k)
		if lowerKey == "authorization" || lowerKey == "cookie" || lowerKey == "set-cookie" {
			value = "[REDACTED]"
		}
		sb.WriteString(fmt.Sprintf("%s: %q", k, value))
	}
	sb.WriteString("}")
	return sb.String()
}
