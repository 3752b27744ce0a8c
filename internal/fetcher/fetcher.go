// Package fetcher owns the request/response lifecycle for one logical query
// against the backend: its current data, loading flag and error state. Each
// fetcher instance is independent; a view typically holds several and
// re-renders incrementally as each one resolves.
package fetcher

import (
	"context"
	"sync"

	"github.com/rmcgee/healthdash/internal/logging"
)

// QueryFunc executes the fetcher's bound query for the given parameters.
type QueryFunc[P comparable, R any] func(ctx context.Context, params P) (R, error)

// Snapshot is the view-facing state of a fetcher at one instant.
// While a refetch is in flight, Data holds the previous result and Loading
// is true: stale data stays visible instead of flashing to empty. After a
// failure, Data is reset to the zero value and Error is set - a deliberate
// degrade-to-empty policy that differs from the in-flight behavior.
type Snapshot[R any] struct {
	Data    R      `json:"data"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// Fetcher binds one query function to a parameters value and owns the
// resulting state. Changing the parameters or calling Refetch issues exactly
// one new request; there are no automatic retries at this layer and no
// de-duplication of rapid triggers. A request generation counter makes the
// latest request win: a response from a superseded request settles without
// committing any state.
type Fetcher[P comparable, R any] struct {
	name  string
	query QueryFunc[P, R]

	mu      sync.Mutex
	params  P
	data    R
	loading bool
	errMsg  string
	gen     uint64

	updates chan struct{}
}

// New creates a fetcher bound to query with initial parameters. No request
// is issued until Start, SetParams or Refetch is called.
func New[P comparable, R any](name string, params P, query QueryFunc[P, R]) *Fetcher[P, R] {
	return &Fetcher[P, R]{
		name:    name,
		query:   query,
		params:  params,
		updates: make(chan struct{}, 1),
	}
}

// Start issues the initial request. The returned channel closes when that
// request settles (even if a later request superseded it).
func (f *Fetcher[P, R]) Start(ctx context.Context) <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchLocked(ctx)
}

// SetParams rebinds the fetcher to new parameters. If they differ from the
// current ones, a refetch is issued; otherwise this is a no-op and the
// returned channel is already closed.
func (f *Fetcher[P, R]) SetParams(ctx context.Context, params P) <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()

	if params == f.params {
		done := make(chan struct{})
		close(done)
		return done
	}

	f.params = params
	return f.fetchLocked(ctx)
}

// Refetch manually re-issues the request with the current parameters.
func (f *Fetcher[P, R]) Refetch(ctx context.Context) <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchLocked(ctx)
}

// Params returns the currently bound parameters.
func (f *Fetcher[P, R]) Params() P {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params
}

// Snapshot returns the current state.
func (f *Fetcher[P, R]) Snapshot() Snapshot[R] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot[R]{
		Data:    f.data,
		Loading: f.loading,
		Error:   f.errMsg,
	}
}

// Updates returns a channel that receives a (coalesced) signal whenever the
// fetcher's state changes. Consumers drain it to re-render incrementally.
func (f *Fetcher[P, R]) Updates() <-chan struct{} {
	return f.updates
}

// fetchLocked issues one request for the current parameters. Callers hold f.mu.
func (f *Fetcher[P, R]) fetchLocked(ctx context.Context) <-chan struct{} {
	f.gen++
	gen := f.gen
	params := f.params
	f.loading = true

	done := make(chan struct{})
	go f.run(ctx, gen, params, done)

	f.notify()
	return done
}

func (f *Fetcher[P, R]) run(ctx context.Context, gen uint64, params P, done chan<- struct{}) {
	defer close(done)
	log := logging.Logger

	result, err := f.query(ctx, params)

	f.mu.Lock()
	if gen != f.gen {
		// A later request superseded this one; discard the response so the
		// latest request wins regardless of completion order.
		f.mu.Unlock()
		log.Debug().
			Str("fetcher", f.name).
			Uint64("generation", gen).
			Uint64("current", f.gen).
			Msg("discarding response from superseded request")
		return
	}

	f.loading = false
	if err != nil {
		var zero R
		f.data = zero
		f.errMsg = err.Error()
		f.mu.Unlock()
		log.Warn().
			Str("fetcher", f.name).
			Err(err).
			Msg("fetch failed, degrading to empty collection")
		f.notify()
		return
	}

	f.data = result
	f.errMsg = ""
	f.mu.Unlock()
	log.Debug().
		Str("fetcher", f.name).
		Uint64("generation", gen).
		Msg("fetch completed")
	f.notify()
}

func (f *Fetcher[P, R]) notify() {
	select {
	case f.updates <- struct{}{}:
	default:
	}
}
