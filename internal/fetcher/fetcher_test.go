package fetcher

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestFetcherInitialFetch(t *testing.T) {
	f := New("test", "params-a", func(ctx context.Context, p string) ([]string, error) {
		return []string{"result-for-" + p}, nil
	})

	snap := f.Snapshot()
	if snap.Loading || snap.Error != "" || snap.Data != nil {
		t.Errorf("expected zero state before Start, got %+v", snap)
	}

	<-f.Start(context.Background())

	snap = f.Snapshot()
	if snap.Loading {
		t.Error("expected loading=false after settle")
	}
	if snap.Error != "" {
		t.Errorf("unexpected error: %s", snap.Error)
	}
	if len(snap.Data) != 1 || snap.Data[0] != "result-for-params-a" {
		t.Errorf("unexpected data: %v", snap.Data)
	}
}

func TestFetcherStaleDataWhileLoading(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0

	f := New("test", 1, func(ctx context.Context, p int) ([]string, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n > 1 {
			<-release
		}
		return []string{fmt.Sprintf("call-%d", n)}, nil
	})

	ctx := context.Background()
	<-f.Start(ctx)

	done := f.SetParams(ctx, 2)

	// While the second request is in flight, the first result stays visible.
	snap := f.Snapshot()
	if !snap.Loading {
		t.Error("expected loading=true during refetch")
	}
	if len(snap.Data) != 1 || snap.Data[0] != "call-1" {
		t.Errorf("expected stale data during refetch, got %v", snap.Data)
	}

	close(release)
	<-done

	snap = f.Snapshot()
	if snap.Loading {
		t.Error("expected loading=false after settle")
	}
	if len(snap.Data) != 1 || snap.Data[0] != "call-2" {
		t.Errorf("expected new data after settle, got %v", snap.Data)
	}
}

func TestFetcherFailureDegradesToEmpty(t *testing.T) {
	shouldFail := false
	var mu sync.Mutex

	f := New("test", "p", func(ctx context.Context, p string) ([]int, error) {
		mu.Lock()
		fail := shouldFail
		mu.Unlock()
		if fail {
			return nil, fmt.Errorf("backend unreachable")
		}
		return []int{1, 2, 3}, nil
	})

	ctx := context.Background()
	<-f.Start(ctx)

	if snap := f.Snapshot(); len(snap.Data) != 3 {
		t.Fatalf("expected 3 items, got %v", snap.Data)
	}

	mu.Lock()
	shouldFail = true
	mu.Unlock()

	<-f.Refetch(ctx)

	// A failure resets the data, it does not keep the previous result.
	snap := f.Snapshot()
	if snap.Loading {
		t.Error("expected loading=false after failed settle")
	}
	if snap.Data != nil {
		t.Errorf("expected data reset to empty after failure, got %v", snap.Data)
	}
	if snap.Error != "backend unreachable" {
		t.Errorf("expected error message, got %q", snap.Error)
	}
}

func TestFetcherRecoversAfterFailure(t *testing.T) {
	shouldFail := true
	var mu sync.Mutex

	f := New("test", "p", func(ctx context.Context, p string) ([]int, error) {
		mu.Lock()
		fail := shouldFail
		mu.Unlock()
		if fail {
			return nil, fmt.Errorf("boom")
		}
		return []int{42}, nil
	})

	ctx := context.Background()
	<-f.Start(ctx)

	if snap := f.Snapshot(); snap.Error == "" {
		t.Fatal("expected error after failed fetch")
	}

	mu.Lock()
	shouldFail = false
	mu.Unlock()

	<-f.Refetch(ctx)

	snap := f.Snapshot()
	if snap.Error != "" {
		t.Errorf("expected error cleared after successful refetch, got %q", snap.Error)
	}
	if len(snap.Data) != 1 || snap.Data[0] != 42 {
		t.Errorf("unexpected data: %v", snap.Data)
	}
}

func TestFetcherLatestRequestWins(t *testing.T) {
	releaseFirst := make(chan struct{})

	f := New("test", 1, func(ctx context.Context, p int) (string, error) {
		if p == 1 {
			<-releaseFirst
			return "first", nil
		}
		return "second", nil
	})

	ctx := context.Background()
	first := f.Start(ctx)

	// The second request supersedes the first and completes immediately.
	<-f.SetParams(ctx, 2)

	if snap := f.Snapshot(); snap.Data != "second" {
		t.Fatalf("expected second result committed, got %q", snap.Data)
	}

	// Now let the first request finish; its response must be discarded.
	close(releaseFirst)
	<-first

	snap := f.Snapshot()
	if snap.Data != "second" {
		t.Errorf("superseded response overwrote the latest result: got %q", snap.Data)
	}
	if snap.Loading {
		t.Error("expected loading=false")
	}
	if snap.Error != "" {
		t.Errorf("unexpected error: %s", snap.Error)
	}
}

func TestFetcherSetParamsNoOp(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	f := New("test", "same", func(ctx context.Context, p string) (int, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return 7, nil
	})

	ctx := context.Background()
	<-f.Start(ctx)

	// Rebinding to equal params issues no request; the channel is already closed.
	done := f.SetParams(ctx, "same")
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("no-op SetParams channel not closed")
	}

	mu.Lock()
	got := calls
	mu.Unlock()
	if got != 1 {
		t.Errorf("expected 1 query call, got %d", got)
	}

	if snap := f.Snapshot(); snap.Loading {
		t.Error("no-op SetParams must not set loading")
	}
}

func TestFetcherParams(t *testing.T) {
	f := New("test", "initial", func(ctx context.Context, p string) (int, error) {
		return 0, nil
	})

	if got := f.Params(); got != "initial" {
		t.Errorf("expected initial params, got %q", got)
	}

	<-f.SetParams(context.Background(), "changed")
	if got := f.Params(); got != "changed" {
		t.Errorf("expected changed params, got %q", got)
	}
}

func TestFetcherUpdatesSignal(t *testing.T) {
	f := New("test", "p", func(ctx context.Context, p string) (int, error) {
		return 1, nil
	})

	<-f.Start(context.Background())

	// At least one coalesced signal must be observable after a settle.
	select {
	case <-f.Updates():
	case <-time.After(time.Second):
		t.Fatal("expected an update signal after fetch settled")
	}
}
