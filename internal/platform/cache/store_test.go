package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "matches:2026-10-15", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiresWithClock(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	store := NewStoreWithClock(time.Hour, func() time.Time { return now })
	store.Set(context.Background(), "k", 1)

	if _, ok := store.Get(context.Background(), "k"); !ok {
		t.Fatalf("expected fresh entry")
	}
	now = now.Add(2 * time.Hour)
	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestStore_LoaderErrorIsNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	var calls atomic.Int32
	boom := errors.New("boom")

	loader := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return "ok", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	v, err := store.GetOrLoad(context.Background(), "k", loader)
	if err != nil || v != "ok" {
		t.Fatalf("expected retry to load ok, got %v %v", v, err)
	}

	store.Delete(context.Background(), "k")
	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatalf("expected delete to drop entry")
	}
}

func TestStore_DeleteFuncCountsLiveEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	store := NewStoreWithClock(time.Hour, func() time.Time { return now })
	ctx := context.Background()
	store.Set(ctx, "matches_2026-10-14", 1)
	now = now.Add(2 * time.Hour)
	store.Set(ctx, "matches_2026-10-15", 2)
	store.Set(ctx, "rankings_2026-10-15", 3)
	store.Set(ctx, "rankings_2026-10-16", 4)

	removed := store.DeleteFunc(ctx, func(key string) bool { return strings.HasSuffix(key, "_2026-10-15") })
	if removed != 2 {
		t.Fatalf("expected 2 live entries removed, got %d", removed)
	}
	if _, ok := store.Get(ctx, "rankings_2026-10-16"); !ok {
		t.Fatalf("expected other day to survive")
	}
}

func TestStore_GetOrLoad_CallerCancelDoesNotFailSharedLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	release := make(chan struct{})
	loader := func(ctx context.Context) (any, error) {
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return "sweep", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := store.GetOrLoad(ctx, "matches_2026-10-15", loader)
		done <- err
	}()

	waiter := make(chan any, 1)
	go func() {
		v, _ := store.GetOrLoad(context.Background(), "matches_2026-10-15", loader)
		waiter <- v
	}()

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled caller to return context.Canceled, got %v", err)
	}
	close(release)
	if v := <-waiter; v != "sweep" {
		t.Fatalf("expected remaining caller to get the shared value, got %v", v)
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
