package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_CollapsesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (string, error) {
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
			v, err := store.GetOrLoad(context.Background(), "run:fetch=false", loader)
			if err != nil {
				errCh <- err
				return
			}
			if v != "value" {
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

func TestStore_DeleteInvalidatesMemo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore[int](0)
	var calls atomic.Int32
	loader := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	first, _ := store.GetOrLoad(ctx, "run:fetch=true", loader)
	again, _ := store.GetOrLoad(ctx, "run:fetch=true", loader)
	if first != 1 || again != 1 {
		t.Fatalf("expected memoized value 1, got %d and %d", first, again)
	}

	store.Delete(ctx, "run:fetch=true")
	refreshed, _ := store.GetOrLoad(ctx, "run:fetch=true", loader)
	if refreshed != 2 {
		t.Fatalf("expected reload after delete, got %d", refreshed)
	}

	store.Set(ctx, "run:fetch=false", 7)
	store.DeletePrefix(ctx, "run:")
	if _, ok := store.Get(ctx, "run:fetch=false"); ok {
		t.Fatalf("expected prefix delete to drop every run entry")
	}
}

func TestStore_ExpiredEntryReloads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore[string](time.Minute)
	store.now = func() time.Time { return now }

	store.Set(ctx, "k", "old")
	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestStore_FailedLoadIsNotMemoized(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore[string](time.Minute)
	boom := errors.New("boom")

	if _, err := store.GetOrLoad(ctx, "k", func(context.Context) (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	got, err := store.GetOrLoad(ctx, "k", func(context.Context) (string, error) { return "ok", nil })
	if err != nil || got != "ok" {
		t.Fatalf("expected retry to load, got %q err=%v", got, err)
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
