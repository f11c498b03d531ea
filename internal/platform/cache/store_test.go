package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
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
			v, err := store.GetOrLoad(context.Background(), "entry:1:8", loader)
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
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	var calls atomic.Int32
	failing := func(context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.New("feed down")
	}

	if _, err := store.GetOrLoad(context.Background(), "k", failing); err == nil {
		t.Fatalf("expected loader error")
	}
	if _, err := store.GetOrLoad(context.Background(), "k", failing); err == nil {
		t.Fatalf("expected loader error")
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("loader called %d times, want 2", got)
	}
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	store := NewStore[int](time.Minute)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "entry:1:8", 64)
	if got, ok := store.Get(context.Background(), "entry:1:8"); !ok || got != 64 {
		t.Fatalf("unexpected cached value: got=%d ok=%v", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(context.Background(), "entry:1:8"); ok {
		t.Fatalf("expected entry to expire")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted, len=%d", store.Len())
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore[int](0)
	ctx := context.Background()
	store.Set(ctx, "entry:1:8", 1)
	store.Set(ctx, "entry:2:8", 2)
	store.Set(ctx, "league:8", 3)

	store.DeletePrefix(ctx, "entry:")
	if store.Len() != 1 {
		t.Fatalf("unexpected len after prefix delete: %d", store.Len())
	}
	if _, ok := store.Get(ctx, "league:8"); !ok {
		t.Fatalf("expected unrelated key to survive")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
