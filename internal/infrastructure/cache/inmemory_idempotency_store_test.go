package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore returns a store whose clock the test controls
func newTestStore(t *testing.T) (*InMemoryIdempotencyStore, *time.Time) {
	t.Helper()
	store := NewInMemoryIdempotencyStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	return store, &now
}

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store, now := newTestStore(t)
	ctx := context.Background()

	first, err := store.MarkProcessed(ctx, "key-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := store.MarkProcessed(ctx, "key-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	processed, err := store.IsProcessed(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, processed)

	*now = now.Add(2 * time.Minute)

	processed, err = store.IsProcessed(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, processed)

	afterExpiry, err := store.MarkProcessed(ctx, "key-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, afterExpiry)
}

func TestInMemoryIdempotencyStore_Results(t *testing.T) {
	store, now := newTestStore(t)
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "key-1", time.Minute)
	require.NoError(t, err)

	_, ok, err := store.Result(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, ok, "reserved but unfinished key has no result")

	payload := []byte(`{"id":7}`)
	require.NoError(t, store.SaveResult(ctx, "key-1", payload, time.Minute))
	payload[0] = 'X'

	result, ok, err := store.Result(ctx, "key-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"id":7}`, string(result))

	*now = now.Add(time.Hour)
	_, ok, err = store.Result(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInMemoryIdempotencyStore_Forget(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "key-1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Forget(ctx, "key-1"))

	fresh, err := store.MarkProcessed(ctx, "key-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)

	assert.NoError(t, store.Forget(ctx, "never-seen"))
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	store, now := newTestStore(t)
	ctx := context.Background()

	_, _ = store.MarkProcessed(ctx, "short", time.Second)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	assert.Equal(t, 2, store.Size())

	*now = now.Add(time.Minute)
	store.sweep()
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_ConcurrentReservations(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.MarkProcessed(ctx, "same-key", time.Minute)
			if err == nil && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore(10 * time.Millisecond)
	for i := 0; i < 3; i++ {
		_, _ = store.MarkProcessed(context.Background(), fmt.Sprintf("k%d", i), time.Millisecond)
	}
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
