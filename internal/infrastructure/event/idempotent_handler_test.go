package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/grocerypos/backend/internal/domain/catalog"
	"github.com/grocerypos/backend/internal/domain/shared"
	"github.com/grocerypos/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Forget(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockIdempotencyStore) SaveResult(ctx context.Context, key string, result []byte, ttl time.Duration) error {
	return m.Called(ctx, key, result, ttl).Error(0)
}

func (m *MockIdempotencyStore) Result(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func newMemoryStore(t *testing.T) shared.IdempotencyStore {
	store := cache.NewInMemoryIdempotencyStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	inner := newRecordingHandler(catalog.EventTypeProductDeleted)
	h := NewIdempotentHandler(inner, newMemoryStore(t), zap.NewNop())
	ctx := context.Background()

	event := catalog.NewProductDeletedEvent(9)
	require.NoError(t, h.Handle(ctx, event))
	require.NoError(t, h.Handle(ctx, event))
	require.NoError(t, h.Handle(ctx, catalog.NewProductDeletedEvent(9)))

	assert.Equal(t, 2, inner.count())
	assert.Equal(t, IdempotencyStats{Processed: 2, Duplicates: 1}, h.Stats())
	assert.Equal(t, []string{catalog.EventTypeProductDeleted}, h.EventTypes())
}

func TestIdempotentHandler_FailureReleasesKey(t *testing.T) {
	inner := newRecordingHandler()
	inner.err = errors.New("transient")
	h := NewIdempotentHandler(inner, newMemoryStore(t), zap.NewNop())
	ctx := context.Background()
	event := catalog.NewProductDeletedEvent(1)

	assert.Error(t, h.Handle(ctx, event))

	inner.err = nil
	require.NoError(t, h.Handle(ctx, event))
	assert.Equal(t, 2, inner.count())
	assert.Equal(t, IdempotencyStats{Processed: 1, Failed: 1}, h.Stats())
}

func TestIdempotentHandler_StoreErrorStillProcesses(t *testing.T) {
	store := new(MockIdempotencyStore)
	event := catalog.NewProductDeletedEvent(1)
	key := "audit:" + event.EventID().String()
	store.On("MarkProcessed", mock.Anything, key, time.Hour).Return(false, errors.New("redis down"))

	inner := newRecordingHandler()
	h := NewIdempotentHandler(inner, store, zap.NewNop(),
		WithKeyPrefix("audit:"),
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: true, TTL: time.Hour}),
	)

	require.NoError(t, h.Handle(context.Background(), event))
	assert.Equal(t, 1, inner.count())
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Forget", mock.Anything, mock.Anything)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := newRecordingHandler()
	h := NewIdempotentHandler(inner, store, zap.NewNop(),
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}),
	)
	event := catalog.NewProductDeletedEvent(1)

	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))
	assert.Equal(t, 2, inner.count())
	store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}
