package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/grocerypos/backend/internal/domain/catalog"
	"github.com/grocerypos/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// recordingHandler remembers every event it receives
type recordingHandler struct {
	mu      sync.Mutex
	types   []string
	handled []shared.DomainEvent
	err     error
	panics  bool
}

func newRecordingHandler(types ...string) *recordingHandler {
	return &recordingHandler{types: types}
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panics {
		panic("boom")
	}
	h.handled = append(h.handled, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zaptest.NewLogger(t))
	deleted := newRecordingHandler(catalog.EventTypeProductDeleted)
	bus.Subscribe(deleted)

	event := catalog.NewProductDeletedEvent(7)
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Equal(t, 1, deleted.count())
	assert.Same(t, event, deleted.handled[0])
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	created := newRecordingHandler()
	deleted := newRecordingHandler()
	all := newRecordingHandler()

	bus.Subscribe(created, catalog.EventTypeProductCreated)
	bus.Subscribe(deleted, catalog.EventTypeProductDeleted)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		catalog.NewProductDeletedEvent(1),
		catalog.NewProductDeletedEvent(2),
	))

	assert.Equal(t, 0, created.count())
	assert.Equal(t, 2, deleted.count())
	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_HandlerFailuresDoNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zaptest.NewLogger(t))
	failing := newRecordingHandler(catalog.EventTypeProductDeleted)
	failing.err = errors.New("handler down")
	panicking := newRecordingHandler(catalog.EventTypeProductDeleted)
	panicking.panics = true
	healthy := newRecordingHandler(catalog.EventTypeProductDeleted)

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), catalog.NewProductDeletedEvent(3))
	require.Error(t, err)
	assert.ErrorContains(t, err, "handler down")
	assert.ErrorContains(t, err, "panicked")
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := newRecordingHandler(catalog.EventTypeProductDeleted)
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), catalog.NewProductDeletedEvent(1)))
	assert.Equal(t, 0, handler.count())
}

func TestInMemoryEventBus_StopRejectsPublish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, bus.Stop(ctx))
	assert.ErrorIs(t, bus.Publish(ctx, catalog.NewProductDeletedEvent(1)), ErrBusStopped)

	require.NoError(t, bus.Start(ctx))
	assert.NoError(t, bus.Publish(ctx, catalog.NewProductDeletedEvent(1)))
}
