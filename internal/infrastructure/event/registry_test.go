package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register(t *testing.T) {
	registry := NewHandlerRegistry()
	typed := newRecordingHandler()
	wildcard := newRecordingHandler()

	registry.Register(typed, "ProductCreated", "ProductUpdated")
	registry.Register(typed, "ProductCreated")
	registry.Register(wildcard)

	assert.Equal(t, 2, registry.Len())

	handlers := registry.GetHandlers("ProductCreated")
	assert.Len(t, handlers, 2)
	assert.Same(t, typed, handlers[0])
	assert.Same(t, wildcard, handlers[1])

	assert.Len(t, registry.GetHandlers("ProductDeleted"), 1)
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	a := newRecordingHandler()
	b := newRecordingHandler()

	registry.Register(a, "ProductDeleted")
	registry.Register(b, "ProductDeleted")
	registry.Register(a)

	registry.Unregister(a)

	handlers := registry.GetHandlers("ProductDeleted")
	assert.Len(t, handlers, 1)
	assert.Same(t, b, handlers[0])
	assert.Equal(t, 1, registry.Len())

	registry.Unregister(b)
	assert.Empty(t, registry.GetHandlers("ProductDeleted"))
	assert.Equal(t, 0, registry.Len())
}
