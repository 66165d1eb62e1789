package telemetry_test

import (
	"context"
	"testing"

	"github.com/grocerypos/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:     false,
		ServiceName: "grocery-pos-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewTracerProviderWithProcessor(t *testing.T) {
	ctx := context.Background()
	recorder := tracetest.NewSpanRecorder()

	tp, err := telemetry.NewTracerProviderWithProcessor(telemetry.Config{
		ServiceName:   "grocery-pos-test",
		SamplingRatio: 1.0,
	}, recorder, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	assert.True(t, tp.IsEnabled())

	_, span := tp.Tracer("test").Start(ctx, "checkout")
	span.End()
	require.NoError(t, tp.ForceFlush(ctx))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "checkout", spans[0].Name())
}

func TestNewTracerProviderWithProcessor_ZeroRatioDropsSpans(t *testing.T) {
	ctx := context.Background()
	recorder := tracetest.NewSpanRecorder()

	tp, err := telemetry.NewTracerProviderWithProcessor(telemetry.Config{
		ServiceName:   "grocery-pos-test",
		SamplingRatio: 0,
	}, recorder, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	_, span := tp.Tracer("test").Start(ctx, "dropped")
	span.End()

	assert.Empty(t, recorder.Ended())
}
