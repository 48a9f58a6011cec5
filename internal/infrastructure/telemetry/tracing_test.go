package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

// setupTestTracer installs an in-memory span recorder as the global provider
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
	})
	return recorder
}

func TestStartSpan(t *testing.T) {
	t.Run("creates named span with attributes", func(t *testing.T) {
		recorder := setupTestTracer(t)

		_, span := StartSpan(context.Background(), "price_list.generate",
			WithAttribute("customer_id", "c-1"),
			WithAttribute("items_count", 12),
		)
		span.End()

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "price_list.generate", spans[0].Name())

		attrs := spans[0].Attributes()
		keys := make(map[string]bool, len(attrs))
		for _, attr := range attrs {
			keys[string(attr.Key)] = true
		}
		assert.True(t, keys["customer_id"])
		assert.True(t, keys["items_count"])
	})
}

func TestStartServiceSpan(t *testing.T) {
	t.Run("uses service.method naming", func(t *testing.T) {
		recorder := setupTestTracer(t)

		_, span := StartServiceSpan(context.Background(), "pricing_rule", "create")
		span.End()

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "pricing_rule.create", spans[0].Name())
	})
}

func TestRecordError(t *testing.T) {
	t.Run("sets error status", func(t *testing.T) {
		recorder := setupTestTracer(t)

		_, span := StartSpan(context.Background(), "market_price.record")
		RecordError(span, errors.New("invalid market price"))
		span.End()

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, "invalid market price", spans[0].Status().Description)
	})

	t.Run("ignores nil error", func(t *testing.T) {
		recorder := setupTestTracer(t)

		_, span := StartSpan(context.Background(), "noop")
		RecordError(span, nil)
		span.End()

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	})
}

func TestGetTraceID(t *testing.T) {
	t.Run("returns trace ID inside span", func(t *testing.T) {
		setupTestTracer(t)

		ctx, span := StartSpan(context.Background(), "traced")
		defer span.End()

		assert.NotEmpty(t, GetTraceID(ctx))
		assert.NotEmpty(t, GetSpanID(ctx))
	})

	t.Run("returns empty string without span", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
		assert.Empty(t, GetSpanID(context.Background()))
	})
}

func TestNewTracerProvider(t *testing.T) {
	t.Run("disabled config yields no-op provider", func(t *testing.T) {
		tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, zap.NewNop())
		require.NoError(t, err)
		assert.False(t, tp.IsEnabled())
		assert.NoError(t, tp.Shutdown(context.Background()))
		assert.NoError(t, tp.ForceFlush(context.Background()))
	})
}
