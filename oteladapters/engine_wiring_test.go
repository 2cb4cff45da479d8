package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/library-reservations-go/allocation"
	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/oteladapters"
	"github.com/AntonStoeckl/library-reservations-go/store/memoryengine"
)

func Test_Engine_ReportsThroughOpenTelemetry(t *testing.T) {
	// arrange
	ctx := context.Background()

	exporter := tracetest.NewInMemoryExporter()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tracerProvider.Shutdown(ctx) })

	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	var logs bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&logs, nil))

	s, err := memoryengine.NewStore()
	require.NoError(t, err)

	engine, err := allocation.NewEngine(s,
		allocation.WithTracing(oteladapters.NewTracingCollector(tracerProvider.Tracer("reservations"))),
		allocation.WithMetrics(oteladapters.NewMetricsCollector(meterProvider.Meter("reservations"))),
		allocation.WithContextualLogger(logger),
	)
	require.NoError(t, err)

	book, err := engine.RegisterBook(ctx, "Dune", 0)
	require.NoError(t, err)
	user, err := engine.RegisterUser(ctx, "paul")
	require.NoError(t, err)

	// act
	outcome, err := engine.Reserve(ctx, user.ID, book.ID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.StatusQueuing, outcome.Status)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "commandhandler.handle", spans[0].Name)
	assertSpanHasAttribute(t, spans[0], "command_type", "ReserveBook")
	assertSpanHasAttribute(t, spans[0], "status", "success")

	counter := findCounterMetric(t, collect(t, reader), "commandhandler_handle_calls_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(1), counter.DataPoints[0].Value)

	assert.Contains(t, logs.String(), `"msg":"command handler completed"`)
}
