package oteladapters_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/library-reservations-go/oteladapters"
)

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	// arrange
	reader, collector := newMetricsCollector(t)
	labels := map[string]string{"command_type": "ReserveBook", "status": "success"}

	// act
	collector.RecordDuration("commandhandler_handle_duration_seconds", 150*time.Millisecond, labels)

	// assert
	histogram := findHistogramMetric(t, collect(t, reader), "commandhandler_handle_duration_seconds")
	require.Len(t, histogram.DataPoints, 1)

	dataPoint := histogram.DataPoints[0]
	assert.Equal(t, uint64(1), dataPoint.Count)
	assert.InDelta(t, 0.15, dataPoint.Sum, 0.001)

	expectedAttrs := attribute.NewSet(
		attribute.String("command_type", "ReserveBook"),
		attribute.String("status", "success"),
	)
	assert.True(t, dataPoint.Attributes.Equals(&expectedAttrs))
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	// arrange
	reader, collector := newMetricsCollector(t)
	labels := map[string]string{"command_type": "CancelReservation", "status": "rejected"}

	// act
	collector.IncrementCounter("commandhandler_rejected_operations_total", labels)
	collector.IncrementCounterContext(context.Background(), "commandhandler_rejected_operations_total", labels)
	collector.IncrementCounter("commandhandler_rejected_operations_total", labels)

	// assert
	counter := findCounterMetric(t, collect(t, reader), "commandhandler_rejected_operations_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(3), counter.DataPoints[0].Value)
	assert.True(t, counter.IsMonotonic)
}

func Test_MetricsCollector_CountersAreSeparatedByLabels(t *testing.T) {
	// arrange
	reader, collector := newMetricsCollector(t)

	// act
	collector.IncrementCounter("commandhandler_handle_calls_total", map[string]string{"status": "success"})
	collector.IncrementCounter("commandhandler_handle_calls_total", map[string]string{"status": "success"})
	collector.IncrementCounter("commandhandler_handle_calls_total", map[string]string{"status": "rejected"})

	// assert
	counter := findCounterMetric(t, collect(t, reader), "commandhandler_handle_calls_total")
	require.Len(t, counter.DataPoints, 2)

	var total int64
	for _, dataPoint := range counter.DataPoints {
		total += dataPoint.Value
	}
	assert.Equal(t, int64(3), total)
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	// arrange
	reader, collector := newMetricsCollector(t)

	// act
	collector.RecordValue("store_rows_queried", 4, nil)
	collector.RecordValueContext(context.Background(), "store_rows_queried", 7, nil)

	// assert
	gauge := findGaugeMetric(t, collect(t, reader), "store_rows_queried")
	require.Len(t, gauge.DataPoints, 1)
	assert.InDelta(t, 7.0, gauge.DataPoints[0].Value, 0.001)
}

func Test_MetricsCollector_ConcurrentUse(t *testing.T) {
	// arrange
	reader, collector := newMetricsCollector(t)
	done := make(chan struct{})

	// act
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			collector.IncrementCounter("commandhandler_handle_calls_total", nil)
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	// assert
	counter := findCounterMetric(t, collect(t, reader), "commandhandler_handle_calls_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(10), counter.DataPoints[0].Value)
}

func Test_MetricsCollector_InstrumentCreationFailure(t *testing.T) {
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	collector := oteladapters.NewMetricsCollector(&failingMeter{Meter: provider.Meter("test")})
	ctx := context.Background()

	assert.NotPanics(t, func() {
		collector.RecordDuration("any_duration", time.Millisecond, nil)
		collector.IncrementCounterContext(ctx, "any_counter", nil)
		collector.RecordValueContext(ctx, "any_gauge", 1, nil)
	})
}

func newMetricsCollector(t *testing.T) (*sdkmetric.ManualReader, *oteladapters.MetricsCollector) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return reader, oteladapters.NewMetricsCollector(provider.Meter("test"))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	return resourceMetrics
}

// failingMeter refuses to create any instrument.
type failingMeter struct {
	metric.Meter
}

func (m *failingMeter) Float64Histogram(string, ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	return nil, errors.New("histogram creation failed")
}

func (m *failingMeter) Int64Counter(string, ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return nil, errors.New("counter creation failed")
}

func (m *failingMeter) Float64Gauge(string, ...metric.Float64GaugeOption) (metric.Float64Gauge, error) {
	return nil, errors.New("gauge creation failed")
}

func findHistogramMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Histogram[float64] {
	t.Helper()

	for _, scopeMetrics := range rm.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if h, ok := m.Data.(metricdata.Histogram[float64]); ok && m.Name == name {
				return h
			}
		}
	}

	t.Fatalf("histogram metric %s not found", name)

	return metricdata.Histogram[float64]{}
}

func findCounterMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()

	for _, scopeMetrics := range rm.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if c, ok := m.Data.(metricdata.Sum[int64]); ok && m.Name == name {
				return c
			}
		}
	}

	t.Fatalf("counter metric %s not found", name)

	return metricdata.Sum[int64]{}
}

func findGaugeMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Gauge[float64] {
	t.Helper()

	for _, scopeMetrics := range rm.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if g, ok := m.Data.(metricdata.Gauge[float64]); ok && m.Name == name {
				return g
			}
		}
	}

	t.Fatalf("gauge metric %s not found", name)

	return metricdata.Gauge[float64]{}
}
