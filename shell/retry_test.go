package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-reservations-go/shell"
	"github.com/AntonStoeckl/library-reservations-go/store"
	"github.com/AntonStoeckl/library-reservations-go/testutil/observability/testdoubles"
)

func Test_RetryWithExponentialBackoff_Success_NoRetries(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		return nil // Success on the first attempt
	}

	meta, err := shell.RetryWithExponentialBackoff(ctx, fn)

	assert.NoError(t, err)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, time.Duration(0), meta.TotalDelay)
	assert.Equal(t, "none", meta.LastErrorType)
	assert.False(t, meta.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_RetryOnConcurrencyConflict(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		if callCount < 3 {
			return store.ErrConcurrencyConflict // Fail twice
		}
		return nil // Success on the third attempt
	}

	meta, err := shell.RetryWithExponentialBackoff(ctx, fn, shell.WithBaseDelay(time.Millisecond))

	assert.NoError(t, err)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.Greater(t, meta.TotalDelay, time.Duration(0))
	assert.Equal(t, "none", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_FailsFastOnOtherErrors(t *testing.T) {
	ctx := context.Background()
	callCount := 0
	permanent := errors.New("disk on fire")

	fn := func(_ context.Context) error {
		callCount++
		return permanent
	}

	meta, err := shell.RetryWithExponentialBackoff(ctx, fn)

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, "other", meta.LastErrorType)
	assert.False(t, meta.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_ExhaustsRetries(t *testing.T) {
	ctx := context.Background()
	callCount := 0
	metricsCollector := testdoubles.NewMetricsCollectorSpy(true)

	fn := func(_ context.Context) error {
		callCount++
		return store.ErrConcurrencyConflict
	}

	meta, err := shell.RetryWithExponentialBackoff(ctx, fn,
		shell.WithMaxAttempts(3),
		shell.WithBaseDelay(time.Millisecond),
		shell.WithJitterFactor(0),
		shell.WithMetrics(metricsCollector, "ReserveBook"),
	)

	assert.ErrorIs(t, err, store.ErrConcurrencyConflict)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.True(t, meta.RetriesExhausted)
	assert.Equal(t, "concurrency_conflict", meta.LastErrorType)
	assert.Equal(t, 3*time.Millisecond, meta.TotalDelay) // 1 ms + 2 ms without jitter
	assert.Equal(t, 2, metricsCollector.CountCounterRecordsForMetric(shell.CommandHandlerRetriesMetric))
	assert.Equal(t, 2, metricsCollector.CountDurationRecordsForMetric(shell.CommandHandlerRetryDelayMetric))
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerRetriesMetric).
		WithLabel("command_type", "ReserveBook").
		WithLabel("attempt_number", "2").
		WithErrorType("concurrency_conflict").
		Assert())
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerMaxRetriesReachedMetric).
		WithLabel("final_error_type", "concurrency_conflict").
		Assert())
}

func Test_RetryWithExponentialBackoff_StopsWhenContextIsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		cancel()
		return store.ErrConcurrencyConflict
	}

	meta, err := shell.RetryWithExponentialBackoff(ctx, fn, shell.WithBaseDelay(time.Second))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, "context_canceled", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_InvalidOptions(t *testing.T) {
	ctx := context.Background()
	fn := func(_ context.Context) error { return nil }

	// Test invalid max attempts
	_, err := shell.RetryWithExponentialBackoff(ctx, fn, shell.WithMaxAttempts(0))
	assert.ErrorIs(t, err, shell.ErrInvalidMaxAttempts)

	// Test negative base delay
	_, err = shell.RetryWithExponentialBackoff(ctx, fn, shell.WithBaseDelay(-1*time.Second))
	assert.ErrorIs(t, err, shell.ErrNegativeBaseDelay)

	// Test invalid jitter factor
	_, err = shell.RetryWithExponentialBackoff(ctx, fn, shell.WithJitterFactor(1.5))
	assert.ErrorIs(t, err, shell.ErrInvalidJitterFactor)

	// Test metrics without collector or command type
	_, err = shell.RetryWithExponentialBackoff(ctx, fn, shell.WithMetrics(nil, "ReserveBook"))
	assert.ErrorIs(t, err, shell.ErrNilMetricsCollector)

	_, err = shell.RetryWithExponentialBackoff(ctx, fn, shell.WithMetrics(testdoubles.NewMetricsCollectorSpy(false), ""))
	assert.ErrorIs(t, err, shell.ErrEmptyCommandType)
}
