package observable_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/shell"
	"github.com/AntonStoeckl/library-reservations-go/shell/observable"
	"github.com/AntonStoeckl/library-reservations-go/store"
	"github.com/AntonStoeckl/library-reservations-go/testutil/observability/testdoubles"
)

func Test_CommandWrapper_Handle_Success(t *testing.T) {
	// arrange
	expectedResult := shell.HandlerResult{
		Outcome:       core.Accepted(core.ReservationID{}, core.StatusAssigned, "reserved"),
		RetryAttempts: 1,
		LastErrorType: "none",
	}

	handler := newMockHandler(expectedResult, nil)
	metricsCollector := testdoubles.NewMetricsCollectorSpy(true)
	tracingCollector := testdoubles.NewTracingCollectorSpy(true)
	contextualLogger := testdoubles.NewContextualLoggerSpy(true)

	wrapper, err := observable.NewCommandWrapper[mockCommand](
		handler,
		observable.WithCommandMetrics[mockCommand](metricsCollector),
		observable.WithCommandTracing[mockCommand](tracingCollector),
		observable.WithCommandContextualLogging[mockCommand](contextualLogger),
	)
	require.NoError(t, err)

	command := mockCommand{}

	// act
	result, err := wrapper.Handle(context.Background(), command)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, expectedResult, result, "Should return handler result")
	assert.Len(t, handler.calls, 1, "Should call handler once")

	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerCallsMetric).
		WithLabel("command_type", "TestCommand").
		WithStatus("success").
		Assert(), "Should record success metric")
	assert.True(t, metricsCollector.HasDurationRecordForMetric(shell.CommandHandlerDurationMetric).
		WithLabel("command_type", "TestCommand").
		WithStatus("success").
		Assert(), "Should record duration metric")
	assert.Equal(t, 0, metricsCollector.CountCounterRecordsForMetric(shell.CommandHandlerRetriesMetric))

	assert.True(t, tracingCollector.HasSpanRecordForName("commandhandler.handle").
		WithStatus("success").
		WithStartAttribute("command_type", "TestCommand").
		WithEndAttributeKey("duration_ms").
		Assert())

	assert.True(t, contextualLogger.HasInfoLog("command handler started"))
	assert.True(t, contextualLogger.HasLogWithAttribute("info", "command handler completed", "reservation_status", 1))
}

func Test_CommandWrapper_Handle_Rejected(t *testing.T) {
	// arrange
	expectedResult := shell.HandlerResult{
		Outcome:       core.Rejected(fmt.Errorf("%w: reservation", core.ErrNotFound), "reservation not found"),
		Rejected:      true,
		RetryAttempts: 1,
	}

	handler := newMockHandler(expectedResult, nil)
	metricsCollector := testdoubles.NewMetricsCollectorSpy(true)
	tracingCollector := testdoubles.NewTracingCollectorSpy(true)
	contextualLogger := testdoubles.NewContextualLoggerSpy(true)

	wrapper, err := observable.NewCommandWrapper[mockCommand](
		handler,
		observable.WithCommandMetrics[mockCommand](metricsCollector),
		observable.WithCommandTracing[mockCommand](tracingCollector),
		observable.WithCommandContextualLogging[mockCommand](contextualLogger),
	)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.NoError(t, err, "A rejection is not an error")
	assert.True(t, result.Rejected)
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerRejectedMetric).
		WithLabel("command_type", "TestCommand").
		WithStatus("rejected").
		Assert())
	assert.True(t, tracingCollector.HasSpanRecordForName("commandhandler.handle").
		WithStatus("rejected").
		WithEndAttributeKey("error").
		Assert())
	assert.True(t, contextualLogger.HasLogWithAttribute("info", "command handler completed", "reservation_status", -1))
	assert.False(t, contextualLogger.HasErrorLog("command handler failed"))
}

func Test_CommandWrapper_Handle_WithRetries_RecordsMetrics(t *testing.T) {
	// arrange
	resultWithRetries := shell.HandlerResult{
		RetryAttempts:    3,
		TotalRetryDelay:  15 * time.Millisecond,
		LastErrorType:    "concurrency_conflict",
		RetriesExhausted: true,
	}

	handler := newMockHandler(resultWithRetries, store.ErrConcurrencyConflict)
	metricsCollector := testdoubles.NewMetricsCollectorSpy(true)

	wrapper, err := observable.NewCommandWrapper[mockCommand](
		handler,
		observable.WithCommandMetrics[mockCommand](metricsCollector),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.ErrorIs(t, err, store.ErrConcurrencyConflict)
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerRetriesMetric).
		WithLabel("command_type", "TestCommand").
		WithLabel("attempt_number", "2").
		WithErrorType("concurrency_conflict").
		Assert())
	assert.True(t, metricsCollector.HasDurationRecordForMetric(shell.CommandHandlerRetryDelayMetric).
		WithLabel("command_type", "TestCommand").
		Assert())
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerMaxRetriesReachedMetric).
		WithLabel("command_type", "TestCommand").
		Assert())
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerConcurrencyConflictMetric).
		WithStatus("concurrency_conflict").
		Assert())
}

func Test_CommandWrapper_Handle_ClassifiesErrors(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status string
		metric string
	}{
		{name: "canceled", err: context.Canceled, status: "canceled", metric: shell.CommandHandlerCanceledMetric},
		{name: "timeout", err: context.DeadlineExceeded, status: "timeout", metric: shell.CommandHandlerTimeoutMetric},
		{name: "other", err: errors.Join(store.ErrSavingFailed, errors.New("disk full")), status: "error", metric: shell.CommandHandlerCallsMetric},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			handler := newMockHandler(shell.HandlerResult{RetryAttempts: 1}, tc.err)
			metricsCollector := testdoubles.NewMetricsCollectorSpy(true)
			contextualLogger := testdoubles.NewContextualLoggerSpy(true)

			wrapper, err := observable.NewCommandWrapper[mockCommand](
				handler,
				observable.WithCommandMetrics[mockCommand](metricsCollector),
				observable.WithCommandContextualLogging[mockCommand](contextualLogger),
			)
			require.NoError(t, err)

			// act
			_, err = wrapper.Handle(context.Background(), mockCommand{})

			// assert
			assert.ErrorIs(t, err, tc.err)
			assert.True(t, metricsCollector.HasCounterRecordForMetric(tc.metric).WithStatus(tc.status).Assert())
			assert.True(t, contextualLogger.HasErrorLog("command handler failed"))
		})
	}
}

func Test_CommandWrapper_Handle_NotificationFailure_IsWarnedButSucceeds(t *testing.T) {
	// arrange
	notificationErr := errors.Join(shell.ErrNotificationFailed, errors.New("broker unreachable"))
	handler := newMockHandler(shell.HandlerResult{RetryAttempts: 1, NotificationErr: notificationErr}, nil)
	metricsCollector := testdoubles.NewMetricsCollectorSpy(true)
	contextualLogger := testdoubles.NewContextualLoggerSpy(true)

	wrapper, err := observable.NewCommandWrapper[mockCommand](
		handler,
		observable.WithCommandMetrics[mockCommand](metricsCollector),
		observable.WithCommandContextualLogging[mockCommand](contextualLogger),
	)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.NoError(t, err)
	assert.ErrorIs(t, result.NotificationErr, shell.ErrNotificationFailed)
	assert.True(t, contextualLogger.HasWarnLog("assignment notification failed"))
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerNotificationFailuresMetric).
		WithLabel("command_type", "TestCommand").
		Assert())
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerCallsMetric).WithStatus("success").Assert())
}

func Test_CommandWrapper_Handle_WithoutObservability(t *testing.T) {
	// arrange
	handler := newMockHandler(shell.HandlerResult{RetryAttempts: 1}, nil)

	wrapper, err := observable.NewCommandWrapper[mockCommand](handler)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.NoError(t, err)
	assert.Len(t, handler.calls, 1)
}

// mockCommand implements shell.Command for testing.
type mockCommand struct{}

func (c mockCommand) CommandType() string {
	return "TestCommand"
}

// mockCoreHandler implements shell.CoreCommandHandler for testing.
type mockCoreHandler struct {
	result shell.HandlerResult
	err    error
	calls  []mockCommand
}

func (h *mockCoreHandler) Handle(_ context.Context, command mockCommand) (shell.HandlerResult, error) {
	h.calls = append(h.calls, command)
	return h.result, h.err
}

func newMockHandler(result shell.HandlerResult, err error) *mockCoreHandler {
	return &mockCoreHandler{
		result: result,
		err:    err,
		calls:  make([]mockCommand, 0),
	}
}
