package sqlengine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/library-reservations-go/store"
)

const (
	metricQueryDuration        = "store_query_duration_seconds"
	metricSaveDuration         = "store_save_duration_seconds"
	metricRowsQueried          = "store_rows_queried"
	metricConcurrencyConflicts = "store_concurrency_conflicts_total"
	metricDatabaseErrors       = "store_database_errors_total"

	spanNameQuery = "store.query"
	spanNameSave  = "store.save"

	spanAttrOperation   = "operation"
	spanAttrErrorType   = "error_type"
	spanAttrRowCount    = "row_count"
	spanAttrDurationMS  = "duration_ms"
	spanAttrBookID      = "book_id"
	spanAttrExpectedVer = "expected_version"
	spanAttrConsistency = "consistency"

	labelStatus       = "status"
	labelConflictType = "conflict_type"

	statusSuccess  = "success"
	statusError    = "error"
	statusConflict = "concurrency_conflict"

	errorTypeBuildQuery   = "build_query"
	errorTypeDatabase     = "database_query"
	errorTypeScan         = "row_scan"
	errorTypeTransaction  = "transaction"
	errorTypeRowsAffected = "rows_affected"
)

// logQueryWithDuration logs SQL statements with execution time at debug level if a logger is configured.
func (s Store) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
		return
	}

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (s Store) logOperation(ctx context.Context, action string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical issues if a logger is configured.
func (s Store) logWarn(ctx context.Context, message string, err error) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, logAttrError, err.Error())
		return
	}

	if s.logger != nil {
		s.logger.Warn(message, logAttrError, err.Error())
	}
}

// logError logs error information at the error level if a logger is configured.
func (s Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s Store) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDuration records a duration metric, with context if the collector supports it.
func (s Store) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(store.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metric, duration, labels)
}

// recordValue records a value metric, with context if the collector supports it.
func (s Store) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(store.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	s.metricsCollector.RecordValue(metric, value, labels)
}

// incrementCounter increments a counter metric, with context if the collector supports it.
func (s Store) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(store.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metric, labels)
}

// === Operation Observer Pattern ===
// The observer bundles span lifecycle and metric recording of one store operation.

type operationObserver struct {
	s              Store
	ctx            context.Context
	span           store.SpanContext
	start          time.Time
	operation      string
	durationMetric string
}

// startQueryObservation starts the observation of a read operation.
func (s Store) startQueryObservation(ctx context.Context, operation string) (*operationObserver, context.Context) {
	return s.startObservation(ctx, spanNameQuery, metricQueryDuration, map[string]string{
		spanAttrOperation:   operation,
		spanAttrConsistency: store.GetConsistencyLevel(ctx).String(),
	})
}

// startSaveObservation starts the observation of a save operation.
func (s Store) startSaveObservation(ctx context.Context, operation string, bookID string, expectedVersion uint) (*operationObserver, context.Context) {
	return s.startObservation(ctx, spanNameSave, metricSaveDuration, map[string]string{
		spanAttrOperation:   operation,
		spanAttrBookID:      bookID,
		spanAttrExpectedVer: fmt.Sprintf("%d", expectedVersion),
	})
}

func (s Store) startObservation(
	ctx context.Context,
	spanName string,
	durationMetric string,
	attrs map[string]string,
) (*operationObserver, context.Context) {
	var span store.SpanContext
	if s.tracingCollector != nil {
		ctx, span = s.tracingCollector.StartSpan(ctx, spanName, attrs)
	}

	return &operationObserver{
		s:              s,
		ctx:            ctx,
		span:           span,
		start:          time.Now(),
		operation:      attrs[spanAttrOperation],
		durationMetric: durationMetric,
	}, ctx
}

// finishSuccess completes the observation of a successful operation.
func (o *operationObserver) finishSuccess(rowCount int) {
	duration := time.Since(o.start)

	o.s.recordDuration(o.ctx, o.durationMetric, duration, o.labels(statusSuccess))
	if o.durationMetric == metricQueryDuration {
		o.s.recordValue(o.ctx, metricRowsQueried, float64(rowCount), o.labels(statusSuccess))
	}

	o.finishSpan(statusSuccess, map[string]string{
		spanAttrRowCount:   fmt.Sprintf("%d", rowCount),
		spanAttrDurationMS: fmt.Sprintf("%.2f", o.s.toMilliseconds(duration)),
	})
}

// finishError completes the observation of a failed operation.
func (o *operationObserver) finishError(errorType string) {
	duration := time.Since(o.start)

	o.s.recordDuration(o.ctx, o.durationMetric, duration, o.labels(statusError))

	errorLabels := o.labels(statusError)
	errorLabels[spanAttrErrorType] = errorType
	o.s.incrementCounter(o.ctx, metricDatabaseErrors, errorLabels)

	o.finishSpan(statusError, map[string]string{
		spanAttrErrorType:  errorType,
		spanAttrDurationMS: fmt.Sprintf("%.2f", o.s.toMilliseconds(duration)),
	})
}

// finishConflict completes the observation of a save that lost a race.
func (o *operationObserver) finishConflict() {
	duration := time.Since(o.start)

	o.s.recordDuration(o.ctx, o.durationMetric, duration, o.labels(statusConflict))
	o.s.incrementCounter(o.ctx, metricConcurrencyConflicts, map[string]string{
		spanAttrOperation: o.operation,
		labelConflictType: "concurrency",
	})

	o.finishSpan(statusConflict, map[string]string{
		spanAttrDurationMS: fmt.Sprintf("%.2f", o.s.toMilliseconds(duration)),
	})
}

func (o *operationObserver) labels(status string) map[string]string {
	return map[string]string{
		spanAttrOperation: o.operation,
		labelStatus:       status,
	}
}

func (o *operationObserver) finishSpan(status string, attrs map[string]string) {
	if o.s.tracingCollector == nil || o.span == nil {
		return
	}

	o.span.SetStatus(status)
	for key, value := range attrs {
		o.span.AddAttribute(key, value)
	}

	o.s.tracingCollector.FinishSpan(o.span, status, attrs)
}
