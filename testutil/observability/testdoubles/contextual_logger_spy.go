package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/library-reservations-go/store"
)

// ContextualLoggerSpy is a ContextualLogger implementation that captures contextual logging calls for testing.
type ContextualLoggerSpy struct {
	records     []SpyContextualLogRecord
	mu          sync.Mutex
	recordCalls bool
}

// SpyContextualLogRecord represents a recorded contextual log call.
type SpyContextualLogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// NewContextualLoggerSpy creates a new ContextualLoggerSpy instance.
func NewContextualLoggerSpy(recordCalls bool) *ContextualLoggerSpy {
	return &ContextualLoggerSpy{
		recordCalls: recordCalls,
	}
}

// DebugContext implements the ContextualLogger interface.
func (l *ContextualLoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	l.record(ctx, "debug", msg, args)
}

// InfoContext implements the ContextualLogger interface.
func (l *ContextualLoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	l.record(ctx, "info", msg, args)
}

// WarnContext implements the ContextualLogger interface.
func (l *ContextualLoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	l.record(ctx, "warn", msg, args)
}

// ErrorContext implements the ContextualLogger interface.
func (l *ContextualLoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.record(ctx, "error", msg, args)
}

func (l *ContextualLoggerSpy) record(ctx context.Context, level string, msg string, args []any) {
	if !l.recordCalls {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, SpyContextualLogRecord{
		Level:   level,
		Message: msg,
		Args:    args,
		Context: ctx,
	})
}

// Reset clears all recorded log calls.
func (l *ContextualLoggerSpy) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = l.records[:0]
}

// GetRecords returns a copy of all log records of the given level.
func (l *ContextualLoggerSpy) GetRecords(level string) []SpyContextualLogRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	var records []SpyContextualLogRecord
	for _, record := range l.records {
		if record.Level == level {
			records = append(records, record)
		}
	}

	return records
}

// GetTotalRecordCount returns the total number of log records across all levels.
func (l *ContextualLoggerSpy) GetTotalRecordCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.records)
}

// HasDebugLog checks if a debug log with the specified message exists.
func (l *ContextualLoggerSpy) HasDebugLog(message string) bool {
	return l.has("debug", message)
}

// HasInfoLog checks if an info log with the specified message exists.
func (l *ContextualLoggerSpy) HasInfoLog(message string) bool {
	return l.has("info", message)
}

// HasWarnLog checks if a warn log with the specified message exists.
func (l *ContextualLoggerSpy) HasWarnLog(message string) bool {
	return l.has("warn", message)
}

// HasErrorLog checks if an error log with the specified message exists.
func (l *ContextualLoggerSpy) HasErrorLog(message string) bool {
	return l.has("error", message)
}

// HasLogWithAttribute checks if a log of the given level and message carries the key-value pair.
func (l *ContextualLoggerSpy) HasLogWithAttribute(level string, message string, key string, value any) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, record := range l.records {
		if record.Level != level || record.Message != message {
			continue
		}

		for i := 0; i+1 < len(record.Args); i += 2 {
			if record.Args[i] == key && record.Args[i+1] == value {
				return true
			}
		}
	}

	return false
}

func (l *ContextualLoggerSpy) has(level string, message string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, record := range l.records {
		if record.Level == level && record.Message == message {
			return true
		}
	}

	return false
}

// Compile-time check to ensure ContextualLoggerSpy implements the ContextualLogger interface.
var _ store.ContextualLogger = (*ContextualLoggerSpy)(nil)
