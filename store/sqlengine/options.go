package sqlengine

import (
	"github.com/AntonStoeckl/library-reservations-go/store"
)

const (
	// DialectPostgres selects the Postgres SQL dialect, it is the default.
	DialectPostgres = "postgres"

	// DialectSQLite selects the SQLite SQL dialect.
	DialectSQLite = "sqlite3"
)

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithDialect sets the SQL dialect, DialectPostgres or DialectSQLite.
func WithDialect(dialect string) Option {
	return func(s *Store) error {
		if dialect != DialectPostgres && dialect != DialectSQLite {
			return store.ErrUnsupportedDialect
		}

		s.dialect = dialect

		return nil
	}
}

// WithTablePrefix prefixes the names of all tables, e.g. to run several test suites against one database.
func WithTablePrefix(prefix string) Option {
	return func(s *Store) error {
		s.tables = tableNamesWithPrefix(prefix)
		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: saved changes, durations, concurrency conflicts (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger store.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives query and save durations, concurrency conflicts, and database errors.
func WithMetrics(collector store.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
// Every query and save gets its own span.
func WithTracing(collector store.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// When set, it is used instead of the plain logger, so log records carry trace and span ids.
func WithContextualLogger(logger store.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}
