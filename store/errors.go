package store

import "errors"

var (
	// ErrNilDatabaseConnection is returned when an engine is created without a database connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned when an empty table name is configured.
	ErrEmptyTableName = errors.New("empty table name supplied")

	// ErrUnsupportedDialect is returned for SQL dialects other than postgres and sqlite3.
	ErrUnsupportedDialect = errors.New("unsupported sql dialect")

	// ErrNotFound is returned by lookups when no record with the given id exists.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned when a book or user is registered twice.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrConcurrencyConflict is returned by Save when the book or one of the reservations was changed concurrently.
	ErrConcurrencyConflict = errors.New("concurrency conflict, the book was modified concurrently")

	// ErrBuildingQueryFailed is returned when a SQL statement could not be built.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrQueryingFailed is returned when a read against the database failed.
	ErrQueryingFailed = errors.New("querying failed")

	// ErrScanningDBRowFailed is returned when a database row could not be scanned.
	ErrScanningDBRowFailed = errors.New("scanning db row failed")

	// ErrSavingFailed is returned when persisting changes failed for reasons other than a conflict.
	ErrSavingFailed = errors.New("saving changes failed")

	// ErrGettingRowsAffectedFailed is returned when the affected row count could not be determined.
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")

	// ErrMigrationFailed is returned when the schema could not be created.
	ErrMigrationFailed = errors.New("schema migration failed")
)
