// Package store defines what the reservation engine needs from persistence.
//
// Books, users and reservations live behind the Store contract. Reads are plain lookups and ordered queries.
// All writes of one operation go through a single Save of core.Changes, which is applied atomically and
// only if the book was not modified since it was read (optimistic concurrency on the book's version).
// A lost race surfaces as ErrConcurrencyConflict, which the command handlers retry.
//
// Two engines implement the contract: sqlengine (Postgres via pgx.Pool, sql.DB or sqlx.DB, and SQLite)
// and memoryengine (in-process, for tests and local runs).
//
// The observability interfaces in this package are dependency-free, so any logging, metrics or tracing
// backend can be plugged in. See the oteladapters package for OpenTelemetry.
package store
