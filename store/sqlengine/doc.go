// Package sqlengine provides a SQL implementation of store.Store for the reservation engine.
//
// It supports multiple database adapters:
//   - pgx.Pool (default, recommended for Postgres)
//   - sql.DB (standard library, with lib/pq for Postgres or modernc.org/sqlite for SQLite)
//   - sqlx.DB (sqlx library)
//
// Statements are built with goqu for the postgres or the sqlite3 dialect and sent as interpolated SQL.
// Timestamps are stored as unix microseconds, so both dialects share one schema layout.
//
// Save runs in one transaction: the book row is updated only if its version still matches
// (compare-and-swap), inserted reservations are written, and every status transition is
// applied only if the reservation still has its previous status. If any of the guarded
// updates affects no row, the transaction is rolled back and store.ErrConcurrencyConflict is returned.
//
// Reads go to the primary database unless the context carries store.EventualConsistency
// and a replica is configured.
package sqlengine
