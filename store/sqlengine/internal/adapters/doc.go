// Package adapters provide database adapter implementations for the SQL store engine.
//
// This package implements the adapter pattern to support multiple database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, including transactions for atomic saves.
//
// Reads honor the consistency level found in the context: with eventual consistency they
// go to the replica, if one is configured. Transactions always run on the primary.
package adapters
