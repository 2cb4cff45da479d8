// Package storewrapper creates the store.Store the tests run against, selected with the STORE_TYPE environment variable.
//
// Store Types:
//
//	memory (default): memoryengine.Store
//	sqlite: sqlengine.Store on an in-memory modernc.org/sqlite database
//	pgx.pool: sqlengine.Store on a pgxpool.Pool
//	sql.db: sqlengine.Store on a database/sql DB with lib/pq
//	sqlx.db: sqlengine.Store on a sqlx.DB with lib/pq
//
// The Postgres types connect to TEST_POSTGRES_DSN. Each wrapper gets its own table prefix,
// so test packages running in parallel do not see each other's rows. Close drops the tables.
package storewrapper
