package config

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite" // sqlite driver
)

// InMemorySQLitePath opens a private in-memory database, used by tests.
const InMemorySQLitePath = ":memory:"

// SQLiteDB opens a SQLite database at path.
//
// SQLite allows a single writer, so the pool is limited to one connection. With that, transactions
// are serialized and an in-memory database lives as long as the pool.
func SQLiteDB(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path
	if path != InMemorySQLitePath {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}
