package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AntonStoeckl/library-reservations-go/store"
)

const (
	colID             = "id"
	colNickname       = "nickname"
	colTitle          = "title"
	colQuantity       = "quantity"
	colNumReservation = "num_reservation"
	colLastReservedAt = "last_reserved_at"
	colVersion        = "version"
	colUserID         = "user_id"
	colBookID         = "book_id"
	colCreateDate     = "create_date"
	colTakeDate       = "take_date"
	colReturnDate     = "return_date"
	colStatus         = "status"
)

type tableNames struct {
	users        string
	books        string
	reservations string
}

func tableNamesWithPrefix(prefix string) tableNames {
	return tableNames{
		users:        prefix + "users",
		books:        prefix + "books",
		reservations: prefix + "reservations",
	}
}

// schemaStatements returns the DDL for the configured dialect and table names.
func (s Store) schemaStatements() []string {
	idType := "uuid"
	if s.dialect == DialectSQLite {
		idType = "TEXT"
	}

	t := s.tables

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id %s PRIMARY KEY,
	nickname TEXT NOT NULL
)`, t.users, idType),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id %s PRIMARY KEY,
	title TEXT NOT NULL,
	quantity BIGINT NOT NULL CHECK (quantity >= 0),
	num_reservation BIGINT NOT NULL CHECK (num_reservation >= 0),
	last_reserved_at BIGINT NOT NULL DEFAULT 0,
	version BIGINT NOT NULL DEFAULT 0
)`, t.books, idType),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id %s PRIMARY KEY,
	user_id %s NOT NULL,
	book_id %s NOT NULL,
	create_date BIGINT NOT NULL,
	take_date BIGINT NULL,
	return_date BIGINT NULL,
	status SMALLINT NOT NULL CHECK (status BETWEEN 0 AND 4)
)`, t.reservations, idType, idType, idType),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_book_status_idx ON %s (book_id, status, create_date)`,
			t.reservations, t.reservations),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_user_idx ON %s (user_id, create_date)`,
			t.reservations, t.reservations),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_status_idx ON %s (status, create_date)`,
			t.reservations, t.reservations),
	}
}

// Migrate creates the tables and indexes if they do not exist yet.
func (s Store) Migrate(ctx context.Context) error {
	for _, statement := range s.schemaStatements() {
		start := time.Now()
		_, err := s.db.Exec(ctx, statement)
		s.logQueryWithDuration(ctx, statement, logActionMigrate, time.Since(start))

		if err != nil {
			s.logError(ctx, logMsgMigrationFailed, err, logAttrQuery, statement)
			return errors.Join(store.ErrMigrationFailed, err)
		}
	}

	return nil
}

// Purge deletes all rows from all tables. Intended for tests.
func (s Store) Purge(ctx context.Context) error {
	for _, table := range []string{s.tables.reservations, s.tables.books, s.tables.users} {
		statement := "DELETE FROM " + table

		if _, err := s.db.Exec(ctx, statement); err != nil {
			s.logError(ctx, logMsgPurgeFailed, err, logAttrQuery, statement)
			return errors.Join(store.ErrSavingFailed, err)
		}
	}

	return nil
}

// DropTables removes all tables of the store. Intended for tests that create prefixed tables.
func (s Store) DropTables(ctx context.Context) error {
	for _, table := range []string{s.tables.reservations, s.tables.books, s.tables.users} {
		statement := "DROP TABLE IF EXISTS " + table

		if _, err := s.db.Exec(ctx, statement); err != nil {
			s.logError(ctx, logMsgPurgeFailed, err, logAttrQuery, statement)
			return errors.Join(store.ErrMigrationFailed, err)
		}
	}

	return nil
}

// toMicros converts a timestamp into the stored representation, the zero time is stored as 0.
func toMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixMicro()
}

// fromMicros converts the stored representation back into a UTC timestamp.
func fromMicros(micros int64) time.Time {
	if micros == 0 {
		return time.Time{}
	}

	return time.UnixMicro(micros).UTC()
}

// optionalMicros converts a nullable timestamp, nil is stored as NULL.
func optionalMicros(t *time.Time) any {
	if t == nil {
		return nil
	}

	return t.UnixMicro()
}
