package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/store"
	"github.com/AntonStoeckl/library-reservations-go/store/sqlengine/internal/adapters"
)

const (
	logMsgBuildQueryFailed     = "failed to build sql statement"
	logMsgDBQueryFailed        = "database query execution failed"
	logMsgDBExecFailed         = "database execution failed"
	logMsgCloseRowsFailed      = "failed to close database rows"
	logMsgScanRowFailed        = "failed to scan database row"
	logMsgRowsAffectedFailed   = "failed to get rows affected count"
	logMsgBeginTxFailed        = "failed to begin transaction"
	logMsgCommitFailed         = "failed to commit transaction"
	logMsgRollbackFailed       = "failed to roll back transaction"
	logMsgMigrationFailed      = "schema migration failed"
	logMsgPurgeFailed          = "purging tables failed"
	logMsgQueryCompleted       = "query completed"
	logMsgChangesSaved         = "changes saved"
	logMsgConcurrencyConflict  = "concurrency conflict detected"
	logMsgSQLExecuted          = "executed sql for: "
	logMsgOperation            = "store operation: "
	logAttrError               = "error"
	logAttrQuery               = "query"
	logAttrOperation           = "operation"
	logAttrRowCount            = "row_count"
	logAttrDurationMS          = "duration_ms"
	logAttrBookID              = "book_id"
	logAttrExpectedVersion     = "expected_version"
	logAttrInserted            = "inserted"
	logAttrTransitions         = "transitions"
	logAttrReservationID       = "reservation_id"
	logAttrExpectedStatus      = "expected_status"
	logActionQuery             = "query"
	logActionSave              = "save"
	logActionMigrate           = "migrate"
	operationFindUser          = "find_user"
	operationFindBook          = "find_book"
	operationFindReservation   = "find_reservation"
	operationQueryByBookStatus = "query_by_book_and_status"
	operationQueryByStatus     = "query_by_status"
	operationQueryByUser       = "query_by_user"
	operationRegisterUser      = "register_user"
	operationRegisterBook      = "register_book"
	operationSave              = "save"
)

// Store is a SQL implementation of store.Store.
type Store struct {
	db               adapters.DBAdapter
	dialect          string
	tables           tableNames
	logger           store.Logger
	contextualLogger store.ContextualLogger
	metricsCollector store.MetricsCollector
	tracingCollector store.TracingCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, store.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromPGXPoolAndReplica creates a new Store using a primary and a replica pgx Pool.
// Reads with store.EventualConsistency in the context are served by the replica.
func NewStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil || replica == nil {
		return Store{}, store.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, store.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLDBAndReplica creates a new Store using a primary and a replica sql.DB.
func NewStoreFromSQLDBAndReplica(db *sql.DB, replica *sql.DB, options ...Option) (Store, error) {
	if db == nil || replica == nil {
		return Store{}, store.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, store.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (Store, error) {
	s := Store{
		db:      db,
		dialect: DialectPostgres,
		tables:  tableNamesWithPrefix(""),
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

func (s Store) builder() goqu.DialectWrapper {
	return goqu.Dialect(s.dialect)
}

// FindUser returns the user or store.ErrNotFound.
func (s Store) FindUser(ctx context.Context, userID core.UserID) (core.User, error) {
	ds := s.builder().
		From(s.tables.users).
		Select(colID, colNickname).
		Where(goqu.C(colID).Eq(userID.String()))

	var users []core.User
	err := s.queryRows(ctx, operationFindUser, ds, func(rows adapters.DBRows) error {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Nickname); err != nil {
			return err
		}

		users = append(users, u)

		return nil
	})
	if err != nil {
		return core.User{}, err
	}

	if len(users) == 0 {
		return core.User{}, fmt.Errorf("%w: user %s", store.ErrNotFound, userID)
	}

	return users[0], nil
}

// FindBook returns the book or store.ErrNotFound.
func (s Store) FindBook(ctx context.Context, bookID core.BookID) (core.Book, error) {
	ds := s.builder().
		From(s.tables.books).
		Select(colID, colTitle, colQuantity, colNumReservation, colLastReservedAt, colVersion).
		Where(goqu.C(colID).Eq(bookID.String()))

	var books []core.Book
	err := s.queryRows(ctx, operationFindBook, ds, func(rows adapters.DBRows) error {
		book, err := scanBook(rows)
		if err != nil {
			return err
		}

		books = append(books, book)

		return nil
	})
	if err != nil {
		return core.Book{}, err
	}

	if len(books) == 0 {
		return core.Book{}, fmt.Errorf("%w: book %s", store.ErrNotFound, bookID)
	}

	return books[0], nil
}

// FindReservation returns the reservation or store.ErrNotFound.
func (s Store) FindReservation(ctx context.Context, reservationID core.ReservationID) (core.Reservation, error) {
	ds := s.selectReservations().Where(goqu.C(colID).Eq(reservationID.String()))

	reservations, err := s.queryReservations(ctx, operationFindReservation, ds)
	if err != nil {
		return core.Reservation{}, err
	}

	if len(reservations) == 0 {
		return core.Reservation{}, fmt.Errorf("%w: reservation %s", store.ErrNotFound, reservationID)
	}

	return reservations[0], nil
}

// QueryByBookAndStatus returns the book's reservations in the given status, oldest first.
func (s Store) QueryByBookAndStatus(ctx context.Context, bookID core.BookID, status core.Status) ([]core.Reservation, error) {
	ds := s.selectReservations().
		Where(
			goqu.C(colBookID).Eq(bookID.String()),
			goqu.C(colStatus).Eq(status.Code()),
		).
		Order(goqu.C(colCreateDate).Asc(), goqu.C(colID).Asc())

	return s.queryReservations(ctx, operationQueryByBookStatus, ds)
}

// QueryByStatus returns all reservations matching the filter, oldest first.
func (s Store) QueryByStatus(ctx context.Context, filter store.StatusFilter) ([]core.Reservation, error) {
	ds := s.selectReservations().Order(goqu.C(colCreateDate).Asc(), goqu.C(colID).Asc())

	if status, ok := filter.Status(); ok {
		ds = ds.Where(goqu.C(colStatus).Eq(status.Code()))
	}

	return s.queryReservations(ctx, operationQueryByStatus, ds)
}

// QueryByUser returns the user's reservations, newest first.
func (s Store) QueryByUser(ctx context.Context, userID core.UserID) ([]core.Reservation, error) {
	ds := s.selectReservations().
		Where(goqu.C(colUserID).Eq(userID.String())).
		Order(goqu.C(colCreateDate).Desc(), goqu.C(colID).Desc())

	return s.queryReservations(ctx, operationQueryByUser, ds)
}

func (s Store) selectReservations() *goqu.SelectDataset {
	return s.builder().
		From(s.tables.reservations).
		Select(colID, colUserID, colBookID, colCreateDate, colTakeDate, colReturnDate, colStatus)
}

func (s Store) queryReservations(ctx context.Context, operation string, ds *goqu.SelectDataset) ([]core.Reservation, error) {
	reservations := make([]core.Reservation, 0)

	err := s.queryRows(ctx, operation, ds, func(rows adapters.DBRows) error {
		r, err := scanReservation(rows)
		if err != nil {
			return err
		}

		reservations = append(reservations, r)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return reservations, nil
}

// queryRows builds and runs a select statement and hands every row to scan, with logging, metrics and tracing.
func (s Store) queryRows(ctx context.Context, operation string, ds *goqu.SelectDataset, scan func(adapters.DBRows) error) error {
	observer, ctx := s.startQueryObservation(ctx, operation)

	sqlQuery, _, buildErr := ds.ToSQL()
	if buildErr != nil {
		s.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrOperation, operation)
		observer.finishError(errorTypeBuildQuery)

		return errors.Join(store.ErrBuildingQueryFailed, buildErr)
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, logActionQuery, duration)

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		observer.finishError(errorTypeDatabase)

		return errors.Join(store.ErrQueryingFailed, queryErr)
	}
	defer s.closeRows(ctx, rows)

	rowCount := 0
	for rows.Next() {
		if scanErr := scan(rows); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr, logAttrOperation, operation)
			observer.finishError(errorTypeScan)

			return errors.Join(store.ErrScanningDBRowFailed, scanErr)
		}

		rowCount++
	}

	if iterErr := rows.Err(); iterErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, iterErr, logAttrQuery, sqlQuery)
		observer.finishError(errorTypeDatabase)

		return errors.Join(store.ErrQueryingFailed, iterErr)
	}

	observer.finishSuccess(rowCount)
	s.logOperation(ctx, logMsgQueryCompleted,
		logAttrOperation, operation,
		logAttrRowCount, rowCount,
		logAttrDurationMS, s.toMilliseconds(duration))

	return nil
}

// closeRows safely closes database rows and logs any errors.
func (s Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, closeErr)
	}
}

func scanBook(rows adapters.DBRows) (core.Book, error) {
	var (
		book           core.Book
		quantity       int64
		numReservation int64
		lastReservedAt int64
		version        int64
	)

	if err := rows.Scan(&book.ID, &book.Title, &quantity, &numReservation, &lastReservedAt, &version); err != nil {
		return core.Book{}, err
	}

	book.Quantity = int(quantity)
	book.NumReservation = int(numReservation)
	book.LastReservedAt = fromMicros(lastReservedAt)
	book.Version = uint(version) //nolint:gosec // version is never negative

	return book, nil
}

func scanReservation(rows adapters.DBRows) (core.Reservation, error) {
	var (
		r          core.Reservation
		createDate int64
		takeDate   sql.NullInt64
		returnDate sql.NullInt64
		statusCode int64
	)

	if err := rows.Scan(&r.ID, &r.UserID, &r.BookID, &createDate, &takeDate, &returnDate, &statusCode); err != nil {
		return core.Reservation{}, err
	}

	status, err := core.ParseStatusCode(int(statusCode))
	if err != nil {
		return core.Reservation{}, err
	}

	r.Status = status
	r.CreateDate = fromMicros(createDate)

	if takeDate.Valid {
		t := fromMicros(takeDate.Int64)
		r.TakeDate = &t
	}

	if returnDate.Valid {
		t := fromMicros(returnDate.Int64)
		r.ReturnDate = &t
	}

	return r, nil
}
