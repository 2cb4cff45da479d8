package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/store"
	"github.com/AntonStoeckl/library-reservations-go/store/sqlengine/internal/adapters"
)

// RegisterUser adds a user.
func (s Store) RegisterUser(ctx context.Context, user core.User) error {
	if _, err := s.FindUser(ctx, user.ID); err == nil {
		return fmt.Errorf("%w: user %s", store.ErrAlreadyExists, user.ID)
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	ds := s.builder().Insert(s.tables.users).Rows(goqu.Record{
		colID:       user.ID.String(),
		colNickname: user.Nickname,
	})

	return s.execInsert(ctx, operationRegisterUser, ds)
}

// RegisterBook adds a book. Its version starts at zero.
func (s Store) RegisterBook(ctx context.Context, book core.Book) error {
	if _, err := s.FindBook(ctx, book.ID); err == nil {
		return fmt.Errorf("%w: book %s", store.ErrAlreadyExists, book.ID)
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	ds := s.builder().Insert(s.tables.books).Rows(goqu.Record{
		colID:             book.ID.String(),
		colTitle:          book.Title,
		colQuantity:       book.Quantity,
		colNumReservation: book.NumReservation,
		colLastReservedAt: toMicros(book.LastReservedAt),
		colVersion:        0,
	})

	return s.execInsert(ctx, operationRegisterBook, ds)
}

func (s Store) execInsert(ctx context.Context, operation string, ds *goqu.InsertDataset) error {
	sqlQuery, _, buildErr := ds.ToSQL()
	if buildErr != nil {
		s.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrOperation, operation)
		return errors.Join(store.ErrBuildingQueryFailed, buildErr)
	}

	start := time.Now()
	_, execErr := s.db.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, logActionSave, time.Since(start))

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return errors.Join(store.ErrSavingFailed, execErr)
	}

	return nil
}

// Save applies the changes in one transaction.
//
// The book row is updated with a compare-and-swap on its version, the version is incremented.
// Inserted reservations are written as they are. Every transition is applied only if the reservation
// still has the status the decision was based on. If a guarded update affects no row, the transaction
// is rolled back and store.ErrConcurrencyConflict is returned.
func (s Store) Save(ctx context.Context, changes core.Changes) error {
	observer, ctx := s.startSaveObservation(ctx, operationSave, changes.Book.ID.String(), changes.Book.Version)
	start := time.Now()

	tx, beginErr := s.db.BeginTx(ctx)
	if beginErr != nil {
		s.logError(ctx, logMsgBeginTxFailed, beginErr)
		observer.finishError(errorTypeTransaction)

		return errors.Join(store.ErrSavingFailed, beginErr)
	}

	errorType, saveErr := s.applyChanges(ctx, tx, changes)
	if saveErr != nil {
		s.rollback(ctx, tx)

		if errors.Is(saveErr, store.ErrConcurrencyConflict) {
			s.logOperation(ctx, logMsgConcurrencyConflict,
				logAttrBookID, changes.Book.ID.String(),
				logAttrExpectedVersion, changes.Book.Version)
			observer.finishConflict()

			return saveErr
		}

		observer.finishError(errorType)

		return saveErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		s.logError(ctx, logMsgCommitFailed, commitErr, logAttrBookID, changes.Book.ID.String())
		observer.finishError(errorTypeTransaction)

		return errors.Join(store.ErrSavingFailed, commitErr)
	}

	rowCount := 1 + len(changes.Inserted) + len(changes.Transitions)
	observer.finishSuccess(rowCount)
	s.logOperation(ctx, logMsgChangesSaved,
		logAttrBookID, changes.Book.ID.String(),
		logAttrInserted, len(changes.Inserted),
		logAttrTransitions, len(changes.Transitions),
		logAttrDurationMS, s.toMilliseconds(time.Since(start)))

	return nil
}

// applyChanges runs all statements of a save inside tx and returns the error type for metrics on failure.
func (s Store) applyChanges(ctx context.Context, tx adapters.DBTx, changes core.Changes) (string, error) {
	book := changes.Book

	updateBook := s.builder().Update(s.tables.books).
		Set(goqu.Record{
			colQuantity:       book.Quantity,
			colNumReservation: book.NumReservation,
			colLastReservedAt: toMicros(book.LastReservedAt),
			colVersion:        int64(book.Version) + 1,
		}).
		Where(
			goqu.C(colID).Eq(book.ID.String()),
			goqu.C(colVersion).Eq(int64(book.Version)),
		)

	if errorType, err := s.execGuarded(ctx, tx, updateBook); err != nil {
		return errorType, err
	}

	for _, r := range changes.Inserted {
		insert := s.builder().Insert(s.tables.reservations).Rows(goqu.Record{
			colID:         r.ID.String(),
			colUserID:     r.UserID.String(),
			colBookID:     r.BookID.String(),
			colCreateDate: toMicros(r.CreateDate),
			colTakeDate:   optionalMicros(r.TakeDate),
			colReturnDate: optionalMicros(r.ReturnDate),
			colStatus:     r.Status.Code(),
		})

		sqlQuery, _, buildErr := insert.ToSQL()
		if buildErr != nil {
			s.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrOperation, operationSave)
			return errorTypeBuildQuery, errors.Join(store.ErrBuildingQueryFailed, buildErr)
		}

		if errorType, err := s.exec(ctx, tx, sqlQuery); err != nil {
			return errorType, err
		}
	}

	for _, t := range changes.Transitions {
		r := t.Reservation

		updateReservation := s.builder().Update(s.tables.reservations).
			Set(goqu.Record{
				colStatus:     r.Status.Code(),
				colTakeDate:   optionalMicros(r.TakeDate),
				colReturnDate: optionalMicros(r.ReturnDate),
			}).
			Where(
				goqu.C(colID).Eq(r.ID.String()),
				goqu.C(colStatus).Eq(t.From.Code()),
			)

		if errorType, err := s.execGuarded(ctx, tx, updateReservation); err != nil {
			if errors.Is(err, store.ErrConcurrencyConflict) {
				s.logOperation(ctx, logMsgConcurrencyConflict,
					logAttrReservationID, r.ID.String(),
					logAttrExpectedStatus, t.From.String())
			}

			return errorType, err
		}
	}

	return "", nil
}

// execGuarded runs an update that must affect exactly one row, otherwise it reports a conflict.
func (s Store) execGuarded(ctx context.Context, tx adapters.DBTx, ds *goqu.UpdateDataset) (string, error) {
	sqlQuery, _, buildErr := ds.ToSQL()
	if buildErr != nil {
		s.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrOperation, operationSave)
		return errorTypeBuildQuery, errors.Join(store.ErrBuildingQueryFailed, buildErr)
	}

	result, execErr := s.execResult(ctx, tx, sqlQuery)
	if execErr != nil {
		return errorTypeDatabase, execErr
	}

	rowsAffected, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		s.logError(ctx, logMsgRowsAffectedFailed, rowsErr, logAttrQuery, sqlQuery)
		return errorTypeRowsAffected, errors.Join(store.ErrGettingRowsAffectedFailed, rowsErr)
	}

	if rowsAffected != 1 {
		return "", store.ErrConcurrencyConflict
	}

	return "", nil
}

func (s Store) exec(ctx context.Context, tx adapters.DBTx, sqlQuery string) (string, error) {
	if _, err := s.execResult(ctx, tx, sqlQuery); err != nil {
		return errorTypeDatabase, err
	}

	return "", nil
}

func (s Store) execResult(ctx context.Context, tx adapters.DBTx, sqlQuery string) (adapters.DBResult, error) {
	start := time.Now()
	result, execErr := tx.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, logActionSave, time.Since(start))

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(store.ErrSavingFailed, execErr)
	}

	return result, nil
}

func (s Store) rollback(ctx context.Context, tx adapters.DBTx) {
	if err := tx.Rollback(ctx); err != nil {
		s.logWarn(ctx, logMsgRollbackFailed, err)
	}
}
