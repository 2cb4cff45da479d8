package helper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/store"
)

// FakeClock is the fixed point in time the fixtures are arranged around.
var FakeClock = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

// GivenUniqueID returns a fresh time-ordered uuid.
func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	assert.NoError(t, err, "error in arranging test data")

	return id
}

// FixtureBook builds a book with the given stock, not yet registered.
func FixtureBook(t testing.TB, title string, quantity int) core.Book {
	return core.Book{
		ID:       GivenUniqueID(t),
		Title:    title,
		Quantity: quantity,
	}
}

// FixtureUser builds a user, not yet registered.
func FixtureUser(t testing.TB, nickname string) core.User {
	return core.User{
		ID:       GivenUniqueID(t),
		Nickname: nickname,
	}
}

// GivenBookWasRegistered registers a book with the given stock.
func GivenBookWasRegistered(t testing.TB, ctx context.Context, catalog store.Catalog, title string, quantity int) core.Book {
	book := FixtureBook(t, title, quantity)
	err := catalog.RegisterBook(ctx, book)
	require.NoError(t, err, "error in arranging test data")

	return book
}

// GivenUserWasRegistered registers a user.
func GivenUserWasRegistered(t testing.TB, ctx context.Context, catalog store.Catalog, nickname string) core.User {
	user := FixtureUser(t, nickname)
	err := catalog.RegisterUser(ctx, user)
	require.NoError(t, err, "error in arranging test data")

	return user
}

// GivenReservationWasSaved persists a reservation of the user for the book directly in the given status,
// with the book counters adjusted as if it had gone through the regular transitions.
func GivenReservationWasSaved(
	t testing.TB,
	ctx context.Context,
	s store.Store,
	userID core.UserID,
	bookID core.BookID,
	status core.Status,
	at time.Time,
) core.Reservation {

	book, err := s.FindBook(ctx, bookID)
	require.NoError(t, err, "error in arranging test data")

	r := core.BuildReservation(GivenUniqueID(t), userID, bookID, core.NextCreateDate(at, book.LastReservedAt), status)

	book.LastReservedAt = r.CreateDate
	book = book.CountReservation()

	if status.HoldsInventory() {
		book = book.TakeCopy()
	}

	switch status {
	case core.StatusPickedUp:
		r = r.PickUp(at)
	case core.StatusReturned:
		r = r.PickUp(at).Return(at)
	default:
	}

	r.Status = status

	err = s.Save(ctx, core.Changes{Book: book, Inserted: []core.Reservation{r}})
	require.NoError(t, err, "error in arranging test data")

	return r
}

// GivenStatusOf asserts the persisted status of a reservation.
func GivenStatusOf(t testing.TB, ctx context.Context, s store.Reservations, reservationID core.ReservationID) core.Status {
	r, err := s.FindReservation(ctx, reservationID)
	require.NoError(t, err, "error in reading back test data")

	return r.Status
}

// BookFromStore reads back the persisted book.
func BookFromStore(t testing.TB, ctx context.Context, catalog store.Catalog, bookID core.BookID) core.Book {
	book, err := catalog.FindBook(ctx, bookID)
	require.NoError(t, err, "error in reading back test data")

	return book
}
