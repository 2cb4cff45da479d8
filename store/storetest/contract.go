package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/store"
	"github.com/AntonStoeckl/library-reservations-go/testutil/helper"
)

// Factory returns a fresh, empty store. Cleanup must be registered with t.Cleanup.
type Factory func(t *testing.T) store.Store

// RunContract runs the full store contract against the stores the factory returns.
func RunContract(t *testing.T, newStore Factory) {
	t.Run("registered book can be found", func(t *testing.T) { registeredBookCanBeFound(t, newStore(t)) })
	t.Run("registered user can be found", func(t *testing.T) { registeredUserCanBeFound(t, newStore(t)) })
	t.Run("unknown records are not found", func(t *testing.T) { unknownRecordsAreNotFound(t, newStore(t)) })
	t.Run("registering twice fails", func(t *testing.T) { registeringTwiceFails(t, newStore(t)) })
	t.Run("save increments the book version", func(t *testing.T) { saveIncrementsTheBookVersion(t, newStore(t)) })
	t.Run("save with stale version is a conflict", func(t *testing.T) { saveWithStaleVersionIsAConflict(t, newStore(t)) })
	t.Run("transition from stale status is a conflict", func(t *testing.T) { transitionFromStaleStatusIsAConflict(t, newStore(t)) })
	t.Run("transition keeps the dates", func(t *testing.T) { transitionKeepsTheDates(t, newStore(t)) })
	t.Run("query by book and status is oldest first", func(t *testing.T) { queryByBookAndStatusIsOldestFirst(t, newStore(t)) })
	t.Run("query by status filters exactly", func(t *testing.T) { queryByStatusFiltersExactly(t, newStore(t)) })
	t.Run("query by user is newest first", func(t *testing.T) { queryByUserIsNewestFirst(t, newStore(t)) })
}

func registeredBookCanBeFound(t *testing.T, s store.Store) {
	// arrange
	ctx := context.Background()
	book := helper.GivenBookWasRegistered(t, ctx, s, "Dune", 3)

	// act
	found, err := s.FindBook(ctx, book.ID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, book.ID, found.ID)
	assert.Equal(t, "Dune", found.Title)
	assert.Equal(t, 3, found.Quantity)
	assert.Equal(t, 0, found.NumReservation)
	assert.Equal(t, uint(0), found.Version)
	assert.True(t, found.LastReservedAt.IsZero())
}

func registeredUserCanBeFound(t *testing.T, s store.Store) {
	// arrange
	ctx := context.Background()
	user := helper.GivenUserWasRegistered(t, ctx, s, "alice")

	// act
	found, err := s.FindUser(ctx, user.ID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, user, found)
}

func unknownRecordsAreNotFound(t *testing.T, s store.Store) {
	// arrange
	ctx := context.Background()
	unknown := helper.GivenUniqueID(t)

	// act
	_, bookErr := s.FindBook(ctx, unknown)
	_, userErr := s.FindUser(ctx, unknown)
	_, reservationErr := s.FindReservation(ctx, unknown)

	// assert
	assert.ErrorIs(t, bookErr, store.ErrNotFound)
	assert.ErrorIs(t, userErr, store.ErrNotFound)
	assert.ErrorIs(t, reservationErr, store.ErrNotFound)
}

func registeringTwiceFails(t *testing.T, s store.Store) {
	// arrange
	ctx := context.Background()
	book := helper.GivenBookWasRegistered(t, ctx, s, "Dune", 1)
	user := helper.GivenUserWasRegistered(t, ctx, s, "alice")

	// act
	bookErr := s.RegisterBook(ctx, book)
	userErr := s.RegisterUser(ctx, user)

	// assert
	assert.ErrorIs(t, bookErr, store.ErrAlreadyExists)
	assert.ErrorIs(t, userErr, store.ErrAlreadyExists)
}

func saveIncrementsTheBookVersion(t *testing.T, s store.Store) {
	// arrange
	ctx := context.Background()
	book := helper.GivenBookWasRegistered(t, ctx, s, "Dune", 2)
	user := helper.GivenUserWasRegistered(t, ctx, s, "alice")
	createDate := core.NextCreateDate(helper.FakeClock, book.LastReservedAt)
	reservation := core.BuildReservation(helper.GivenUniqueID(t), user.ID, book.ID, createDate, core.StatusAssigned)
	book.LastReservedAt = createDate
	book = book.CountReservation().TakeCopy()

	// act
	err := s.Save(ctx, core.Changes{Book: book, Inserted: []core.Reservation{reservation}})

	// assert
	require.NoError(t, err)

	persisted := helper.BookFromStore(t, ctx, s, book.ID)
	assert.Equal(t, uint(1), persisted.Version)
	assert.Equal(t, 1, persisted.Quantity)
	assert.Equal(t, 1, persisted.NumReservation)
	assert.True(t, createDate.Equal(persisted.LastReservedAt))

	found, findErr := s.FindReservation(ctx, reservation.ID)
	require.NoError(t, findErr)
	assert.Equal(t, core.StatusAssigned, found.Status)
	assert.True(t, createDate.Equal(found.CreateDate))
	assert.Nil(t, found.TakeDate)
	assert.Nil(t, found.ReturnDate)
}

func saveWithStaleVersionIsAConflict(t *testing.T, s store.Store) {
	// arrange
	ctx := context.Background()
	book := helper.GivenBookWasRegistered(t, ctx, s, "Dune", 2)
	user := helper.GivenUserWasRegistered(t, ctx, s, "alice")
	helper.GivenReservationWasSaved(t, ctx, s, user.ID, book.ID, core.StatusAssigned, helper.FakeClock)
	stale := book // still at version 0
	inserted := core.BuildReservation(helper.GivenUniqueID(t), user.ID, book.ID, helper.FakeClock.Add(time.Hour), core.StatusAssigned)

	// act
	err := s.Save(ctx, core.Changes{Book: stale.TakeCopy(), Inserted: []core.Reservation{inserted}})

	// assert
	assert.ErrorIs(t, err, store.ErrConcurrencyConflict)

	_, findErr := s.FindReservation(ctx, inserted.ID)
	assert.ErrorIs(t, findErr, store.ErrNotFound, "nothing of a conflicting save may be persisted")

	persisted := helper.BookFromStore(t, ctx, s, book.ID)
	assert.Equal(t, uint(1), persisted.Version)
	assert.Equal(t, 1, persisted.Quantity)
}

func transitionFromStaleStatusIsAConflict(t *testing.T, s store.Store) {
	// arrange
	ctx := context.Background()
	book := helper.GivenBookWasRegistered(t, ctx, s, "Dune", 1)
	user := helper.GivenUserWasRegistered(t, ctx, s, "alice")
	reservation := helper.GivenReservationWasSaved(t, ctx, s, user.ID, book.ID, core.StatusAssigned, helper.FakeClock)
	current := helper.BookFromStore(t, ctx, s, book.ID)

	// act
	err := s.Save(ctx, core.Changes{
		Book:        current.PutBackCopy(),
		Transitions: []core.Transition{{Reservation: reservation.Cancel(), From: core.StatusQueuing}},
	})

	// assert
	assert.ErrorIs(t, err, store.ErrConcurrencyConflict)
	assert.Equal(t, core.StatusAssigned, helper.GivenStatusOf(t, ctx, s, reservation.ID))

	persisted := helper.BookFromStore(t, ctx, s, book.ID)
	assert.Equal(t, current.Version, persisted.Version, "a rolled back save must not move the version")
	assert.Equal(t, 0, persisted.Quantity)
}

func transitionKeepsTheDates(t *testing.T, s store.Store) {
	// arrange
	ctx := context.Background()
	book := helper.GivenBookWasRegistered(t, ctx, s, "Dune", 1)
	user := helper.GivenUserWasRegistered(t, ctx, s, "alice")
	reservation := helper.GivenReservationWasSaved(t, ctx, s, user.ID, book.ID, core.StatusAssigned, helper.FakeClock)
	current := helper.BookFromStore(t, ctx, s, book.ID)
	takeAt := helper.FakeClock.Add(90 * time.Minute)

	// act
	err := s.Save(ctx, core.Changes{
		Book:        current,
		Transitions: []core.Transition{{Reservation: reservation.PickUp(takeAt), From: core.StatusAssigned}},
	})

	// assert
	require.NoError(t, err)

	found, findErr := s.FindReservation(ctx, reservation.ID)
	require.NoError(t, findErr)
	assert.Equal(t, core.StatusPickedUp, found.Status)
	require.NotNil(t, found.TakeDate)
	assert.True(t, takeAt.Equal(*found.TakeDate))
	assert.Nil(t, found.ReturnDate)
	assert.True(t, reservation.CreateDate.Equal(found.CreateDate))
}

func queryByBookAndStatusIsOldestFirst(t *testing.T, s store.Store) {
	// arrange
	ctx := context.Background()
	book := helper.GivenBookWasRegistered(t, ctx, s, "Dune", 0)
	other := helper.GivenBookWasRegistered(t, ctx, s, "Emma", 0)
	alice := helper.GivenUserWasRegistered(t, ctx, s, "alice")
	bob := helper.GivenUserWasRegistered(t, ctx, s, "bob")
	first := helper.GivenReservationWasSaved(t, ctx, s, alice.ID, book.ID, core.StatusQueuing, helper.FakeClock)
	second := helper.GivenReservationWasSaved(t, ctx, s, bob.ID, book.ID, core.StatusQueuing, helper.FakeClock)
	helper.GivenReservationWasSaved(t, ctx, s, bob.ID, other.ID, core.StatusQueuing, helper.FakeClock)
	helper.GivenReservationWasSaved(t, ctx, s, alice.ID, book.ID, core.StatusCancelled, helper.FakeClock)

	// act
	queue, err := s.QueryByBookAndStatus(ctx, book.ID, core.StatusQueuing)

	// assert
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, first.ID, queue[0].ID)
	assert.Equal(t, second.ID, queue[1].ID)
	assert.True(t, queue[0].CreateDate.Before(queue[1].CreateDate))
}

func queryByStatusFiltersExactly(t *testing.T, s store.Store) {
	// arrange
	ctx := context.Background()
	book := helper.GivenBookWasRegistered(t, ctx, s, "Dune", 1)
	alice := helper.GivenUserWasRegistered(t, ctx, s, "alice")
	assigned := helper.GivenReservationWasSaved(t, ctx, s, alice.ID, book.ID, core.StatusAssigned, helper.FakeClock)
	queued := helper.GivenReservationWasSaved(t, ctx, s, alice.ID, book.ID, core.StatusQueuing, helper.FakeClock)
	returned := helper.GivenReservationWasSaved(t, ctx, s, alice.ID, book.ID, core.StatusReturned, helper.FakeClock)

	// act
	all, allErr := s.QueryByStatus(ctx, store.AnyStatus())
	onlyQueued, queuedErr := s.QueryByStatus(ctx, store.OnlyStatus(core.StatusQueuing))
	onlyPickedUp, pickedUpErr := s.QueryByStatus(ctx, store.OnlyStatus(core.StatusPickedUp))

	// assert
	require.NoError(t, allErr)
	require.NoError(t, queuedErr)
	require.NoError(t, pickedUpErr)

	require.Len(t, all, 3)
	assert.Equal(t, assigned.ID, all[0].ID)
	assert.Equal(t, queued.ID, all[1].ID)
	assert.Equal(t, returned.ID, all[2].ID)

	require.Len(t, onlyQueued, 1)
	assert.Equal(t, queued.ID, onlyQueued[0].ID)

	assert.Empty(t, onlyPickedUp)
}

func queryByUserIsNewestFirst(t *testing.T, s store.Store) {
	// arrange
	ctx := context.Background()
	book := helper.GivenBookWasRegistered(t, ctx, s, "Dune", 0)
	alice := helper.GivenUserWasRegistered(t, ctx, s, "alice")
	bob := helper.GivenUserWasRegistered(t, ctx, s, "bob")
	older := helper.GivenReservationWasSaved(t, ctx, s, alice.ID, book.ID, core.StatusQueuing, helper.FakeClock)
	helper.GivenReservationWasSaved(t, ctx, s, bob.ID, book.ID, core.StatusQueuing, helper.FakeClock)
	newer := helper.GivenReservationWasSaved(t, ctx, s, alice.ID, book.ID, core.StatusCancelled, helper.FakeClock.Add(time.Hour))

	// act
	reservations, err := s.QueryByUser(ctx, alice.ID)

	// assert
	require.NoError(t, err)
	require.Len(t, reservations, 2)
	assert.Equal(t, newer.ID, reservations[0].ID)
	assert.Equal(t, older.ID, reservations[1].ID)
}
