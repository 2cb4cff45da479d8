package reservebook_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/features/command/reservebook"
	"github.com/AntonStoeckl/library-reservations-go/shell"
	"github.com/AntonStoeckl/library-reservations-go/store"
	"github.com/AntonStoeckl/library-reservations-go/testutil/helper"
	"github.com/AntonStoeckl/library-reservations-go/testutil/helper/storewrapper"
)

func Test_CommandHandler_Handle_AssignsThenQueues(t *testing.T) {
	// arrange
	ctx := context.Background()
	wrapper := storewrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	s := wrapper.GetStore()
	notifier := helper.NewNotifierSpy()
	handler := reservebook.NewCommandHandler(s, reservebook.WithNotifier(notifier))

	book := helper.GivenBookWasRegistered(t, ctx, s, "Dune", 1)
	alice := helper.GivenUserWasRegistered(t, ctx, s, "alice")
	bob := helper.GivenUserWasRegistered(t, ctx, s, "bob")

	// act
	first, firstErr := handler.Handle(ctx, reservebook.BuildCommand(helper.GivenUniqueID(t), alice.ID, book.ID, helper.FakeClock))
	second, secondErr := handler.Handle(ctx, reservebook.BuildCommand(helper.GivenUniqueID(t), bob.ID, book.ID, helper.FakeClock))

	// assert
	require.NoError(t, firstErr)
	require.NoError(t, secondErr)
	assert.False(t, first.Rejected)
	assert.Equal(t, core.StatusAssigned, first.Outcome.Status)
	assert.Equal(t, core.StatusQueuing, second.Outcome.Status)
	assert.Equal(t, 1, first.RetryAttempts)

	persisted := helper.BookFromStore(t, ctx, s, book.ID)
	assert.Equal(t, 0, persisted.Quantity)
	assert.Equal(t, 2, persisted.NumReservation)
	assert.Equal(t, core.StatusQueuing, helper.GivenStatusOf(t, ctx, s, second.Outcome.ReservationID))

	assignments := notifier.Assignments()
	require.Len(t, assignments, 1, "only the assigned reservation is notified")
	assert.Equal(t, first.Outcome.ReservationID, assignments[0].ReservationID)
	assert.Equal(t, alice.ID, assignments[0].UserID)
}

func Test_CommandHandler_Handle_RejectsUnknownUser_WithoutSaving(t *testing.T) {
	// arrange
	ctx := context.Background()
	wrapper := storewrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	s := wrapper.GetStore()
	handler := reservebook.NewCommandHandler(s)
	book := helper.GivenBookWasRegistered(t, ctx, s, "Dune", 1)
	command := reservebook.BuildCommand(helper.GivenUniqueID(t), helper.GivenUniqueID(t), book.ID, helper.FakeClock)

	// act
	result, err := handler.Handle(ctx, command)

	// assert
	require.NoError(t, err, "a rejection is not an error")
	assert.True(t, result.Rejected)
	assert.ErrorIs(t, result.Outcome.Err, core.ErrNotFound)
	assert.Equal(t, core.NoStatusCode, result.Outcome.StatusCode())

	persisted := helper.BookFromStore(t, ctx, s, book.ID)
	assert.Equal(t, uint(0), persisted.Version)
	_, findErr := s.FindReservation(ctx, command.ReservationID)
	assert.ErrorIs(t, findErr, store.ErrNotFound)
}

func Test_CommandHandler_Handle_ReportsFailedNotification(t *testing.T) {
	// arrange
	ctx := context.Background()
	wrapper := storewrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	s := wrapper.GetStore()
	notifier := helper.NewNotifierSpy()
	notifier.Err = errors.New("broker unreachable")
	handler := reservebook.NewCommandHandler(s, reservebook.WithNotifier(notifier))
	book := helper.GivenBookWasRegistered(t, ctx, s, "Dune", 1)
	alice := helper.GivenUserWasRegistered(t, ctx, s, "alice")
	command := reservebook.BuildCommand(helper.GivenUniqueID(t), alice.ID, book.ID, helper.FakeClock)

	// act
	result, err := handler.Handle(ctx, command)

	// assert
	require.NoError(t, err)
	assert.ErrorIs(t, result.NotificationErr, shell.ErrNotificationFailed)
	assert.Equal(t, core.StatusAssigned, helper.GivenStatusOf(t, ctx, s, command.ReservationID), "the saved changes stay")
}

func Test_CommandHandler_Handle_RetriesOnConcurrencyConflict(t *testing.T) {
	// arrange
	ctx := context.Background()
	wrapper := storewrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	s := wrapper.GetStore()
	book := helper.GivenBookWasRegistered(t, ctx, s, "Dune", 1)
	alice := helper.GivenUserWasRegistered(t, ctx, s, "alice")
	racing := &storeWithRacingWriter{Store: s, race: func() {
		helper.GivenReservationWasSaved(t, ctx, s, alice.ID, book.ID, core.StatusAssigned, helper.FakeClock)
	}}
	handler := reservebook.NewCommandHandler(racing, reservebook.WithRetryOptions(shell.WithBaseDelay(time.Millisecond)))

	// act
	result, err := handler.Handle(ctx, reservebook.BuildCommand(helper.GivenUniqueID(t), alice.ID, book.ID, helper.FakeClock))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.RetryAttempts)
	assert.Equal(t, core.StatusQueuing, result.Outcome.Status, "the copy went to the racing writer")

	persisted := helper.BookFromStore(t, ctx, s, book.ID)
	assert.Equal(t, 0, persisted.Quantity)
	assert.Equal(t, 2, persisted.NumReservation)
}

// storeWithRacingWriter lets another writer save changes of the same book right before the first save.
type storeWithRacingWriter struct {
	store.Store
	race  func()
	raced bool
}

func (s *storeWithRacingWriter) Save(ctx context.Context, changes core.Changes) error {
	if !s.raced {
		s.raced = true
		s.race()
	}

	return s.Store.Save(ctx, changes)
}
