package pickupbook_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/features/command/pickupbook"
	"github.com/AntonStoeckl/library-reservations-go/testutil/helper"
)

func givenReservation(t *testing.T, book core.Book, status core.Status) core.Reservation {
	t.Helper()

	return core.BuildReservation(helper.GivenUniqueID(t), helper.GivenUniqueID(t), book.ID, helper.FakeClock, status)
}

func Test_Decide_PicksUp_AnAssignedReservation(t *testing.T) {
	// arrange
	book := helper.FixtureBook(t, "Dune", 0)
	reservation := givenReservation(t, book, core.StatusAssigned)
	takenAt := helper.FakeClock.Add(time.Hour)
	command := pickupbook.BuildCommand(reservation.ID, takenAt)

	// act
	decision := pickupbook.Decide(pickupbook.State{ReservationExists: true, Reservation: reservation, Book: book}, command)

	// assert
	require.True(t, decision.HasChangesToSave())
	assert.Equal(t, core.StatusPickedUp, decision.Outcome.Status)
	assert.Equal(t, book, decision.Changes.Book, "the counters stay as they are")
	require.Len(t, decision.Changes.Transitions, 1)
	transition := decision.Changes.Transitions[0]
	assert.Equal(t, core.StatusAssigned, transition.From)
	assert.Equal(t, core.StatusPickedUp, transition.Reservation.Status)
	require.NotNil(t, transition.Reservation.TakeDate)
	assert.True(t, takenAt.Equal(*transition.Reservation.TakeDate))
	assert.Empty(t, decision.Changes.Assignments(takenAt))
}

func Test_Decide_Approval_HasItsOwnMessage(t *testing.T) {
	// arrange
	book := helper.FixtureBook(t, "Dune", 0)
	reservation := givenReservation(t, book, core.StatusAssigned)
	state := pickupbook.State{ReservationExists: true, Reservation: reservation, Book: book}

	// act
	pickedUp := pickupbook.Decide(state, pickupbook.BuildCommand(reservation.ID, helper.FakeClock))
	approved := pickupbook.Decide(state, pickupbook.BuildApprovalCommand(reservation.ID, helper.FakeClock))

	// assert
	assert.Equal(t, pickedUp.Outcome.Status, approved.Outcome.Status)
	assert.Equal(t, pickedUp.Changes.Transitions, approved.Changes.Transitions)
	assert.NotEqual(t, pickedUp.Outcome.Message, approved.Outcome.Message)
}

func Test_Decide_Rejects_UnlessAssigned(t *testing.T) {
	book := helper.FixtureBook(t, "Dune", 1)

	for _, status := range []core.Status{core.StatusQueuing, core.StatusPickedUp, core.StatusReturned, core.StatusCancelled} {
		t.Run(status.String(), func(t *testing.T) {
			// arrange
			reservation := givenReservation(t, book, status)

			// act
			decision := pickupbook.Decide(
				pickupbook.State{ReservationExists: true, Reservation: reservation, Book: book},
				pickupbook.BuildCommand(reservation.ID, helper.FakeClock),
			)

			// assert
			assert.False(t, decision.HasChangesToSave())
			assert.ErrorIs(t, decision.Outcome.Err, core.ErrInvalidState)
			assert.Equal(t, status.Code(), decision.Outcome.StatusCode(), "the current status is reported")
		})
	}
}

func Test_Decide_Rejects_UnknownReservation(t *testing.T) {
	// act
	decision := pickupbook.Decide(pickupbook.State{}, pickupbook.BuildCommand(helper.GivenUniqueID(t), helper.FakeClock))

	// assert
	assert.False(t, decision.HasChangesToSave())
	assert.ErrorIs(t, decision.Outcome.Err, core.ErrNotFound)
	assert.Equal(t, core.NoStatusCode, decision.Outcome.StatusCode())
}
