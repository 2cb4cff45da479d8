package addbookcopies_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/features/command/addbookcopies"
	"github.com/AntonStoeckl/library-reservations-go/testutil/helper"
)

func givenQueue(t *testing.T, book core.Book, n int) []core.Reservation {
	t.Helper()

	queue := make([]core.Reservation, 0, n)
	for i := range n {
		createdAt := helper.FakeClock.Add(time.Duration(i) * time.Minute)
		queue = append(queue, core.BuildReservation(helper.GivenUniqueID(t), helper.GivenUniqueID(t), book.ID, createdAt, core.StatusQueuing))
	}

	return queue
}

func Test_Decide_PromotesWhileCopiesAreLeft(t *testing.T) {
	// arrange
	book := helper.FixtureBook(t, "Dune", 0)
	queue := givenQueue(t, book, 3)

	// act
	decision := addbookcopies.Decide(
		addbookcopies.State{BookExists: true, Book: book, Queue: queue},
		addbookcopies.BuildCommand(book.ID, 2, helper.FakeClock),
	)

	// assert
	require.True(t, decision.HasChangesToSave())
	assert.Equal(t, 2, decision.Outcome.Promoted)
	assert.Equal(t, core.StatusAssigned, decision.Outcome.Status)
	require.NotNil(t, decision.Outcome.Cascade)
	assert.Equal(t, queue[0].ID, decision.Outcome.Cascade.ReservationID)
	assert.Equal(t, 0, decision.Changes.Book.Quantity)
	require.Len(t, decision.Changes.Transitions, 2)
	assert.Equal(t, queue[0].ID, decision.Changes.Transitions[0].Reservation.ID)
	assert.Equal(t, queue[1].ID, decision.Changes.Transitions[1].Reservation.ID)
}

func Test_Decide_KeepsSurplusCopiesOnTheShelf(t *testing.T) {
	// arrange
	book := helper.FixtureBook(t, "Dune", 1)
	queue := givenQueue(t, book, 1)

	// act
	decision := addbookcopies.Decide(
		addbookcopies.State{BookExists: true, Book: book, Queue: queue},
		addbookcopies.BuildCommand(book.ID, 3, helper.FakeClock),
	)

	// assert
	assert.Equal(t, 1, decision.Outcome.Promoted)
	assert.Equal(t, 3, decision.Changes.Book.Quantity)
}

func Test_Decide_WithoutQueue_OnlyRestocks(t *testing.T) {
	// arrange
	book := helper.FixtureBook(t, "Dune", 0)

	// act
	decision := addbookcopies.Decide(
		addbookcopies.State{BookExists: true, Book: book},
		addbookcopies.BuildCommand(book.ID, 2, helper.FakeClock),
	)

	// assert
	require.True(t, decision.HasChangesToSave())
	assert.NoError(t, decision.Outcome.Err)
	assert.Zero(t, decision.Outcome.Promoted)
	assert.Nil(t, decision.Outcome.Cascade)
	assert.Equal(t, core.StatusQueuing, decision.Outcome.Status)
	assert.Equal(t, 2, decision.Changes.Book.Quantity)
	assert.Empty(t, decision.Changes.Transitions)
}

func Test_Decide_Rejects(t *testing.T) {
	book := helper.FixtureBook(t, "Dune", 0)

	testCases := []struct {
		name        string
		state       addbookcopies.State
		count       int
		expectedErr error
	}{
		{name: "zero copies", state: addbookcopies.State{BookExists: true, Book: book}, count: 0, expectedErr: core.ErrInvalidCopyCount},
		{name: "negative copies", state: addbookcopies.State{BookExists: true, Book: book}, count: -1, expectedErr: core.ErrInvalidCopyCount},
		{name: "unknown book", state: addbookcopies.State{}, count: 1, expectedErr: core.ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			decision := addbookcopies.Decide(tc.state, addbookcopies.BuildCommand(book.ID, tc.count, helper.FakeClock))

			// assert
			assert.False(t, decision.HasChangesToSave())
			assert.ErrorIs(t, decision.Outcome.Err, tc.expectedErr)
		})
	}
}
