package allreservations_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/features/query/allreservations"
	"github.com/AntonStoeckl/library-reservations-go/shell/displaynames"
	"github.com/AntonStoeckl/library-reservations-go/testutil/helper"
)

func Test_Project_JoinsNames_AndDefaultsUnknownOnes(t *testing.T) {
	// arrange
	book := helper.FixtureBook(t, "Dune", 1)
	user := helper.FixtureUser(t, "alice")
	known := core.BuildReservation(helper.GivenUniqueID(t), user.ID, book.ID, helper.FakeClock, core.StatusAssigned)
	orphan := core.BuildReservation(helper.GivenUniqueID(t), helper.GivenUniqueID(t), helper.GivenUniqueID(t), helper.FakeClock.Add(time.Minute), core.StatusQueuing)
	names := displaynames.NewNames(
		map[core.BookID]string{book.ID: book.Title},
		map[core.UserID]string{user.ID: user.Nickname},
	)

	// act
	result := allreservations.Project([]core.Reservation{known, orphan}, names, allreservations.BuildQuery())

	// assert
	require.Equal(t, 2, result.Count)
	assert.Equal(t, known.ID, result.Reservations[0].ReservationID, "the store order is kept")
	assert.Equal(t, "Dune", result.Reservations[0].Title)
	assert.Equal(t, "alice", result.Reservations[0].Nickname)
	assert.Equal(t, "Unknown Book", result.Reservations[1].Title)
	assert.Equal(t, "Unknown User", result.Reservations[1].Nickname)
}

func Test_Project_AppliesTheStatusFilter(t *testing.T) {
	// arrange
	bookID := helper.GivenUniqueID(t)
	queued := core.BuildReservation(helper.GivenUniqueID(t), helper.GivenUniqueID(t), bookID, helper.FakeClock, core.StatusQueuing)
	assigned := core.BuildReservation(helper.GivenUniqueID(t), helper.GivenUniqueID(t), bookID, helper.FakeClock, core.StatusAssigned)

	// act
	result := allreservations.Project(
		[]core.Reservation{queued, assigned},
		displaynames.NewNames(nil, nil),
		allreservations.BuildQueryForStatus(core.StatusAssigned),
	)

	// assert
	require.Equal(t, 1, result.Len())
	assert.Equal(t, assigned.ID, result.Reservations[0].ReservationID)
}
