package allreservations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/features/query/allreservations"
	"github.com/AntonStoeckl/library-reservations-go/shell/displaynames"
	"github.com/AntonStoeckl/library-reservations-go/testutil/helper"
	"github.com/AntonStoeckl/library-reservations-go/testutil/helper/storewrapper"
)

func Test_QueryHandler_Handle_ListsOldestFirst_WithNames(t *testing.T) {
	// arrange
	ctx := context.Background()
	wrapper := storewrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	s := wrapper.GetStore()
	resolver, err := displaynames.NewResolver(s)
	require.NoError(t, err)
	handler := allreservations.NewQueryHandler(s, resolver)

	book := helper.GivenBookWasRegistered(t, ctx, s, "Dune", 1)
	alice := helper.GivenUserWasRegistered(t, ctx, s, "alice")
	bob := helper.GivenUserWasRegistered(t, ctx, s, "bob")
	first := helper.GivenReservationWasSaved(t, ctx, s, alice.ID, book.ID, core.StatusAssigned, helper.FakeClock)
	second := helper.GivenReservationWasSaved(t, ctx, s, bob.ID, book.ID, core.StatusQueuing, helper.FakeClock)

	// act
	all, allErr := handler.Handle(ctx, allreservations.BuildQuery())
	queued, queuedErr := handler.Handle(ctx, allreservations.BuildQueryForStatus(core.StatusQueuing))

	// assert
	require.NoError(t, allErr)
	require.NoError(t, queuedErr)
	require.Equal(t, 2, all.Count)
	assert.Equal(t, first.ID, all.Reservations[0].ReservationID)
	assert.Equal(t, second.ID, all.Reservations[1].ReservationID)
	assert.Equal(t, "alice", all.Reservations[0].Nickname)
	assert.Equal(t, "Dune", all.Reservations[1].Title)
	require.Equal(t, 1, queued.Count)
	assert.Equal(t, second.ID, queued.Reservations[0].ReservationID)
}

func Test_QueryHandler_Handle_EmptyStore(t *testing.T) {
	// arrange
	wrapper := storewrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	resolver, err := displaynames.NewResolver(wrapper.GetStore())
	require.NoError(t, err)
	handler := allreservations.NewQueryHandler(wrapper.GetStore(), resolver)

	// act
	result, err := handler.Handle(context.Background(), allreservations.BuildQuery())

	// assert
	require.NoError(t, err)
	assert.Zero(t, result.Count)
	assert.Empty(t, result.Reservations)
}
