package addbookcopies_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/features/command/addbookcopies"
	"github.com/AntonStoeckl/library-reservations-go/testutil/helper"
	"github.com/AntonStoeckl/library-reservations-go/testutil/helper/storewrapper"
)

func Test_CommandHandler_Handle_RestockDrainsTheQueue(t *testing.T) {
	// arrange
	ctx := context.Background()
	wrapper := storewrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	s := wrapper.GetStore()
	notifier := helper.NewNotifierSpy()
	handler := addbookcopies.NewCommandHandler(s, addbookcopies.WithNotifier(notifier))

	book := helper.GivenBookWasRegistered(t, ctx, s, "Dune", 0)
	u1 := helper.GivenUserWasRegistered(t, ctx, s, "u1")
	u2 := helper.GivenUserWasRegistered(t, ctx, s, "u2")
	first := helper.GivenReservationWasSaved(t, ctx, s, u1.ID, book.ID, core.StatusQueuing, helper.FakeClock)
	second := helper.GivenReservationWasSaved(t, ctx, s, u2.ID, book.ID, core.StatusQueuing, helper.FakeClock)

	// act
	result, err := handler.Handle(ctx, addbookcopies.BuildCommand(book.ID, 3, helper.FakeClock))

	// assert
	require.NoError(t, err)
	assert.False(t, result.Rejected)
	assert.Equal(t, 2, result.Outcome.Promoted)
	assert.Equal(t, core.StatusAssigned, helper.GivenStatusOf(t, ctx, s, first.ID))
	assert.Equal(t, core.StatusAssigned, helper.GivenStatusOf(t, ctx, s, second.ID))
	assert.Equal(t, 1, helper.BookFromStore(t, ctx, s, book.ID).Quantity)
	assert.Len(t, notifier.Assignments(), 2)
	assert.Equal(t, 1, notifier.Calls(), "all assignments of one restock go out together")
}

func Test_CommandHandler_Handle_RejectsUnknownBook(t *testing.T) {
	// arrange
	ctx := context.Background()
	wrapper := storewrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	handler := addbookcopies.NewCommandHandler(wrapper.GetStore())

	// act
	result, err := handler.Handle(ctx, addbookcopies.BuildCommand(helper.GivenUniqueID(t), 1, helper.FakeClock))

	// assert
	require.NoError(t, err)
	assert.True(t, result.Rejected)
	assert.ErrorIs(t, result.Outcome.Err, core.ErrNotFound)
}
