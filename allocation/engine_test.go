package allocation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-reservations-go/allocation"
	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/shell"
	"github.com/AntonStoeckl/library-reservations-go/store"
	"github.com/AntonStoeckl/library-reservations-go/testutil/helper"
	"github.com/AntonStoeckl/library-reservations-go/testutil/helper/storewrapper"
	"github.com/AntonStoeckl/library-reservations-go/testutil/observability/testdoubles"
)

func newEngine(t *testing.T, s store.Store, opts ...allocation.Option) *allocation.Engine {
	t.Helper()

	opts = append([]allocation.Option{
		allocation.WithRetryOptions(shell.WithMaxAttempts(50), shell.WithBaseDelay(time.Millisecond)),
	}, opts...)

	engine, err := allocation.NewEngine(s, opts...)
	require.NoError(t, err)

	return engine
}

func Test_Engine_QueueIsServedInReservationOrder(t *testing.T) {
	// arrange
	ctx := context.Background()
	wrapper := storewrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	engine := newEngine(t, wrapper.GetStore())

	book, err := engine.RegisterBook(ctx, "Dune", 0)
	require.NoError(t, err)
	u1, err := engine.RegisterUser(ctx, "u1")
	require.NoError(t, err)
	u2, err := engine.RegisterUser(ctx, "u2")
	require.NoError(t, err)

	first, err := engine.Reserve(ctx, u1.ID, book.ID)
	require.NoError(t, err)
	second, err := engine.Reserve(ctx, u2.ID, book.ID)
	require.NoError(t, err)

	// act
	restock, err := engine.AddBookCopies(ctx, book.ID, 1)
	require.NoError(t, err)

	// assert
	assert.Equal(t, core.StatusQueuing, first.Status)
	assert.Equal(t, core.StatusQueuing, second.Status)
	require.NotNil(t, restock.Cascade)
	assert.Equal(t, first.ReservationID, restock.Cascade.ReservationID)

	queued, err := engine.GetAllReservations(ctx, store.OnlyStatus(core.StatusQueuing))
	require.NoError(t, err)
	require.Equal(t, 1, queued.Count)
	assert.Equal(t, second.ReservationID, queued.Reservations[0].ReservationID)

	persisted := helper.BookFromStore(t, ctx, wrapper.GetStore(), book.ID)
	assert.Equal(t, 0, persisted.Quantity)
	assert.Equal(t, 2, persisted.NumReservation)
}

func Test_Engine_AutoAssignNextUser_AfterTheShelfWasRefilled(t *testing.T) {
	// arrange
	ctx := context.Background()
	wrapper := storewrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	s := wrapper.GetStore()
	engine := newEngine(t, s)

	book, err := engine.RegisterBook(ctx, "Dune", 0)
	require.NoError(t, err)
	u1, err := engine.RegisterUser(ctx, "u1")
	require.NoError(t, err)
	u2, err := engine.RegisterUser(ctx, "u2")
	require.NoError(t, err)
	first, err := engine.Reserve(ctx, u1.ID, book.ID)
	require.NoError(t, err)
	second, err := engine.Reserve(ctx, u2.ID, book.ID)
	require.NoError(t, err)

	refilled := helper.BookFromStore(t, ctx, s, book.ID)
	refilled.Quantity = 1
	require.NoError(t, s.Save(ctx, core.Changes{Book: refilled}))

	// act
	outcome, err := engine.AutoAssignNextUser(ctx, book.ID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, first.ReservationID, outcome.ReservationID)
	assert.Equal(t, core.StatusAssigned.Code(), outcome.StatusCode())
	assert.Equal(t, core.StatusAssigned, helper.GivenStatusOf(t, ctx, s, first.ReservationID))
	assert.Equal(t, core.StatusQueuing, helper.GivenStatusOf(t, ctx, s, second.ReservationID))
	assert.Equal(t, 0, helper.BookFromStore(t, ctx, s, book.ID).Quantity)

	again, err := engine.AutoAssignNextUser(ctx, book.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, again.Err, core.ErrInsufficientStock)
	assert.Equal(t, core.NoStatusCode, again.StatusCode())
}

func Test_Engine_FullLifecycle_OfASingleCopy(t *testing.T) {
	// arrange
	ctx := context.Background()
	wrapper := storewrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	s := wrapper.GetStore()
	engine := newEngine(t, s)

	book, err := engine.RegisterBook(ctx, "Dune", 1)
	require.NoError(t, err)
	u1, err := engine.RegisterUser(ctx, "u1")
	require.NoError(t, err)

	// act
	reserved, reserveErr := engine.Reserve(ctx, u1.ID, book.ID)
	quantityAfterReserve := helper.BookFromStore(t, ctx, s, book.ID).Quantity
	pickedUp, pickUpErr := engine.PickUp(ctx, reserved.ReservationID)
	returned, returnErr := engine.ReturnBook(ctx, reserved.ReservationID)

	// assert
	require.NoError(t, reserveErr)
	require.NoError(t, pickUpErr)
	require.NoError(t, returnErr)
	assert.Equal(t, core.StatusAssigned, reserved.Status)
	assert.Equal(t, 0, quantityAfterReserve)
	assert.Equal(t, core.StatusPickedUp, pickedUp.Status)
	assert.Equal(t, core.StatusReturned, returned.Status)
	assert.Nil(t, returned.Cascade, "nobody was waiting")
	assert.Equal(t, 1, helper.BookFromStore(t, ctx, s, book.ID).Quantity)

	mine, err := engine.GetUserReservations(ctx, u1.ID)
	require.NoError(t, err)
	require.Equal(t, 1, mine.Count)
	assert.Equal(t, core.StatusReturned, mine.Reservations[0].Status)
	assert.Equal(t, "Dune", mine.Reservations[0].Title)
}

func Test_Engine_PickUpTwice_SucceedsOnce(t *testing.T) {
	// arrange
	ctx := context.Background()
	wrapper := storewrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	s := wrapper.GetStore()
	engine := newEngine(t, s)

	book, err := engine.RegisterBook(ctx, "Dune", 1)
	require.NoError(t, err)
	u1, err := engine.RegisterUser(ctx, "u1")
	require.NoError(t, err)
	reserved, err := engine.Reserve(ctx, u1.ID, book.ID)
	require.NoError(t, err)

	// act
	first, firstErr := engine.ApproveTakeBook(ctx, reserved.ReservationID)
	quantityAfterFirst := helper.BookFromStore(t, ctx, s, book.ID).Quantity
	second, secondErr := engine.PickUp(ctx, reserved.ReservationID)

	// assert
	require.NoError(t, firstErr)
	require.NoError(t, secondErr)
	assert.NoError(t, first.Err)
	assert.ErrorIs(t, second.Err, core.ErrInvalidState)
	assert.Equal(t, core.StatusPickedUp.Code(), second.StatusCode())
	assert.Equal(t, quantityAfterFirst, helper.BookFromStore(t, ctx, s, book.ID).Quantity)
}

func Test_Engine_ConcurrentReservations_NeverOverbook(t *testing.T) {
	const (
		copies   = 5
		requests = 20
	)

	// arrange
	ctx := context.Background()
	wrapper := storewrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	s := wrapper.GetStore()
	engine := newEngine(t, s)

	book, err := engine.RegisterBook(ctx, "Dune", copies)
	require.NoError(t, err)

	users := make([]core.User, requests)
	for i := range users {
		users[i], err = engine.RegisterUser(ctx, "reader")
		require.NoError(t, err)
	}

	// act
	outcomes := make([]core.Outcome, requests)
	errs := make([]error, requests)

	var wg sync.WaitGroup
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = engine.Reserve(ctx, users[i].ID, book.ID)
		}(i)
	}
	wg.Wait()

	// assert
	assigned, queuing := 0, 0
	for i := range outcomes {
		require.NoError(t, errs[i])
		switch outcomes[i].Status {
		case core.StatusAssigned:
			assigned++
		case core.StatusQueuing:
			queuing++
		default:
		}
	}

	assert.Equal(t, copies, assigned)
	assert.Equal(t, requests-copies, queuing)

	persisted := helper.BookFromStore(t, ctx, s, book.ID)
	assert.Equal(t, 0, persisted.Quantity)
	assert.Equal(t, requests, persisted.NumReservation)

	stored, err := engine.GetAllReservations(ctx, store.OnlyStatus(core.StatusAssigned))
	require.NoError(t, err)
	assert.Equal(t, copies, stored.Count)
}

func Test_Engine_CancelAssigned_NotifiesTheNextUser(t *testing.T) {
	// arrange
	ctx := context.Background()
	wrapper := storewrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	notifier := helper.NewNotifierSpy()
	engine := newEngine(t, wrapper.GetStore(), allocation.WithNotifier(notifier))

	book, err := engine.RegisterBook(ctx, "Dune", 1)
	require.NoError(t, err)
	u1, err := engine.RegisterUser(ctx, "u1")
	require.NoError(t, err)
	u2, err := engine.RegisterUser(ctx, "u2")
	require.NoError(t, err)
	assigned, err := engine.Reserve(ctx, u1.ID, book.ID)
	require.NoError(t, err)
	queued, err := engine.Reserve(ctx, u2.ID, book.ID)
	require.NoError(t, err)

	// act
	outcome, err := engine.Cancel(ctx, u1.ID, assigned.ReservationID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.StatusCancelled, outcome.Status)
	require.NotNil(t, outcome.Cascade)
	assert.Equal(t, queued.ReservationID, outcome.Cascade.ReservationID)

	assignments := notifier.Assignments()
	require.Len(t, assignments, 2, "the direct assignment and the cascade")
	assert.Equal(t, u1.ID, assignments[0].UserID)
	assert.Equal(t, u2.ID, assignments[1].UserID)
}

func Test_Engine_LogsAndMeasuresCommands(t *testing.T) {
	// arrange
	ctx := context.Background()
	wrapper := storewrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	logger := testdoubles.NewContextualLoggerSpy(true)
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	engine := newEngine(t, wrapper.GetStore(),
		allocation.WithContextualLogger(logger),
		allocation.WithMetrics(metrics),
		allocation.WithClock(func() time.Time { return helper.FakeClock }),
	)

	// act
	outcome, err := engine.Reserve(ctx, helper.GivenUniqueID(t), helper.GivenUniqueID(t))

	// assert
	require.NoError(t, err)
	assert.ErrorIs(t, outcome.Err, core.ErrNotFound)
	assert.True(t, logger.HasInfoLog(shell.LogMsgCommandStarted))
	assert.True(t, logger.HasLogWithAttribute("info", shell.LogMsgCommandCompleted, shell.LogAttrBusinessOutcome, shell.StatusRejected))
	assert.True(t, metrics.HasCounterRecordForMetric(shell.CommandHandlerRejectedMetric).Assert())
}

func Test_NewEngine_Errors(t *testing.T) {
	wrapper := storewrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	_, nilStoreErr := allocation.NewEngine(nil)
	_, nilClockErr := allocation.NewEngine(wrapper.GetStore(), allocation.WithClock(nil))
	_, nilIDErr := allocation.NewEngine(wrapper.GetStore(), allocation.WithIDGenerator(nil))

	assert.ErrorIs(t, nilStoreErr, shell.ErrNilStore)
	assert.ErrorIs(t, nilClockErr, allocation.ErrNilClock)
	assert.ErrorIs(t, nilIDErr, allocation.ErrNilIDGenerator)
}
