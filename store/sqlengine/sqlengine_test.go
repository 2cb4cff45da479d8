package sqlengine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/store"
	"github.com/AntonStoeckl/library-reservations-go/store/sqlengine"
	"github.com/AntonStoeckl/library-reservations-go/store/storetest"
	"github.com/AntonStoeckl/library-reservations-go/testutil/helper"
	"github.com/AntonStoeckl/library-reservations-go/testutil/helper/storewrapper"
)

func Test_SQLStore_SQLite_Contract(t *testing.T) {
	storetest.RunContract(t, func(t *testing.T) store.Store {
		wrapper := storewrapper.CreateSQLiteWrapper(t)
		t.Cleanup(wrapper.Close)

		return wrapper.GetStore()
	})
}

func Test_SQLStore_Postgres_Contract(t *testing.T) {
	if !storewrapper.IsPostgres() {
		t.Skip("STORE_TYPE does not select a Postgres store")
	}

	storetest.RunContract(t, func(t *testing.T) store.Store {
		wrapper := storewrapper.CreateWrapperWithTestConfig(t)
		t.Cleanup(wrapper.Close)

		return wrapper.GetStore()
	})
}

func Test_NewStore_RejectsNilConnections(t *testing.T) {
	_, pgxErr := sqlengine.NewStoreFromPGXPool(nil)
	_, sqlErr := sqlengine.NewStoreFromSQLDB(nil)
	_, sqlxErr := sqlengine.NewStoreFromSQLX(nil)
	_, replicaErr := sqlengine.NewStoreFromSQLDBAndReplica(nil, nil)

	assert.ErrorIs(t, pgxErr, store.ErrNilDatabaseConnection)
	assert.ErrorIs(t, sqlErr, store.ErrNilDatabaseConnection)
	assert.ErrorIs(t, sqlxErr, store.ErrNilDatabaseConnection)
	assert.ErrorIs(t, replicaErr, store.ErrNilDatabaseConnection)
}

func Test_WithDialect_RejectsUnknownDialects(t *testing.T) {
	// act
	err := sqlengine.WithDialect("mysql")(&sqlengine.Store{})

	// assert
	assert.ErrorIs(t, err, store.ErrUnsupportedDialect)
}

func Test_Migrate_IsIdempotent(t *testing.T) {
	// arrange
	wrapper := storewrapper.CreateSQLiteWrapper(t)
	defer wrapper.Close()

	// act
	err := wrapper.GetSQLStore().Migrate(context.Background())

	// assert
	assert.NoError(t, err)
}

func Test_Purge_DeletesAllRows(t *testing.T) {
	// arrange
	ctx := context.Background()
	wrapper := storewrapper.CreateSQLiteWrapper(t)
	defer wrapper.Close()
	s := wrapper.GetSQLStore()
	book := helper.GivenBookWasRegistered(t, ctx, s, "Dune", 1)
	user := helper.GivenUserWasRegistered(t, ctx, s, "alice")
	reservation := helper.GivenReservationWasSaved(t, ctx, s, user.ID, book.ID, core.StatusAssigned, helper.FakeClock)

	// act
	err := s.Purge(ctx)

	// assert
	require.NoError(t, err)

	_, bookErr := s.FindBook(ctx, book.ID)
	_, userErr := s.FindUser(ctx, user.ID)
	_, reservationErr := s.FindReservation(ctx, reservation.ID)
	assert.ErrorIs(t, bookErr, store.ErrNotFound)
	assert.ErrorIs(t, userErr, store.ErrNotFound)
	assert.ErrorIs(t, reservationErr, store.ErrNotFound)
}

func Test_TablePrefix_SeparatesStoresOnOneDatabase(t *testing.T) {
	// arrange
	ctx := context.Background()
	wrapper := storewrapper.CreateSQLiteWrapper(t, sqlengine.WithTablePrefix("tenant_a_"))
	defer wrapper.Close()
	book := helper.GivenBookWasRegistered(t, ctx, wrapper.GetStore(), "Dune", 1)

	// act
	found, err := wrapper.GetStore().FindBook(ctx, book.ID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "Dune", found.Title)
}
