package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-reservations-go/allocation"
	"github.com/AntonStoeckl/library-reservations-go/shell/config"
	"github.com/AntonStoeckl/library-reservations-go/store"
)

func Test_openStore_Memory(t *testing.T) {
	// arrange
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{StoreType: config.StoreTypeMemory}

	// act
	s, closeStore, err := openStore(context.Background(), cfg, logger, observabilityOptions{})

	// assert
	require.NoError(t, err)
	defer closeStore()
	assert.NotNil(t, s)
}

func Test_openStore_SQLiteIsMigratedAndSeedable(t *testing.T) {
	// arrange
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{StoreType: config.StoreTypeSQLite, SQLitePath: config.InMemorySQLitePath}

	s, closeStore, err := openStore(ctx, cfg, logger, observabilityOptions{})
	require.NoError(t, err)
	defer closeStore()

	engine, err := allocation.NewEngine(s)
	require.NoError(t, err)

	// act
	err = seedCatalog(ctx, engine, logger)

	// assert
	require.NoError(t, err)

	all, err := engine.GetAllReservations(ctx, store.AnyStatus())
	require.NoError(t, err)
	assert.Equal(t, 0, all.Count)
}

func Test_openStore_UnknownStoreType(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{StoreType: "cassandra"}

	_, _, err := openStore(context.Background(), cfg, logger, observabilityOptions{})

	assert.ErrorIs(t, err, config.ErrUnknownStoreType)
}
