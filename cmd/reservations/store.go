package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntonStoeckl/library-reservations-go/allocation"
	"github.com/AntonStoeckl/library-reservations-go/shell/config"
	"github.com/AntonStoeckl/library-reservations-go/store"
	"github.com/AntonStoeckl/library-reservations-go/store/memoryengine"
	"github.com/AntonStoeckl/library-reservations-go/store/sqlengine"
)

type observabilityOptions struct {
	contextualLogger store.ContextualLogger
	metrics          store.MetricsCollector
	tracing          store.TracingCollector
}

func (o observabilityOptions) engineOptions() []allocation.Option {
	var opts []allocation.Option

	if o.contextualLogger != nil {
		opts = append(opts, allocation.WithContextualLogger(o.contextualLogger))
	}

	if o.metrics != nil {
		opts = append(opts, allocation.WithMetrics(o.metrics))
	}

	if o.tracing != nil {
		opts = append(opts, allocation.WithTracing(o.tracing))
	}

	return opts
}

func (o observabilityOptions) storeOptions(logger *slog.Logger) []sqlengine.Option {
	opts := []sqlengine.Option{sqlengine.WithLogger(logger)}

	if o.contextualLogger != nil {
		opts = append(opts, sqlengine.WithContextualLogger(o.contextualLogger))
	}

	if o.metrics != nil {
		opts = append(opts, sqlengine.WithMetrics(o.metrics))
	}

	if o.tracing != nil {
		opts = append(opts, sqlengine.WithTracing(o.tracing))
	}

	return opts
}

// openStore creates the store selected in cfg, migrates its schema and returns a function releasing its connections.
func openStore(
	ctx context.Context,
	cfg config.Config,
	logger *slog.Logger,
	observability observabilityOptions,
) (store.Store, func(), error) {
	noop := func() {}

	if cfg.StoreType == config.StoreTypeMemory {
		s, err := memoryengine.NewStore(memoryengine.WithLogger(logger))
		if err != nil {
			return nil, noop, err
		}

		logger.Info("using in-memory store")

		return s, noop, nil
	}

	s, closeFn, err := openSQLStore(ctx, cfg, observability.storeOptions(logger))
	if err != nil {
		return nil, noop, err
	}

	if err = s.Migrate(ctx); err != nil {
		closeFn()
		return nil, noop, err
	}

	logger.Info("using sql store", "store_type", cfg.StoreType)

	return s, closeFn, nil
}

func openSQLStore(ctx context.Context, cfg config.Config, opts []sqlengine.Option) (sqlengine.Store, func(), error) {
	switch cfg.StoreType {
	case config.StoreTypeSQLite:
		db, err := config.SQLiteDB(ctx, cfg.SQLitePath)
		if err != nil {
			return sqlengine.Store{}, nil, err
		}

		s, err := sqlengine.NewStoreFromSQLDB(db, append(opts, sqlengine.WithDialect(sqlengine.DialectSQLite))...)
		if err != nil {
			_ = db.Close()
			return sqlengine.Store{}, nil, err
		}

		return s, func() { _ = db.Close() }, nil

	case config.StoreTypePGXPool:
		return openPGXStore(ctx, cfg, opts)

	case config.StoreTypeSQLDB:
		db, err := config.PostgresSQLDB(ctx, cfg.PostgresDSN)
		if err != nil {
			return sqlengine.Store{}, nil, err
		}

		s, err := sqlengine.NewStoreFromSQLDB(db, opts...)
		if err != nil {
			_ = db.Close()
			return sqlengine.Store{}, nil, err
		}

		return s, func() { _ = db.Close() }, nil

	case config.StoreTypeSQLX:
		db, err := config.PostgresSQLX(ctx, cfg.PostgresDSN)
		if err != nil {
			return sqlengine.Store{}, nil, err
		}

		s, err := sqlengine.NewStoreFromSQLX(db, opts...)
		if err != nil {
			_ = db.Close()
			return sqlengine.Store{}, nil, err
		}

		return s, func() { _ = db.Close() }, nil

	default:
		return sqlengine.Store{}, nil, fmt.Errorf("%w: %q", config.ErrUnknownStoreType, cfg.StoreType)
	}
}

// openPGXStore uses the replica pool for eventually consistent reads when a replica dsn is configured.
func openPGXStore(ctx context.Context, cfg config.Config, opts []sqlengine.Option) (sqlengine.Store, func(), error) {
	primary, err := config.PostgresPGXPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return sqlengine.Store{}, nil, err
	}

	if cfg.PostgresReplicaDSN == "" {
		s, storeErr := sqlengine.NewStoreFromPGXPool(primary, opts...)
		if storeErr != nil {
			primary.Close()
			return sqlengine.Store{}, nil, storeErr
		}

		return s, primary.Close, nil
	}

	var replica *pgxpool.Pool

	replica, err = config.PostgresPGXPool(ctx, cfg.PostgresReplicaDSN)
	if err != nil {
		primary.Close()
		return sqlengine.Store{}, nil, err
	}

	closeFn := func() {
		replica.Close()
		primary.Close()
	}

	s, err := sqlengine.NewStoreFromPGXPoolAndReplica(primary, replica, opts...)
	if err != nil {
		closeFn()
		return sqlengine.Store{}, nil, err
	}

	return s, closeFn, nil
}
