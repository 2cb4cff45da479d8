package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store types selectable with RESERVATIONS_STORE.
const (
	StoreTypeMemory  = "memory"
	StoreTypeSQLite  = "sqlite"
	StoreTypePGXPool = "pgx.pool"
	StoreTypeSQLDB   = "sql.db"
	StoreTypeSQLX    = "sqlx.db"
)

const (
	envHTTPAddr           = "RESERVATIONS_HTTP_ADDR"
	envStore              = "RESERVATIONS_STORE"
	envPostgresDSN        = "RESERVATIONS_POSTGRES_DSN"
	envPostgresReplicaDSN = "RESERVATIONS_POSTGRES_REPLICA_DSN"
	envSQLitePath         = "RESERVATIONS_SQLITE_PATH"
	envRabbitURL          = "RESERVATIONS_RABBIT_URL"
	envRabbitExchange     = "RESERVATIONS_RABBIT_EXCHANGE"
	envOTELEnabled        = "RESERVATIONS_OTEL_ENABLED"
	envOTLPEndpoint       = "RESERVATIONS_OTLP_ENDPOINT"
	envLogLevel           = "RESERVATIONS_LOG_LEVEL"
	envSeed               = "RESERVATIONS_SEED"
	envShutdownGrace      = "RESERVATIONS_SHUTDOWN_GRACE"

	defaultHTTPAddr       = ":8080"
	defaultSQLitePath     = "reservations.db"
	defaultRabbitExchange = "library.reservations"
	defaultOTLPEndpoint   = "localhost:4317"
	defaultShutdownGrace  = 10 * time.Second
)

var (
	// ErrUnknownStoreType is returned for RESERVATIONS_STORE values other than the known store types.
	ErrUnknownStoreType = errors.New("unknown store type")

	// ErrMissingPostgresDSN is returned when a Postgres store is selected without a DSN.
	ErrMissingPostgresDSN = errors.New("postgres store selected but no dsn configured")

	// ErrInvalidValue is returned when an environment variable can not be parsed.
	ErrInvalidValue = errors.New("invalid configuration value")
)

// Config is the complete service configuration.
type Config struct {
	HTTPAddr           string
	StoreType          string
	PostgresDSN        string
	PostgresReplicaDSN string
	SQLitePath         string
	RabbitURL          string
	RabbitExchange     string
	OTELEnabled        bool
	OTLPEndpoint       string
	LogLevel           slog.Level
	Seed               bool
	ShutdownGrace      time.Duration
}

// Load reads the configuration from the environment, after loading the given .env files.
// Without arguments, a .env file in the working directory is used if it exists.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, errors.Join(ErrInvalidValue, err)
	}

	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr:           getenv(envHTTPAddr, defaultHTTPAddr),
		StoreType:          strings.ToLower(getenv(envStore, StoreTypeMemory)),
		PostgresDSN:        os.Getenv(envPostgresDSN),
		PostgresReplicaDSN: os.Getenv(envPostgresReplicaDSN),
		SQLitePath:         getenv(envSQLitePath, defaultSQLitePath),
		RabbitURL:          os.Getenv(envRabbitURL),
		RabbitExchange:     getenv(envRabbitExchange, defaultRabbitExchange),
		OTLPEndpoint:       getenv(envOTLPEndpoint, defaultOTLPEndpoint),
	}

	var err error

	if cfg.OTELEnabled, err = getbool(envOTELEnabled, false); err != nil {
		return Config{}, err
	}

	if cfg.Seed, err = getbool(envSeed, false); err != nil {
		return Config{}, err
	}

	if cfg.ShutdownGrace, err = getduration(envShutdownGrace, defaultShutdownGrace); err != nil {
		return Config{}, err
	}

	if err = cfg.LogLevel.UnmarshalText([]byte(getenv(envLogLevel, "info"))); err != nil {
		return Config{}, errors.Join(ErrInvalidValue, fmt.Errorf("%s: %w", envLogLevel, err))
	}

	switch cfg.StoreType {
	case StoreTypeMemory, StoreTypeSQLite:
	case StoreTypePGXPool, StoreTypeSQLDB, StoreTypeSQLX:
		if cfg.PostgresDSN == "" {
			return Config{}, ErrMissingPostgresDSN
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownStoreType, cfg.StoreType)
	}

	return cfg, nil
}

// NotificationsEnabled reports whether assignments are published to RabbitMQ.
func (c Config) NotificationsEnabled() bool {
	return c.RabbitURL != ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getbool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Join(ErrInvalidValue, fmt.Errorf("%s: %w", key, err))
	}

	return b, nil
}

func getduration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Join(ErrInvalidValue, fmt.Errorf("%s: %w", key, err))
	}

	return d, nil
}
