// Command loadgen drives an in-process reservation engine with concurrent random scenarios
// and verifies the stock invariants of every book afterwards.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/library-reservations-go/allocation"
	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/oteladapters"
	"github.com/AntonStoeckl/library-reservations-go/shell"
	"github.com/AntonStoeckl/library-reservations-go/shell/config"
	"github.com/AntonStoeckl/library-reservations-go/store"
	"github.com/AntonStoeckl/library-reservations-go/store/memoryengine"
	"github.com/AntonStoeckl/library-reservations-go/store/sqlengine"
)

const (
	defaultRate            = 50
	defaultDuration        = 30 * time.Second
	defaultBooks           = 20
	defaultUsers           = 100
	defaultCopiesPerBook   = 3
	defaultScenarioWeights = "50,20,15,15" // reserve, pickup, return, cancel
	shutdownGrace          = 10 * time.Second
	instrumentationName    = "library-reservations-loadgen"
)

// ErrInvalidScenarioWeights is returned for weights that are not four numbers summing up to 100.
var ErrInvalidScenarioWeights = errors.New("invalid scenario weights")

// Config holds the command-line configuration.
type Config struct {
	Rate                 int
	Duration             time.Duration
	Books                int
	Users                int
	CopiesPerBook        int
	ScenarioWeights      []int
	RandomSeed           int64
	SQLitePath           string
	ObservabilityEnabled bool
	OTLPEndpoint         string
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := parseFlags()
	if err != nil {
		logger.Error("invalid flags", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, cfg, logger); err != nil {
		logger.Error("load generator failed", "error", err)
		os.Exit(1) //nolint:gocritic // stop has no work left to do
	}
}

func parseFlags() (Config, error) {
	var (
		rate          = flag.Int("rate", defaultRate, "Scenarios per second")
		duration      = flag.Duration("duration", defaultDuration, "How long to generate load")
		books         = flag.Int("books", defaultBooks, "Number of books in the catalog")
		users         = flag.Int("users", defaultUsers, "Number of users in the catalog")
		copies        = flag.Int("copies", defaultCopiesPerBook, "Copies per book")
		weights       = flag.String("scenario-weights", defaultScenarioWeights, "Comma-separated weights for reserve,pickup,return,cancel")
		seed          = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
		sqlitePath    = flag.String("sqlite", "", "SQLite database path, in-memory store if empty")
		observability = flag.Bool("observability-enabled", false, "Enable OpenTelemetry observability")
		otlpEndpoint  = flag.String("otlp-endpoint", "localhost:4317", "OTLP gRPC endpoint")
	)

	flag.Parse()

	scenarioWeights, err := parseScenarioWeights(*weights)
	if err != nil {
		return Config{}, err
	}

	if *rate <= 0 || *books <= 0 || *users <= 0 || *copies < 0 {
		return Config{}, errors.New("rate, books and users must be positive, copies must not be negative")
	}

	return Config{
		Rate:                 *rate,
		Duration:             *duration,
		Books:                *books,
		Users:                *users,
		CopiesPerBook:        *copies,
		ScenarioWeights:      scenarioWeights,
		RandomSeed:           *seed,
		SQLitePath:           *sqlitePath,
		ObservabilityEnabled: *observability,
		OTLPEndpoint:         *otlpEndpoint,
	}, nil
}

func parseScenarioWeights(weightsStr string) ([]int, error) {
	parts := strings.Split(weightsStr, ",")
	if len(parts) != len(scenarios) {
		return nil, fmt.Errorf("%w: expected %d weights, got %d", ErrInvalidScenarioWeights, len(scenarios), len(parts))
	}

	weights := make([]int, len(parts))
	total := 0

	for i, part := range parts {
		weight, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidScenarioWeights, part)
		}

		if weight < 0 || weight > 100 {
			return nil, fmt.Errorf("%w: %d out of range [0, 100]", ErrInvalidScenarioWeights, weight)
		}

		weights[i] = weight
		total += weight
	}

	if total != 100 {
		return nil, fmt.Errorf("%w: weights must sum to 100, got %d", ErrInvalidScenarioWeights, total)
	}

	return weights, nil
}

func run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	engineOptions := []allocation.Option{
		allocation.WithRetryOptions(shell.WithMaxAttempts(20)),
	}

	if cfg.ObservabilityEnabled {
		providers, err := config.NewObservabilityProviders(ctx, cfg.OTLPEndpoint, "loadgen")
		if err != nil {
			return err
		}

		defer func() { _ = providers.Shutdown() }()

		engineOptions = append(engineOptions,
			allocation.WithContextualLogger(oteladapters.NewSlogBridgeLogger(instrumentationName)),
			allocation.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))),
			allocation.WithTracing(oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))),
		)
	}

	s, closeStore, err := openStore(ctx, cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer closeStore()

	engine, err := allocation.NewEngine(s, engineOptions...)
	if err != nil {
		return err
	}

	copies, userIDs, err := seed(ctx, engine, cfg)
	if err != nil {
		return err
	}

	lg := NewLoadGenerator(engine, s, cfg, logger, copies, userIDs)

	runCtx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	if startErr := lg.Start(runCtx); startErr != nil && !errors.Is(startErr, context.DeadlineExceeded) {
		logger.Info("load generation interrupted", "error", startErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()

	if err = lg.Stop(shutdownCtx); err != nil {
		return err
	}

	if err = lg.Verify(shutdownCtx); err != nil {
		return err
	}

	logger.Info("all stock invariants hold")

	return nil
}

func openStore(ctx context.Context, sqlitePath string) (store.Store, func(), error) {
	if sqlitePath == "" {
		s, err := memoryengine.NewStore()
		return s, func() {}, err
	}

	db, err := config.SQLiteDB(ctx, sqlitePath)
	if err != nil {
		return nil, nil, err
	}

	s, err := sqlengine.NewStoreFromSQLDB(db, sqlengine.WithDialect(sqlengine.DialectSQLite))
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	if err = s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return s, func() { _ = db.Close() }, nil
}

func seed(ctx context.Context, engine *allocation.Engine, cfg Config) (map[core.BookID]int, []core.UserID, error) {
	copies := make(map[core.BookID]int, cfg.Books)
	for i := 0; i < cfg.Books; i++ {
		book, err := engine.RegisterBook(ctx, fmt.Sprintf("Load Test Book %d", i+1), cfg.CopiesPerBook)
		if err != nil {
			return nil, nil, err
		}

		copies[book.ID] = cfg.CopiesPerBook
	}

	userIDs := make([]core.UserID, 0, cfg.Users)
	for i := 0; i < cfg.Users; i++ {
		user, err := engine.RegisterUser(ctx, fmt.Sprintf("reader-%d", i+1))
		if err != nil {
			return nil, nil, err
		}

		userIDs = append(userIDs, user.ID)
	}

	return copies, userIDs, nil
}
