// Command reservations serves the library reservation engine over HTTP.
//
// Configuration is read from the environment, see package shell/config.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/library-reservations-go/allocation"
	"github.com/AntonStoeckl/library-reservations-go/oteladapters"
	"github.com/AntonStoeckl/library-reservations-go/shell/amqpnotifier"
	"github.com/AntonStoeckl/library-reservations-go/shell/config"
	"github.com/AntonStoeckl/library-reservations-go/shell/httpapi"
)

const (
	instrumentationName = "library-reservations"
	readHeaderTimeout   = 5 * time.Second
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading configuration failed", "error", err)
		os.Exit(1)
	}

	level.Set(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, cfg, logger); err != nil {
		logger.Error("reservations service stopped with error", "error", err)
		os.Exit(1) //nolint:gocritic // stop has no work left to do
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	var observability observabilityOptions

	if cfg.OTELEnabled {
		providers, err := config.NewObservabilityProviders(ctx, cfg.OTLPEndpoint, version)
		if err != nil {
			return err
		}

		defer func() {
			if shutdownErr := providers.Shutdown(); shutdownErr != nil {
				logger.Warn("shutting down observability providers failed", "error", shutdownErr)
			}
		}()

		observability = observabilityOptions{
			contextualLogger: oteladapters.NewSlogBridgeLogger(instrumentationName),
			metrics:          oteladapters.NewMetricsCollector(otel.Meter(instrumentationName)),
			tracing:          oteladapters.NewTracingCollector(otel.Tracer(instrumentationName)),
		}

		logger.Info("observability enabled", "otlp_endpoint", cfg.OTLPEndpoint)
	}

	s, closeStore, err := openStore(ctx, cfg, logger, observability)
	if err != nil {
		return err
	}
	defer closeStore()

	engineOptions := []allocation.Option{allocation.WithLogger(logger)}
	engineOptions = append(engineOptions, observability.engineOptions()...)

	if cfg.NotificationsEnabled() {
		notifier, dialErr := amqpnotifier.Dial(cfg.RabbitURL, cfg.RabbitExchange, amqpnotifier.WithLogger(logger))
		if dialErr != nil {
			return dialErr
		}

		defer func() {
			if closeErr := notifier.Close(); closeErr != nil {
				logger.Warn("closing amqp notifier failed", "error", closeErr)
			}
		}()

		engineOptions = append(engineOptions, allocation.WithNotifier(notifier))
		logger.Info("assignment notifications enabled", "exchange", cfg.RabbitExchange)
	}

	engine, err := allocation.NewEngine(s, engineOptions...)
	if err != nil {
		return err
	}

	if cfg.Seed {
		if err = seedCatalog(ctx, engine, logger); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(engine, httpapi.WithLogger(logger)),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return serve(ctx, server, cfg.ShutdownGrace, logger)
}

// serve blocks until ctx is done or the server fails, then shuts the server down gracefully.
func serve(ctx context.Context, server *http.Server, grace time.Duration, logger *slog.Logger) error {
	serveErr := make(chan error, 1)

	go func() {
		logger.Info("http server listening", "addr", server.Addr, "version", version)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server", "grace", grace.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	return server.Shutdown(shutdownCtx) //nolint:contextcheck // the signal context is already done
}
