package allocation

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-reservations-go/shell"
	"github.com/AntonStoeckl/library-reservations-go/shell/displaynames"
)

var (
	// ErrNilClock is returned when WithClock gets a nil function.
	ErrNilClock = errors.New("clock must not be nil")

	// ErrNilIDGenerator is returned when WithIDGenerator gets a nil function.
	ErrNilIDGenerator = errors.New("id generator must not be nil")
)

type config struct {
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
	notifier         shell.Notifier
	clock            func() time.Time
	newID            func() (uuid.UUID, error)
	retryOptions     []shell.RetryOption
	nameOptions      []displaynames.Option
}

func defaultConfig() config {
	return config{
		clock: time.Now,
		newID: uuid.NewV7,
	}
}

// Option configures an Engine.
type Option func(*config) error

// WithMetrics sets the metrics collector of all handlers.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(c *config) error {
		c.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector of all handlers.
func WithTracing(collector shell.TracingCollector) Option {
	return func(c *config) error {
		c.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the context-aware logger of all handlers. It takes precedence over WithLogger.
func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(c *config) error {
		c.contextualLogger = logger
		return nil
	}
}

// WithLogger sets the basic logger of all handlers.
func WithLogger(logger shell.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithNotifier sets the notifier that learns about every reservation that gets a copy assigned.
func WithNotifier(notifier shell.Notifier) Option {
	return func(c *config) error {
		c.notifier = notifier
		return nil
	}
}

// WithClock replaces time.Now as the source of the command timestamps.
func WithClock(clock func() time.Time) Option {
	return func(c *config) error {
		if clock == nil {
			return ErrNilClock
		}

		c.clock = clock

		return nil
	}
}

// WithIDGenerator replaces uuid.NewV7 as the source of reservation ids.
func WithIDGenerator(newID func() (uuid.UUID, error)) Option {
	return func(c *config) error {
		if newID == nil {
			return ErrNilIDGenerator
		}

		c.newID = newID

		return nil
	}
}

// WithRetryOptions configures the retry on concurrency conflicts of all command handlers.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(c *config) error {
		c.retryOptions = opts
		return nil
	}
}

// WithNameCacheOptions configures the display-name cache of the reports.
func WithNameCacheOptions(opts ...displaynames.Option) Option {
	return func(c *config) error {
		c.nameOptions = opts
		return nil
	}
}
