// Package testdoubles provides test doubles (spies) for the observability interfaces
// used by the stores, the command and query wrappers, and the notifier:
//   - MetricsCollectorSpy: captures metrics recording calls for verification
//   - TracingCollectorSpy: captures tracing spans with their start and end attributes
//   - ContextualLoggerSpy: captures structured logging with context
//   - LogHandlerSpy: captures slog records, for code that logs through a *slog.Logger
//
// They enable testing of the instrumentation without a telemetry backend.
package testdoubles
