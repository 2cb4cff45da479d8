// Package shell provides the infrastructure side shared by all feature slices of the reservation engine:
// command and query contracts, retry with exponential backoff for concurrency conflicts,
// the HandlerResult that carries business outcomes and retry metadata to the observability wrappers,
// the observability helpers, and the Notifier contract for assignment notifications.
//
// This package implements the "imperative shell" pattern around the pure core.
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
