// Package core contains the pure domain model of the reservation engine:
// Book circulation with reservations in a public library.
//
// A Book carries the number of copies that are available for pickup and a cumulative
// reservation counter. A Reservation moves through a closed set of statuses:
//
//	Queuing -> Assigned -> PickedUp -> Returned
//	Queuing | Assigned -> Cancelled
//	PickedUp -> Cancelled (no copy goes back to the shelf)
//
// Everything in this package is free of side effects. Decide functions in the feature
// packages take the current state and a command and return a Decision, which describes
// the Outcome for the caller and the Changes that have to be persisted atomically.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
