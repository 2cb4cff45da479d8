// Package allocation is the entry point into the reservation engine.
//
// Engine composes the command and query handlers of the features packages, wraps each of them
// with the observable wrappers, and exposes the operations under the names the boundary uses:
// Reserve, PickUp, ApproveTakeBook, Cancel, ReturnBook, AutoAssignNextUser, AddBookCopies,
// GetAllReservations and GetUserReservations.
//
// Every command returns a core.Outcome. A business rejection is carried in Outcome.Err,
// the returned error is reserved for storage faults and cancelled contexts.
//
// Example usage:
//
//	engine, err := allocation.NewEngine(s,
//		allocation.WithContextualLogger(oteladapters.NewSlogBridgeLogger("reservations")),
//		allocation.WithNotifier(notifier),
//	)
//	outcome, err := engine.Reserve(ctx, userID, bookID)
package allocation
