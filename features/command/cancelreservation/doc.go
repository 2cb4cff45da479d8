// Package cancelreservation implements the Cancel Reservation use case.
//
// The owner of a reservation withdraws it. Cancelling an assigned reservation puts the copy back on the shelf,
// which is handed to the next user in the book's queue in the same atomic unit.
//
// It follows the Read-Decide-Save pattern with proper separation between
// infrastructure concerns (CommandHandler) and pure business logic (Decide function).
package cancelreservation
