// Package pickupbook implements the Pick Up Book use case.
//
// A user collects the copy that was assigned to the reservation, or a librarian approves handing it out.
// Both variants move the reservation from Assigned to PickedUp and record the take date, the shelf is not touched.
//
// It follows the Read-Decide-Save pattern with proper separation between
// infrastructure concerns (CommandHandler) and pure business logic (Decide function).
package pickupbook
