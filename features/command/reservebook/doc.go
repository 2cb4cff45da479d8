// Package reservebook implements the Reserve Book use case.
//
// A user reserves a copy of a book. If a copy is on the shelf it is assigned right away,
// otherwise the reservation joins the book's FIFO queue. Either way the reservation counter of the book grows by one.
//
// It follows the Read-Decide-Save pattern with proper separation between
// infrastructure concerns (CommandHandler) and pure business logic (Decide function).
package reservebook
