package addbookcopies

import (
	"fmt"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

const (
	msgBookNotFound      = "book not found"
	msgInvalidCopyCount  = "at least one copy has to be added"
	msgCopiesAddedFormat = "%d copies added, %d queued reservations assigned"
)

// State is what Decide needs to know about the book and its queue.
type State struct {
	BookExists bool
	Book       core.Book

	// Queue holds the Queuing reservations of the book.
	Queue []core.Reservation
}

// Decide implements the business logic of a restock.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A known book
//	WHEN: AddBookCopies command is received with a positive count
//	THEN: the copies go on the shelf
//	THEN: queued reservations are assigned in FIFO order while copies are left
//	ERROR: "at least one copy has to be added" if the count is not positive
//	ERROR: "book not found" if the book is unknown
//
// The Outcome reports the first promoted reservation as cascade and the number of promotions.
func Decide(s State, command Command) core.Decision {
	if command.Count <= 0 {
		return core.RejectedDecision(core.Rejected(
			fmt.Errorf("%w: got %d", core.ErrInvalidCopyCount, command.Count),
			msgInvalidCopyCount,
		))
	}

	if !s.BookExists {
		return core.RejectedDecision(core.Rejected(
			fmt.Errorf("%w: book %s", core.ErrNotFound, command.BookID),
			msgBookNotFound,
		))
	}

	book := s.Book
	book.Quantity += command.Count

	book, promotions := core.DrainQueue(book, s.Queue)

	status := core.StatusQueuing
	if len(promotions) > 0 {
		status = core.StatusAssigned
	}

	outcome := core.Accepted(core.ReservationID{}, status, fmt.Sprintf(msgCopiesAddedFormat, command.Count, len(promotions)))
	if len(promotions) > 0 {
		outcome.ReservationID = promotions[0].Reservation.ID
		outcome = outcome.WithCascade(core.CascadeFor(promotions[0].Reservation))
		outcome.Promoted = len(promotions)
	}

	return core.AcceptedDecision(outcome, core.Changes{Book: book, Transitions: promotions})
}
