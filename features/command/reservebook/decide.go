package reservebook

import (
	"fmt"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

const (
	msgAssigned     = "reservation successful, a copy is assigned to you"
	msgQueued       = "no copy available, your reservation is queued"
	msgUserNotFound = "user not found"
	msgBookNotFound = "book not found"
)

// State is what Decide needs to know about the user and the book.
type State struct {
	UserExists bool
	BookExists bool
	Book       core.Book
}

// Decide implements the business logic of a reservation request.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A registered user and a book
//	WHEN: ReserveBook command is received
//	THEN: the reservation is Assigned and one copy leaves the shelf, if a copy is available
//	THEN: the reservation is Queuing and the shelf stays as it is, otherwise
//	THEN: the reservation counter of the book grows by one in both cases
//	ERROR: "user not found" / "book not found" if either id is unknown
//
// The creation date is strictly after the book's newest reservation, which keeps the queue FIFO.
func Decide(s State, command Command) core.Decision {
	if !s.UserExists {
		return core.RejectedDecision(core.Rejected(fmt.Errorf("%w: user %s", core.ErrNotFound, command.UserID), msgUserNotFound))
	}

	if !s.BookExists {
		return core.RejectedDecision(core.Rejected(fmt.Errorf("%w: book %s", core.ErrNotFound, command.BookID), msgBookNotFound))
	}

	book := s.Book
	createDate := core.NextCreateDate(command.OccurredAt, book.LastReservedAt)
	book.LastReservedAt = createDate
	book = book.CountReservation()

	status, message := core.StatusQueuing, msgQueued
	if book.Quantity > 0 {
		book = book.TakeCopy()
		status, message = core.StatusAssigned, msgAssigned
	}

	reservation := core.BuildReservation(command.ReservationID, command.UserID, command.BookID, createDate, status)

	return core.AcceptedDecision(
		core.Accepted(reservation.ID, status, message),
		core.Changes{Book: book, Inserted: []core.Reservation{reservation}},
	)
}
