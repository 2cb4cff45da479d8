package cancelreservation

import (
	"fmt"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

const (
	msgCancelledAssigned   = "reservation cancelled, the copy went back to the shelf"
	msgCancelledQueuing    = "reservation cancelled, you left the queue"
	msgCancelledPickedUp   = "reservation cancelled, but the picked up copy still has to be returned"
	msgReservationNotFound = "reservation not found"
	msgForbidden           = "the reservation belongs to another user"
	msgAlreadyClosed       = "the reservation is already closed"
)

// State is what Decide needs to know about the reservation and its book.
type State struct {
	ReservationExists bool
	Reservation       core.Reservation
	Book              core.Book

	// Queue holds the Queuing reservations of the book.
	Queue []core.Reservation
}

// Decide implements the business logic of withdrawing a reservation.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A reservation owned by the user that is not yet Returned or Cancelled
//	WHEN: CancelReservation command is received
//	THEN: the reservation becomes Cancelled
//	THEN: if it was Assigned, the copy goes back to the shelf, the reservation counter shrinks by one
//	      and the earliest queued reservation of the book is assigned that copy
//	THEN: if it was PickedUp, the shelf is not touched, the copy has to come back through a return
//	ERROR: "reservation not found" if the reservation is unknown
//	ERROR: "the reservation belongs to another user" if the user does not own it
//	ERROR: "the reservation is already closed" if it is Returned or Cancelled, the current status is reported back
func Decide(s State, command Command) core.Decision {
	if !s.ReservationExists {
		return core.RejectedDecision(core.Rejected(
			fmt.Errorf("%w: reservation %s", core.ErrNotFound, command.ReservationID),
			msgReservationNotFound,
		))
	}

	if s.Reservation.UserID != command.UserID {
		return core.RejectedDecision(core.Rejected(
			fmt.Errorf("%w: reservation %s is not owned by user %s", core.ErrForbidden, command.ReservationID, command.UserID),
			msgForbidden,
		))
	}

	current := s.Reservation.Status
	if !current.CanTransitionTo(core.StatusCancelled) {
		return core.RejectedDecision(core.RejectedInState(
			s.Reservation.ID,
			current,
			fmt.Errorf("%w: reservation %s is %s", core.ErrInvalidState, s.Reservation.ID, current),
			msgAlreadyClosed,
		))
	}

	cancelled := s.Reservation.Cancel()
	book := s.Book
	transitions := []core.Transition{{Reservation: cancelled, From: current}}

	switch current {
	case core.StatusQueuing:
		return core.AcceptedDecision(
			core.Accepted(cancelled.ID, cancelled.Status, msgCancelledQueuing),
			core.Changes{Book: book, Transitions: transitions},
		)

	case core.StatusPickedUp:
		return core.AcceptedDecision(
			core.Accepted(cancelled.ID, cancelled.Status, msgCancelledPickedUp),
			core.Changes{Book: book, Transitions: transitions},
		)

	default:
	}

	book = book.PutBackCopy().UncountReservation()
	outcome := core.Accepted(cancelled.ID, cancelled.Status, msgCancelledAssigned)

	promotedBook, promotion, err := core.PromoteNextInQueue(book, s.Queue)
	if err == nil {
		book = promotedBook
		transitions = append(transitions, promotion)
		outcome = outcome.WithCascade(core.CascadeFor(promotion.Reservation))
	}

	return core.AcceptedDecision(outcome, core.Changes{Book: book, Transitions: transitions})
}
