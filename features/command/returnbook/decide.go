package returnbook

import (
	"fmt"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

const (
	msgReturned            = "book returned, thank you"
	msgReservationNotFound = "reservation not found"
	msgNotPickedUp         = "only a picked up reservation can be returned"
)

// State is what Decide needs to know about the reservation and its book.
type State struct {
	ReservationExists bool
	Reservation       core.Reservation
	Book              core.Book

	// Queue holds the Queuing reservations of the book.
	Queue []core.Reservation
}

// Decide implements the business logic of returning a copy.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A PickedUp reservation
//	WHEN: ReturnBook command is received
//	THEN: the reservation becomes Returned with the return date set and the copy goes back to the shelf
//	THEN: the earliest queued reservation of the book is assigned that copy, if anybody is waiting
//	ERROR: "reservation not found" if the reservation is unknown
//	ERROR: "only a picked up reservation can be returned" in any other status, which is reported back
func Decide(s State, command Command) core.Decision {
	if !s.ReservationExists {
		return core.RejectedDecision(core.Rejected(
			fmt.Errorf("%w: reservation %s", core.ErrNotFound, command.ReservationID),
			msgReservationNotFound,
		))
	}

	current := s.Reservation.Status
	if current != core.StatusPickedUp {
		return core.RejectedDecision(core.RejectedInState(
			s.Reservation.ID,
			current,
			fmt.Errorf("%w: reservation %s is %s", core.ErrInvalidState, s.Reservation.ID, current),
			msgNotPickedUp,
		))
	}

	returned := s.Reservation.Return(command.OccurredAt)
	book := s.Book.PutBackCopy()
	transitions := []core.Transition{{Reservation: returned, From: current}}
	outcome := core.Accepted(returned.ID, returned.Status, msgReturned)

	promotedBook, promotion, err := core.PromoteNextInQueue(book, s.Queue)
	if err == nil {
		book = promotedBook
		transitions = append(transitions, promotion)
		outcome = outcome.WithCascade(core.CascadeFor(promotion.Reservation))
	}

	return core.AcceptedDecision(outcome, core.Changes{Book: book, Transitions: transitions})
}
