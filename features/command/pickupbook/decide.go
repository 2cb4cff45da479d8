package pickupbook

import (
	"fmt"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

const (
	msgPickedUp            = "book picked up, enjoy reading"
	msgApproved            = "take book approved, the copy was handed out"
	msgReservationNotFound = "reservation not found"
	msgNotAssigned         = "only an assigned reservation can be picked up"
)

// State is what Decide needs to know about the reservation.
type State struct {
	ReservationExists bool
	Reservation       core.Reservation
	Book              core.Book
}

// Decide implements the business logic of handing out an assigned copy.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: An Assigned reservation
//	WHEN: PickUpBook command is received
//	THEN: the reservation becomes PickedUp with the take date set, the book counters stay as they are
//	ERROR: "reservation not found" if the reservation is unknown
//	ERROR: "only an assigned reservation can be picked up" in any other status, which is reported back
func Decide(s State, command Command) core.Decision {
	if !s.ReservationExists {
		return core.RejectedDecision(core.Rejected(
			fmt.Errorf("%w: reservation %s", core.ErrNotFound, command.ReservationID),
			msgReservationNotFound,
		))
	}

	current := s.Reservation.Status
	if current != core.StatusAssigned {
		return core.RejectedDecision(core.RejectedInState(
			s.Reservation.ID,
			current,
			fmt.Errorf("%w: reservation %s is %s", core.ErrInvalidState, s.Reservation.ID, current),
			msgNotAssigned,
		))
	}

	pickedUp := s.Reservation.PickUp(command.OccurredAt)

	message := msgPickedUp
	if command.ApprovedByLibrarian {
		message = msgApproved
	}

	return core.AcceptedDecision(
		core.Accepted(pickedUp.ID, pickedUp.Status, message),
		core.Changes{
			Book:        s.Book,
			Transitions: []core.Transition{{Reservation: pickedUp, From: current}},
		},
	)
}
