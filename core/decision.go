package core

import "time"

// Transition is a status change of an existing reservation.
// From is the status the decision was based on, it guards the write.
type Transition struct {
	Reservation Reservation
	From        Status
}

// Changes is everything a decision wants persisted for exactly one book, as one atomic unit.
type Changes struct {
	// Book holds the counters after the decision. Its Version is the version
	// the decision was based on, the store rejects the changes if it moved on.
	Book Book

	Inserted    []Reservation
	Transitions []Transition
}

// Assignment tells who got a copy assigned, it feeds the notifications.
type Assignment struct {
	ReservationID ReservationID
	UserID        UserID
	BookID        BookID
	AssignedAt    time.Time
}

// Assignments lists all reservations that end up Assigned through these changes.
func (c Changes) Assignments(at time.Time) []Assignment {
	var assignments []Assignment

	for _, r := range c.Inserted {
		if r.Status == StatusAssigned {
			assignments = append(assignments, Assignment{ReservationID: r.ID, UserID: r.UserID, BookID: r.BookID, AssignedAt: at})
		}
	}

	for _, t := range c.Transitions {
		if t.Reservation.Status == StatusAssigned && t.From != StatusAssigned {
			r := t.Reservation
			assignments = append(assignments, Assignment{ReservationID: r.ID, UserID: r.UserID, BookID: r.BookID, AssignedAt: at})
		}
	}

	return assignments
}

// Decision is the result of a Decide function.
//
// IMPORTANT: Decision should only be constructed using the provided factory methods
// AcceptedDecision and RejectedDecision.
type Decision struct {
	Outcome Outcome
	Changes Changes

	hasChanges bool
}

// AcceptedDecision creates a Decision with changes that have to be saved.
func AcceptedDecision(outcome Outcome, changes Changes) Decision {
	return Decision{
		Outcome:    outcome,
		Changes:    changes,
		hasChanges: true,
	}
}

// RejectedDecision creates a Decision without changes.
func RejectedDecision(outcome Outcome) Decision {
	return Decision{
		Outcome: outcome,
	}
}

// HasChangesToSave returns true if there is something to persist.
func (d Decision) HasChangesToSave() bool {
	return d.hasChanges
}
