package core

import "errors"

// Outcome is what a reservation operation reports back to its caller.
//
// A rejected operation carries one of the business errors of this package in Err.
// Storage faults are never part of an Outcome, they are returned as Go errors.
type Outcome struct {
	Message       string
	Status        Status
	ReservationID ReservationID

	// Cascade is set when the operation freed a copy and the next queued
	// reservation of the same book was assigned in the same atomic unit.
	Cascade *Cascade

	// Promoted counts assignments made from the queue, it is only used by restocks.
	Promoted int

	Err error
}

// Cascade describes the reservation that was promoted from the queue as a side effect.
type Cascade struct {
	ReservationID ReservationID
	UserID        UserID
	BookID        BookID
	Message       string
}

// Accepted builds the Outcome of a successful operation.
func Accepted(reservationID ReservationID, status Status, message string) Outcome {
	return Outcome{
		Message:       message,
		Status:        status,
		ReservationID: reservationID,
	}
}

// Rejected builds the Outcome of an operation that was refused without reference to a reservation status.
func Rejected(err error, message string) Outcome {
	return Outcome{
		Message: message,
		Err:     err,
	}
}

// RejectedInState builds the Outcome of an operation that was refused because of the reservation's current status.
// The current status is reported, so that the caller can reconcile.
func RejectedInState(reservationID ReservationID, current Status, err error, message string) Outcome {
	return Outcome{
		Message:       message,
		Status:        current,
		ReservationID: reservationID,
		Err:           err,
	}
}

// WithCascade attaches the promotion that followed the primary transition and composes the message.
func (o Outcome) WithCascade(cascade Cascade) Outcome {
	o.Cascade = &cascade
	o.Promoted = 1
	o.Message = o.Message + "; " + cascade.Message

	return o
}

// IsRejected reports whether the operation was refused.
func (o Outcome) IsRejected() bool {
	return o.Err != nil
}

// StatusCode returns the external status code: the resulting (or, for invalid state rejections, the current)
// reservation status, or NoStatusCode for all other rejections.
func (o Outcome) StatusCode() int {
	if o.Err != nil && !errors.Is(o.Err, ErrInvalidState) {
		return NoStatusCode
	}

	return o.Status.Code()
}
