package core

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of a Reservation.
//
// The numeric codes are part of the external contract and must not change.
type Status uint8

const (
	// StatusQueuing means the reservation waits for a copy and holds no inventory claim.
	StatusQueuing Status = 0

	// StatusAssigned means a copy is claimed for the reservation but not yet collected.
	StatusAssigned Status = 1

	// StatusReturned means the collected copy was brought back. Terminal.
	StatusReturned Status = 2

	// StatusCancelled means the reservation was withdrawn. Terminal.
	StatusCancelled Status = 3

	// StatusPickedUp means the copy was physically collected by the user.
	StatusPickedUp Status = 4
)

// NoStatusCode is reported instead of a status code when a request was rejected
// because something was not found, not allowed, or there was nothing to assign.
const NoStatusCode = -1

// ErrUnknownStatusCode is returned by ParseStatusCode for codes outside the five known ones.
var ErrUnknownStatusCode = errors.New("unknown reservation status code")

// ParseStatusCode converts an external numeric code into a Status.
func ParseStatusCode(code int) (Status, error) {
	if code < int(StatusQueuing) || code > int(StatusPickedUp) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownStatusCode, code)
	}

	return Status(code), nil
}

// IsValid reports whether s is one of the five known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusQueuing, StatusAssigned, StatusReturned, StatusCancelled, StatusPickedUp:
		return true
	default:
		return false
	}
}

// Code returns the external numeric code.
func (s Status) Code() int {
	return int(s)
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusReturned || s == StatusCancelled
}

// HoldsInventory reports whether a reservation in this status claims one copy.
func (s Status) HoldsInventory() bool {
	return s == StatusAssigned || s == StatusPickedUp
}

// CanTransitionTo reports whether next is a legal successor of s.
//
// PickedUp -> Cancelled is accepted but never gives the copy back to the shelf,
// a checked-out copy has to come back through a return.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusQueuing:
		return next == StatusAssigned || next == StatusCancelled
	case StatusAssigned:
		return next == StatusPickedUp || next == StatusCancelled
	case StatusPickedUp:
		return next == StatusReturned || next == StatusCancelled
	default:
		return false
	}
}

// String returns a human-readable name.
func (s Status) String() string {
	switch s {
	case StatusQueuing:
		return "Queuing"
	case StatusAssigned:
		return "Assigned"
	case StatusReturned:
		return "Returned"
	case StatusCancelled:
		return "Cancelled"
	case StatusPickedUp:
		return "PickedUp"
	default:
		return "Unknown"
	}
}
