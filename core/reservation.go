package core

import "time"

// Reservation is one user's request for one copy of one book.
type Reservation struct {
	ID         ReservationID
	UserID     UserID
	BookID     BookID
	CreateDate time.Time
	TakeDate   *time.Time
	ReturnDate *time.Time
	Status     Status
}

// BuildReservation creates a new reservation in the given initial status.
func BuildReservation(id ReservationID, userID UserID, bookID BookID, createDate time.Time, status Status) Reservation {
	return Reservation{
		ID:         id,
		UserID:     userID,
		BookID:     bookID,
		CreateDate: ToOccurredAt(createDate),
		Status:     status,
	}
}

// Assign promotes a queued reservation to Assigned.
func (r Reservation) Assign() Reservation {
	r.Status = StatusAssigned
	return r
}

// PickUp marks the reservation as collected.
func (r Reservation) PickUp(at time.Time) Reservation {
	takeDate := ToOccurredAt(at)
	r.Status = StatusPickedUp
	r.TakeDate = &takeDate

	return r
}

// Return marks the collected copy as brought back.
func (r Reservation) Return(at time.Time) Reservation {
	returnDate := ToOccurredAt(at)
	r.Status = StatusReturned
	r.ReturnDate = &returnDate

	return r
}

// Cancel withdraws the reservation.
func (r Reservation) Cancel() Reservation {
	r.Status = StatusCancelled
	return r
}
