package userreservations

import (
	"time"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

// ReservationView is one row of the user's reservation list.
type ReservationView struct {
	ReservationID core.ReservationID
	BookID        core.BookID
	Title         string
	Nickname      string
	CreateDate    time.Time
	TakeDate      *time.Time
	ReturnDate    *time.Time
	Status        core.Status
}

// UserReservations represents the query result.
type UserReservations struct {
	UserID       core.UserID
	Reservations []ReservationView
	Count        int
}

// Len returns the number of rows, for observability.
func (r UserReservations) Len() int {
	return r.Count
}
