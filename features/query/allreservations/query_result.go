package allreservations

import (
	"time"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

// ReservationView is one row of the report.
type ReservationView struct {
	ReservationID core.ReservationID
	UserID        core.UserID
	Nickname      string
	BookID        core.BookID
	Title         string
	CreateDate    time.Time
	TakeDate      *time.Time
	ReturnDate    *time.Time
	Status        core.Status
}

// Reservations represents the query result.
type Reservations struct {
	Reservations []ReservationView
	Count        int
}

// Len returns the number of rows, for observability.
func (r Reservations) Len() int {
	return r.Count
}
