package store

import (
	"context"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

// Catalog holds the books and users the reservations refer to.
type Catalog interface {
	FindUser(ctx context.Context, userID core.UserID) (core.User, error)
	FindBook(ctx context.Context, bookID core.BookID) (core.Book, error)
	RegisterUser(ctx context.Context, user core.User) error
	RegisterBook(ctx context.Context, book core.Book) error
}

// Reservations holds the reservation records. They are never deleted.
type Reservations interface {
	FindReservation(ctx context.Context, reservationID core.ReservationID) (core.Reservation, error)

	// QueryByBookAndStatus returns the book's reservations in the given status, oldest first.
	QueryByBookAndStatus(ctx context.Context, bookID core.BookID, status core.Status) ([]core.Reservation, error)

	// QueryByStatus returns all reservations in creation order, optionally filtered by exact status.
	QueryByStatus(ctx context.Context, filter StatusFilter) ([]core.Reservation, error)

	// QueryByUser returns the user's reservations, newest first.
	QueryByUser(ctx context.Context, userID core.UserID) ([]core.Reservation, error)
}

// Store is the full persistence contract of the reservation engine.
type Store interface {
	Catalog
	Reservations

	// Save applies the changes as one atomic unit, conditioned on changes.Book.Version
	// still being the persisted version of the book. On success the persisted version is incremented.
	Save(ctx context.Context, changes core.Changes) error
}

// StatusFilter optionally restricts a query to one status.
type StatusFilter struct {
	status core.Status
	active bool
}

// AnyStatus matches reservations in every status.
func AnyStatus() StatusFilter {
	return StatusFilter{}
}

// OnlyStatus matches reservations in exactly the given status.
func OnlyStatus(status core.Status) StatusFilter {
	return StatusFilter{status: status, active: true}
}

// Status returns the filtered status and whether the filter is active.
func (f StatusFilter) Status() (core.Status, bool) {
	return f.status, f.active
}

// Matches reports whether a reservation passes the filter.
func (f StatusFilter) Matches(r core.Reservation) bool {
	return !f.active || r.Status == f.status
}
