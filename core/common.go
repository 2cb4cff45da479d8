package core

import (
	"time"

	"github.com/google/uuid"
)

// Instead of implementing full value objects, I'm using some alias types and helper methods here ...

// BookID identifies a book.
type BookID = uuid.UUID

// UserID identifies a user.
type UserID = uuid.UUID

// ReservationID identifies a reservation.
type ReservationID = uuid.UUID

// OccurredAt represents when something happened.
type OccurredAt = time.Time

// ToOccurredAt converts a time to OccurredAt with UTC normalization and microsecond precision.
func ToOccurredAt(t time.Time) OccurredAt {
	return t.UTC().Truncate(time.Microsecond)
}

// NextCreateDate returns the creation timestamp for a new reservation of a book.
// It is strictly after the book's last one, so the FIFO order by creation date
// never inverts even if clocks of concurrent writers disagree.
func NextCreateDate(now time.Time, lastReservedAt time.Time) OccurredAt {
	candidate := ToOccurredAt(now)
	if lastReservedAt.IsZero() || candidate.After(lastReservedAt) {
		return candidate
	}

	return ToOccurredAt(lastReservedAt).Add(time.Microsecond)
}
