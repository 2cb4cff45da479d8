package reservebook

import (
	"time"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

const (
	commandType = "ReserveBook"
)

// Command represents the intent of a user to reserve a copy of a book.
type Command struct {
	ReservationID core.ReservationID
	UserID        core.UserID
	BookID        core.BookID
	OccurredAt    core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
// The reservation id is chosen by the caller, so a retried command creates the same reservation.
func BuildCommand(reservationID core.ReservationID, userID core.UserID, bookID core.BookID, occurredAt time.Time) Command {
	return Command{
		ReservationID: reservationID,
		UserID:        userID,
		BookID:        bookID,
		OccurredAt:    core.ToOccurredAt(occurredAt),
	}
}
