package cancelreservation

import (
	"time"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

const (
	commandType = "CancelReservation"
)

// Command represents the intent of a user to withdraw one of their reservations.
type Command struct {
	UserID        core.UserID
	ReservationID core.ReservationID
	OccurredAt    core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(userID core.UserID, reservationID core.ReservationID, occurredAt time.Time) Command {
	return Command{
		UserID:        userID,
		ReservationID: reservationID,
		OccurredAt:    core.ToOccurredAt(occurredAt),
	}
}
