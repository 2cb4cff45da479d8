package returnbook

import (
	"time"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

const (
	commandType = "ReturnBook"
)

// Command represents the return of the copy a reservation picked up.
type Command struct {
	ReservationID core.ReservationID
	OccurredAt    core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(reservationID core.ReservationID, occurredAt time.Time) Command {
	return Command{
		ReservationID: reservationID,
		OccurredAt:    core.ToOccurredAt(occurredAt),
	}
}
