package pickupbook

import (
	"time"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

const (
	commandType         = "PickUpBook"
	approvedCommandType = "ApproveTakeBook"
)

// Command represents the intent to hand out the assigned copy of a reservation.
type Command struct {
	ReservationID       core.ReservationID
	ApprovedByLibrarian bool
	OccurredAt          core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	if c.ApprovedByLibrarian {
		return approvedCommandType
	}

	return commandType
}

// BuildCommand creates a new Command for a pickup by the user.
func BuildCommand(reservationID core.ReservationID, occurredAt time.Time) Command {
	return Command{
		ReservationID: reservationID,
		OccurredAt:    core.ToOccurredAt(occurredAt),
	}
}

// BuildApprovalCommand creates a new Command for a pickup approved by a librarian.
func BuildApprovalCommand(reservationID core.ReservationID, occurredAt time.Time) Command {
	command := BuildCommand(reservationID, occurredAt)
	command.ApprovedByLibrarian = true

	return command
}
