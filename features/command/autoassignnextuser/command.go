package autoassignnextuser

import (
	"time"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

const (
	commandType = "AutoAssignNextUser"
)

// Command represents the intent to hand a free copy of a book to the next user in its queue.
type Command struct {
	BookID     core.BookID
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID core.BookID, occurredAt time.Time) Command {
	return Command{
		BookID:     bookID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
