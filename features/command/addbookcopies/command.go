package addbookcopies

import (
	"time"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

const (
	commandType = "AddBookCopies"
)

// Command represents the intent to add copies of a book to the library's stock.
type Command struct {
	BookID     core.BookID
	Count      int
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID core.BookID, count int, occurredAt time.Time) Command {
	return Command{
		BookID:     bookID,
		Count:      count,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
