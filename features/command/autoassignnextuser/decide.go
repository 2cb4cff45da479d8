package autoassignnextuser

import (
	"errors"
	"fmt"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

const (
	msgAssigned          = "the next user in the queue has been assigned a copy"
	msgBookNotFound      = "book not found"
	msgInsufficientStock = "no copy available for assignment"
	msgEmptyQueue        = "nobody is waiting for this book"
)

// State is what Decide needs to know about the book and its queue.
type State struct {
	BookExists bool
	Book       core.Book

	// Queue holds the Queuing reservations of the book.
	Queue []core.Reservation
}

// Decide implements the business logic of promoting the head of a book's queue.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A book with a copy on the shelf and at least one queued reservation
//	WHEN: AutoAssignNextUser command is received
//	THEN: the earliest queued reservation becomes Assigned and the copy leaves the shelf
//	ERROR: "book not found" if the book is unknown
//	ERROR: "no copy available for assignment" if the shelf is empty
//	ERROR: "nobody is waiting for this book" if the queue is empty
func Decide(s State, command Command) core.Decision {
	if !s.BookExists {
		return core.RejectedDecision(core.Rejected(
			fmt.Errorf("%w: book %s", core.ErrNotFound, command.BookID),
			msgBookNotFound,
		))
	}

	book, promotion, err := core.PromoteNextInQueue(s.Book, s.Queue)
	if err != nil {
		message := msgEmptyQueue
		if errors.Is(err, core.ErrInsufficientStock) {
			message = msgInsufficientStock
		}

		return core.RejectedDecision(core.Rejected(err, message))
	}

	promoted := promotion.Reservation

	return core.AcceptedDecision(
		core.Accepted(promoted.ID, promoted.Status, msgAssigned),
		core.Changes{Book: book, Transitions: []core.Transition{promotion}},
	)
}
