package core

import "fmt"

const (
	msgPromoted = "the next user in the queue has been assigned a copy"
)

// PromoteNextInQueue assigns one available copy of the book to the earliest queued reservation.
//
// Exactly one reservation is promoted per call. Queue entries of other books or in other
// statuses are ignored, ties on the creation date keep the queue's order.
// It fails with ErrInsufficientStock when no copy is on the shelf and with ErrEmptyQueue
// when nobody is waiting, in both cases the book is returned unchanged.
func PromoteNextInQueue(book Book, queue []Reservation) (Book, Transition, error) {
	if book.Quantity <= 0 {
		return book, Transition{}, fmt.Errorf("%w: book %s", ErrInsufficientStock, book.ID)
	}

	headIdx := -1
	for i, r := range queue {
		if r.BookID != book.ID || r.Status != StatusQueuing {
			continue
		}

		if headIdx == -1 || r.CreateDate.Before(queue[headIdx].CreateDate) {
			headIdx = i
		}
	}

	if headIdx == -1 {
		return book, Transition{}, fmt.Errorf("%w: book %s", ErrEmptyQueue, book.ID)
	}

	head := queue[headIdx]

	return book.TakeCopy(), Transition{Reservation: head.Assign(), From: head.Status}, nil
}

// CascadeFor describes a promotion for the Outcome of the operation that caused it.
func CascadeFor(promoted Reservation) Cascade {
	return Cascade{
		ReservationID: promoted.ID,
		UserID:        promoted.UserID,
		BookID:        promoted.BookID,
		Message:       msgPromoted,
	}
}

// DrainQueue promotes queued reservations one by one until either no copy is left
// or nobody is waiting. It returns the updated book and the promotions in queue order.
func DrainQueue(book Book, queue []Reservation) (Book, []Transition) {
	var promotions []Transition

	remaining := make([]Reservation, len(queue))
	copy(remaining, queue)

	for {
		updated, promotion, err := PromoteNextInQueue(book, remaining)
		if err != nil {
			return book, promotions
		}

		book = updated
		promotions = append(promotions, promotion)

		for i := range remaining {
			if remaining[i].ID == promotion.Reservation.ID {
				remaining[i] = promotion.Reservation
			}
		}
	}
}
