package core

import "errors"

// Business rejections. They are reported to the caller inside an Outcome and are never retried.
var (
	// ErrNotFound is returned when a referenced user, book, or reservation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller does not own the reservation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState is returned when the reservation's current status does not permit the operation.
	ErrInvalidState = errors.New("invalid reservation state")

	// ErrInsufficientStock is returned by auto-assignment when no copy is available.
	ErrInsufficientStock = errors.New("no copy available for assignment")

	// ErrEmptyQueue is returned by auto-assignment when nobody is waiting for the book.
	ErrEmptyQueue = errors.New("no queued reservation for book")

	// ErrInvalidCopyCount is returned when a restock does not add at least one copy.
	ErrInvalidCopyCount = errors.New("copy count must be positive")
)
