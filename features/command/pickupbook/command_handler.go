package pickupbook

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/shell"
	"github.com/AntonStoeckl/library-reservations-go/store"
)

// Store defines the interface needed by the CommandHandler for store operations.
type Store interface {
	FindReservation(ctx context.Context, reservationID core.ReservationID) (core.Reservation, error)
	FindBook(ctx context.Context, bookID core.BookID) (core.Book, error)
	Save(ctx context.Context, changes core.Changes) error
}

// CommandHandler orchestrates the command processing workflow with pure business logic and retry.
// It handles the workflow: Read -> Decide -> Save.
type CommandHandler struct {
	store        Store
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(s Store, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store: s,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the command with retry on concurrency conflicts.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var decision core.Decision

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		d, execErr := h.executeCommand(retryCtx, command)
		decision = d

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewDecidedResult(decision.Outcome, retryMetrics), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.Decision, error) {
	ctx = store.WithStrongConsistency(ctx)

	s := State{}

	// Read phase
	reservation, err := h.store.FindReservation(ctx, command.ReservationID)
	switch {
	case err == nil:
		s.ReservationExists = true
		s.Reservation = reservation
	case errors.Is(err, store.ErrNotFound):
		return Decide(s, command), nil
	default:
		return core.Decision{}, err
	}

	// the book carries the version that guards the transition
	book, err := h.store.FindBook(ctx, reservation.BookID)
	if err != nil {
		return core.Decision{}, err
	}

	s.Book = book

	// Business logic phase - delegate to pure core function
	decision := Decide(s, command)

	if !decision.HasChangesToSave() {
		return decision, nil
	}

	// Save phase
	if err = h.store.Save(ctx, decision.Changes); err != nil {
		return core.Decision{}, err
	}

	return decision, nil
}
