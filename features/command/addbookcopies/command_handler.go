package addbookcopies

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/shell"
	"github.com/AntonStoeckl/library-reservations-go/store"
)

// Store defines the interface needed by the CommandHandler for store operations.
type Store interface {
	FindBook(ctx context.Context, bookID core.BookID) (core.Book, error)
	QueryByBookAndStatus(ctx context.Context, bookID core.BookID, status core.Status) ([]core.Reservation, error)
	Save(ctx context.Context, changes core.Changes) error
}

// CommandHandler orchestrates the command processing workflow with pure business logic and retry.
// It handles the workflow: Read -> Decide -> Save -> Notify.
type CommandHandler struct {
	store        Store
	notifier     shell.Notifier
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

// WithNotifier sets the notifier that learns about the promoted reservations.
func WithNotifier(notifier shell.Notifier) Option {
	return func(h *CommandHandler) {
		h.notifier = notifier
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

	result := shell.NewDecidedResult(decision.Outcome, retryMetrics)

	if decision.HasChangesToSave() {
		notifyErr := shell.NotifyAssigned(ctx, h.notifier, decision.Changes.Assignments(command.OccurredAt))
		result = result.WithNotificationErr(notifyErr)
	}

	return result, nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.Decision, error) {
	ctx = store.WithStrongConsistency(ctx)

	s := State{}

	// Read phase
	book, err := h.store.FindBook(ctx, command.BookID)
	switch {
	case err == nil:
		s.BookExists = true
		s.Book = book
	case errors.Is(err, store.ErrNotFound):
		return Decide(s, command), nil
	default:
		return core.Decision{}, err
	}

	if s.Queue, err = h.store.QueryByBookAndStatus(ctx, command.BookID, core.StatusQueuing); err != nil {
		return core.Decision{}, err
	}

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
