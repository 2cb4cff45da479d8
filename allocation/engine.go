package allocation

import (
	"context"
	"fmt"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/features/command/addbookcopies"
	"github.com/AntonStoeckl/library-reservations-go/features/command/autoassignnextuser"
	"github.com/AntonStoeckl/library-reservations-go/features/command/cancelreservation"
	"github.com/AntonStoeckl/library-reservations-go/features/command/pickupbook"
	"github.com/AntonStoeckl/library-reservations-go/features/command/reservebook"
	"github.com/AntonStoeckl/library-reservations-go/features/command/returnbook"
	"github.com/AntonStoeckl/library-reservations-go/features/query/allreservations"
	"github.com/AntonStoeckl/library-reservations-go/features/query/userreservations"
	"github.com/AntonStoeckl/library-reservations-go/shell"
	"github.com/AntonStoeckl/library-reservations-go/shell/displaynames"
	"github.com/AntonStoeckl/library-reservations-go/store"
)

// Engine runs the reservation operations against one store.
// It is safe for concurrent use, concurrent commands on the same book are serialized by the store's
// optimistic concurrency check and retried.
type Engine struct {
	catalog store.Catalog
	cfg     config

	reserve    shell.CoreCommandHandler[reservebook.Command]
	pickUp     shell.CoreCommandHandler[pickupbook.Command]
	cancel     shell.CoreCommandHandler[cancelreservation.Command]
	returnBook shell.CoreCommandHandler[returnbook.Command]
	autoAssign shell.CoreCommandHandler[autoassignnextuser.Command]
	addCopies  shell.CoreCommandHandler[addbookcopies.Command]

	allReservations  shell.CoreQueryHandler[allreservations.Query, allreservations.Reservations]
	userReservations shell.CoreQueryHandler[userreservations.Query, userreservations.UserReservations]
}

// NewEngine creates an Engine with all handlers wired to the store.
func NewEngine(s store.Store, opts ...Option) (*Engine, error) {
	if s == nil {
		return nil, shell.ErrNilStore
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	names, err := displaynames.NewResolver(s, cfg.nameOptions...)
	if err != nil {
		return nil, err
	}

	e := &Engine{catalog: s, cfg: cfg}

	if err = e.wireCommands(s); err != nil {
		return nil, err
	}

	if e.allReservations, err = wrapQuery[allreservations.Query, allreservations.Reservations](allreservations.NewQueryHandler(s, names), cfg); err != nil {
		return nil, fmt.Errorf("failed to create AllReservations handler: %w", err)
	}

	if e.userReservations, err = wrapQuery[userreservations.Query, userreservations.UserReservations](userreservations.NewQueryHandler(s, names), cfg); err != nil {
		return nil, fmt.Errorf("failed to create UserReservations handler: %w", err)
	}

	return e, nil
}

func (e *Engine) wireCommands(s store.Store) error {
	var err error
	cfg := e.cfg

	if e.reserve, err = wrapCommand[reservebook.Command](reservebook.NewCommandHandler(s,
		reservebook.WithNotifier(cfg.notifier),
		reservebook.WithRetryOptions(cfg.retryOptions...),
	), cfg); err != nil {
		return fmt.Errorf("failed to create ReserveBook handler: %w", err)
	}

	if e.pickUp, err = wrapCommand[pickupbook.Command](pickupbook.NewCommandHandler(s,
		pickupbook.WithRetryOptions(cfg.retryOptions...),
	), cfg); err != nil {
		return fmt.Errorf("failed to create PickUpBook handler: %w", err)
	}

	if e.cancel, err = wrapCommand[cancelreservation.Command](cancelreservation.NewCommandHandler(s,
		cancelreservation.WithNotifier(cfg.notifier),
		cancelreservation.WithRetryOptions(cfg.retryOptions...),
	), cfg); err != nil {
		return fmt.Errorf("failed to create CancelReservation handler: %w", err)
	}

	if e.returnBook, err = wrapCommand[returnbook.Command](returnbook.NewCommandHandler(s,
		returnbook.WithNotifier(cfg.notifier),
		returnbook.WithRetryOptions(cfg.retryOptions...),
	), cfg); err != nil {
		return fmt.Errorf("failed to create ReturnBook handler: %w", err)
	}

	if e.autoAssign, err = wrapCommand[autoassignnextuser.Command](autoassignnextuser.NewCommandHandler(s,
		autoassignnextuser.WithNotifier(cfg.notifier),
		autoassignnextuser.WithRetryOptions(cfg.retryOptions...),
	), cfg); err != nil {
		return fmt.Errorf("failed to create AutoAssignNextUser handler: %w", err)
	}

	if e.addCopies, err = wrapCommand[addbookcopies.Command](addbookcopies.NewCommandHandler(s,
		addbookcopies.WithNotifier(cfg.notifier),
		addbookcopies.WithRetryOptions(cfg.retryOptions...),
	), cfg); err != nil {
		return fmt.Errorf("failed to create AddBookCopies handler: %w", err)
	}

	return nil
}

// Reserve requests a copy of the book for the user.
func (e *Engine) Reserve(ctx context.Context, userID core.UserID, bookID core.BookID) (core.Outcome, error) {
	reservationID, err := e.cfg.newID()
	if err != nil {
		return core.Outcome{}, err
	}

	return outcomeOf(e.reserve.Handle(ctx, reservebook.BuildCommand(reservationID, userID, bookID, e.cfg.clock())))
}

// PickUp hands out the assigned copy to the user.
func (e *Engine) PickUp(ctx context.Context, reservationID core.ReservationID) (core.Outcome, error) {
	return outcomeOf(e.pickUp.Handle(ctx, pickupbook.BuildCommand(reservationID, e.cfg.clock())))
}

// ApproveTakeBook is PickUp confirmed by a librarian.
func (e *Engine) ApproveTakeBook(ctx context.Context, reservationID core.ReservationID) (core.Outcome, error) {
	return outcomeOf(e.pickUp.Handle(ctx, pickupbook.BuildApprovalCommand(reservationID, e.cfg.clock())))
}

// Cancel withdraws the user's reservation.
func (e *Engine) Cancel(ctx context.Context, userID core.UserID, reservationID core.ReservationID) (core.Outcome, error) {
	return outcomeOf(e.cancel.Handle(ctx, cancelreservation.BuildCommand(userID, reservationID, e.cfg.clock())))
}

// ReturnBook takes back the picked up copy.
func (e *Engine) ReturnBook(ctx context.Context, reservationID core.ReservationID) (core.Outcome, error) {
	return outcomeOf(e.returnBook.Handle(ctx, returnbook.BuildCommand(reservationID, e.cfg.clock())))
}

// AutoAssignNextUser assigns one copy on the shelf to the earliest queued reservation of the book.
func (e *Engine) AutoAssignNextUser(ctx context.Context, bookID core.BookID) (core.Outcome, error) {
	return outcomeOf(e.autoAssign.Handle(ctx, autoassignnextuser.BuildCommand(bookID, e.cfg.clock())))
}

// AddBookCopies restocks the book and assigns the new copies to the queue.
func (e *Engine) AddBookCopies(ctx context.Context, bookID core.BookID, count int) (core.Outcome, error) {
	return outcomeOf(e.addCopies.Handle(ctx, addbookcopies.BuildCommand(bookID, count, e.cfg.clock())))
}

// GetAllReservations lists all reservations oldest first, optionally restricted to one status.
func (e *Engine) GetAllReservations(ctx context.Context, filter store.StatusFilter) (allreservations.Reservations, error) {
	return e.allReservations.Handle(ctx, allreservations.Query{Filter: filter})
}

// GetUserReservations lists the user's reservations newest first.
func (e *Engine) GetUserReservations(ctx context.Context, userID core.UserID) (userreservations.UserReservations, error) {
	return e.userReservations.Handle(ctx, userreservations.BuildQuery(userID))
}

// RegisterBook adds a book with the given stock to the catalog.
func (e *Engine) RegisterBook(ctx context.Context, title string, quantity int) (core.Book, error) {
	if quantity < 0 {
		return core.Book{}, fmt.Errorf("%w: got %d", core.ErrInvalidCopyCount, quantity)
	}

	id, err := e.cfg.newID()
	if err != nil {
		return core.Book{}, err
	}

	book := core.Book{ID: id, Title: title, Quantity: quantity}
	if err = e.catalog.RegisterBook(ctx, book); err != nil {
		return core.Book{}, err
	}

	return book, nil
}

// RegisterUser adds a user to the catalog.
func (e *Engine) RegisterUser(ctx context.Context, nickname string) (core.User, error) {
	id, err := e.cfg.newID()
	if err != nil {
		return core.User{}, err
	}

	user := core.User{ID: id, Nickname: nickname}
	if err = e.catalog.RegisterUser(ctx, user); err != nil {
		return core.User{}, err
	}

	return user, nil
}

func outcomeOf(result shell.HandlerResult, err error) (core.Outcome, error) {
	if err != nil {
		return core.Outcome{}, err
	}

	return result.Outcome, nil
}
