package userreservations

import (
	"context"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/shell/displaynames"
	"github.com/AntonStoeckl/library-reservations-go/store"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	QueryByUser(ctx context.Context, userID core.UserID) ([]core.Reservation, error)
}

// NameResolver looks up the display names the list joins in.
type NameResolver interface {
	Resolve(ctx context.Context, reservations []core.Reservation) (displaynames.Names, error)
}

// QueryHandler orchestrates the complete query processing workflow.
type QueryHandler struct {
	store Store
	names NameResolver
}

// NewQueryHandler creates a new QueryHandler with the provided dependencies.
func NewQueryHandler(s Store, names NameResolver) QueryHandler {
	return QueryHandler{
		store: s,
		names: names,
	}
}

// Handle executes the complete query processing workflow: Query -> Resolve -> Project.
func (h QueryHandler) Handle(ctx context.Context, query Query) (UserReservations, error) {
	// Use eventual consistency, a reservation list may lag behind the latest command
	ctx = store.WithEventualConsistency(ctx)

	reservations, err := h.store.QueryByUser(ctx, query.UserID)
	if err != nil {
		return UserReservations{}, err
	}

	names, err := h.names.Resolve(ctx, reservations)
	if err != nil {
		return UserReservations{}, err
	}

	return Project(reservations, names, query), nil
}
