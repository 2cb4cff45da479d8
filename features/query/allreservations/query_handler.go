package allreservations

import (
	"context"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/shell/displaynames"
	"github.com/AntonStoeckl/library-reservations-go/store"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	QueryByStatus(ctx context.Context, filter store.StatusFilter) ([]core.Reservation, error)
}

// NameResolver looks up the display names the report joins in.
type NameResolver interface {
	Resolve(ctx context.Context, reservations []core.Reservation) (displaynames.Names, error)
}

// QueryHandler orchestrates the complete query processing workflow.
// It handles store interactions and delegates projection logic to the pure Project function.
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
func (h QueryHandler) Handle(ctx context.Context, query Query) (Reservations, error) {
	ctx = store.WithEventualConsistency(ctx)

	// Query phase
	reservations, err := h.store.QueryByStatus(ctx, query.Filter)
	if err != nil {
		return Reservations{}, err
	}

	// Resolve phase
	names, err := h.names.Resolve(ctx, reservations)
	if err != nil {
		return Reservations{}, err
	}

	// Projection phase
	return Project(reservations, names, query), nil
}
