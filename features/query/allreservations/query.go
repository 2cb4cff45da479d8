package allreservations

import (
	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/store"
)

const (
	queryType = "AllReservations"
)

// Query represents the intent to list all reservations.
type Query struct {
	Filter store.StatusFilter
}

// BuildQuery creates a Query over reservations in every status.
func BuildQuery() Query {
	return Query{
		Filter: store.AnyStatus(),
	}
}

// BuildQueryForStatus creates a Query over reservations in exactly the given status.
func BuildQueryForStatus(status core.Status) Query {
	return Query{
		Filter: store.OnlyStatus(status),
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
