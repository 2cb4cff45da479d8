package userreservations

import (
	"github.com/AntonStoeckl/library-reservations-go/core"
)

const (
	queryType = "UserReservations"
)

// Query represents the intent to list the reservations of a user.
type Query struct {
	UserID core.UserID
}

// BuildQuery creates a new Query with the provided user ID.
func BuildQuery(userID core.UserID) Query {
	return Query{
		UserID: userID,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
