package allreservations

import (
	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/shell/displaynames"
)

const (
	unknownBook = "Unknown Book"
	unknownUser = "Unknown User"
)

// Project implements the report logic.
// This is a pure function with no side effects - it keeps the order of the reservations
// it gets from the store and joins in the resolved display names.
//
// Query Logic:
//
//	GIVEN: The reservations in creation order
//	WHEN: AllReservations query is executed
//	THEN: one row per reservation passing the status filter is returned, oldest first
//	INCLUDES: book title and user nickname, "Unknown Book" / "Unknown User" if not resolved
func Project(reservations []core.Reservation, names displaynames.Names, query Query) Reservations {
	views := make([]ReservationView, 0, len(reservations))

	for _, r := range reservations {
		if !query.Filter.Matches(r) {
			continue
		}

		title, ok := names.Title(r.BookID)
		if !ok {
			title = unknownBook
		}

		nickname, ok := names.Nickname(r.UserID)
		if !ok {
			nickname = unknownUser
		}

		views = append(views, ReservationView{
			ReservationID: r.ID,
			UserID:        r.UserID,
			Nickname:      nickname,
			BookID:        r.BookID,
			Title:         title,
			CreateDate:    r.CreateDate,
			TakeDate:      r.TakeDate,
			ReturnDate:    r.ReturnDate,
			Status:        r.Status,
		})
	}

	return Reservations{
		Reservations: views,
		Count:        len(views),
	}
}
