package userreservations

import (
	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/shell/displaynames"
)

const (
	unknownBook = "Unknown Book"
	unknownUser = "Unknown User"
)

// Project builds the user's reservation list from the reservations the store returned, newest first.
// Reservations of other users are skipped.
func Project(reservations []core.Reservation, names displaynames.Names, query Query) UserReservations {
	nickname, ok := names.Nickname(query.UserID)
	if !ok {
		nickname = unknownUser
	}

	views := make([]ReservationView, 0, len(reservations))
	for _, r := range reservations {
		if r.UserID != query.UserID {
			continue
		}

		title, found := names.Title(r.BookID)
		if !found {
			title = unknownBook
		}

		views = append(views, ReservationView{
			ReservationID: r.ID,
			BookID:        r.BookID,
			Title:         title,
			Nickname:      nickname,
			CreateDate:    r.CreateDate,
			TakeDate:      r.TakeDate,
			ReturnDate:    r.ReturnDate,
			Status:        r.Status,
		})
	}

	return UserReservations{
		UserID:       query.UserID,
		Reservations: views,
		Count:        len(views),
	}
}
