package httpapi

import (
	"time"

	"github.com/AntonStoeckl/library-reservations-go/core"
	"github.com/AntonStoeckl/library-reservations-go/features/query/allreservations"
	"github.com/AntonStoeckl/library-reservations-go/features/query/userreservations"
)

type outcomeResponse struct {
	Message       string           `json:"message"`
	Status        int              `json:"status"`
	ReservationID string           `json:"reservationId,omitempty"`
	Cascade       *cascadeResponse `json:"cascade,omitempty"`
	Promoted      int              `json:"promoted,omitempty"`
}

type cascadeResponse struct {
	ReservationID string `json:"reservationId"`
	UserID        string `json:"userId"`
	Message       string `json:"message"`
}

type reservationResponse struct {
	ReservationID string     `json:"reservationId"`
	UserID        string     `json:"userId,omitempty"`
	Nickname      string     `json:"nickname"`
	BookID        string     `json:"bookId"`
	Title         string     `json:"title"`
	CreateDate    time.Time  `json:"createDate"`
	TakeDate      *time.Time `json:"takeDate,omitempty"`
	ReturnDate    *time.Time `json:"returnDate,omitempty"`
	Status        int        `json:"status"`
}

type reservationsResponse struct {
	Reservations []reservationResponse `json:"reservations"`
	Count        int                   `json:"count"`
}

func outcomeResponseFrom(outcome core.Outcome) outcomeResponse {
	response := outcomeResponse{
		Message:  outcome.Message,
		Status:   outcome.StatusCode(),
		Promoted: outcome.Promoted,
	}

	if outcome.ReservationID != (core.ReservationID{}) {
		response.ReservationID = outcome.ReservationID.String()
	}

	if outcome.Cascade != nil {
		response.Cascade = &cascadeResponse{
			ReservationID: outcome.Cascade.ReservationID.String(),
			UserID:        outcome.Cascade.UserID.String(),
			Message:       outcome.Cascade.Message,
		}
	}

	return response
}

func allReservationsResponseFrom(result allreservations.Reservations) reservationsResponse {
	rows := make([]reservationResponse, 0, len(result.Reservations))
	for _, r := range result.Reservations {
		rows = append(rows, reservationResponse{
			ReservationID: r.ReservationID.String(),
			UserID:        r.UserID.String(),
			Nickname:      r.Nickname,
			BookID:        r.BookID.String(),
			Title:         r.Title,
			CreateDate:    r.CreateDate,
			TakeDate:      r.TakeDate,
			ReturnDate:    r.ReturnDate,
			Status:        r.Status.Code(),
		})
	}

	return reservationsResponse{Reservations: rows, Count: result.Count}
}

func userReservationsResponseFrom(result userreservations.UserReservations) reservationsResponse {
	rows := make([]reservationResponse, 0, len(result.Reservations))
	for _, r := range result.Reservations {
		rows = append(rows, reservationResponse{
			ReservationID: r.ReservationID.String(),
			UserID:        result.UserID.String(),
			Nickname:      r.Nickname,
			BookID:        r.BookID.String(),
			Title:         r.Title,
			CreateDate:    r.CreateDate,
			TakeDate:      r.TakeDate,
			ReturnDate:    r.ReturnDate,
			Status:        r.Status.Code(),
		})
	}

	return reservationsResponse{Reservations: rows, Count: result.Count}
}
