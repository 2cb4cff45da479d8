// Package httpapi is the thin HTTP boundary of the reservation engine.
//
// Routes:
//
//	POST /reservations                      {userId, bookId}
//	POST /reservations/:id/pickup
//	POST /reservations/:id/approve-take
//	POST /reservations/:id/cancel           {userId}
//	POST /reservations/:id/return
//	POST /books/:id/auto-assign
//	POST /books/:id/copies                  {count}
//	GET  /reservations?status=N
//	GET  /users/:id/reservations
//
// Commands answer with {message, status}, status being the reservation status code or -1 for a rejection.
package httpapi
