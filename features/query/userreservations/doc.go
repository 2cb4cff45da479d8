// Package userreservations implements the User Reservations query use case.
//
// It lists the reservations of one user, newest first, with book titles joined in.
package userreservations
