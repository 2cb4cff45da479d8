package core

import "time"

// Book is the inventory unit the reservations compete for.
type Book struct {
	ID    BookID
	Title string

	// Quantity counts copies on the shelf that are neither assigned nor picked up.
	Quantity int

	// NumReservation counts reservation requests ever made, it is for display only.
	NumReservation int

	// LastReservedAt is the creation date of the book's newest reservation.
	LastReservedAt time.Time

	// Version is the optimistic concurrency token, every saved change of the book
	// or one of its reservations increments it.
	Version uint
}

// TakeCopy removes one copy from the shelf.
func (b Book) TakeCopy() Book {
	b.Quantity--
	return b
}

// PutBackCopy puts one copy back on the shelf.
func (b Book) PutBackCopy() Book {
	b.Quantity++
	return b
}

// CountReservation increments the cumulative reservation counter.
func (b Book) CountReservation() Book {
	b.NumReservation++
	return b
}

// UncountReservation decrements the reservation counter, it never drops below zero.
func (b Book) UncountReservation() Book {
	if b.NumReservation > 0 {
		b.NumReservation--
	}

	return b
}

// User is the part of a library user the engine needs.
type User struct {
	ID       UserID
	Nickname string
}
