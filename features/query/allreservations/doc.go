// Package allreservations implements the All Reservations query use case.
//
// It lists every reservation in creation order, optionally restricted to one status,
// with the book title and the user nickname joined in. A reservation whose book or user
// is not in the catalog is listed with a placeholder name instead of failing the report.
//
// This is a read-only operation, it tolerates slightly stale data and reads with eventual consistency.
package allreservations
