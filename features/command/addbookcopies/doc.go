// Package addbookcopies implements the Add Book Copies use case.
//
// A librarian restocks a book. The new copies go to the queue first:
// queued reservations are promoted in FIFO order until either the copies or the queue run out.
package addbookcopies
