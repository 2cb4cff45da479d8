// Package returnbook implements the Return Book use case.
//
// A picked up copy comes back to the library. It goes back on the shelf
// and is handed to the next user in the book's queue in the same atomic unit.
package returnbook
