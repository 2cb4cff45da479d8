// Package autoassignnextuser implements the Auto Assign Next User use case.
//
// One copy on the shelf is assigned to the earliest queued reservation of the book.
// Exactly one reservation is promoted per command.
package autoassignnextuser
