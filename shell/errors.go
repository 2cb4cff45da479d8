package shell

import "errors"

var (
	// ErrNotificationFailed is joined with the cause when assignment notifications could not be published.
	ErrNotificationFailed = errors.New("notifying about assignments failed")

	// ErrNilStore is returned when a handler is created without a store.
	ErrNilStore = errors.New("store must not be nil")
)
