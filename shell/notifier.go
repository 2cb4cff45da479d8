package shell

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

// Notifier publishes that reservations were assigned a copy, e.g. to trigger an email to the user.
// It is called after the changes were saved.
type Notifier interface {
	NotifyAssigned(ctx context.Context, assignments []core.Assignment) error
}

// NotifyAssigned publishes the assignments with the given notifier.
// A nil notifier and an empty list are no-ops. Failures are joined with ErrNotificationFailed.
func NotifyAssigned(ctx context.Context, notifier Notifier, assignments []core.Assignment) error {
	if notifier == nil || len(assignments) == 0 {
		return nil
	}

	if err := notifier.NotifyAssigned(ctx, assignments); err != nil {
		return errors.Join(ErrNotificationFailed, err)
	}

	return nil
}
