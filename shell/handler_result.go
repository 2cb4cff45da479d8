package shell

import (
	"time"

	"github.com/AntonStoeckl/library-reservations-go/core"
)

// HandlerResult represents the outcome of a command handler execution.
// It captures both the business outcome and execution metadata (retry information)
// without coupling the handler to specific observability implementations.
type HandlerResult struct {
	// Outcome is what the operation reports back to its caller.
	Outcome core.Outcome

	// Rejected indicates a business rejection (not found, forbidden, invalid state, nothing to assign).
	// This is a first-class business outcome, not an error condition.
	Rejected bool

	// RetryAttempts is the total number of attempts made (1 for no retries, 2+ for retries).
	RetryAttempts int

	// TotalRetryDelay is the cumulative time spent in retry backoff delays.
	TotalRetryDelay time.Duration

	// LastErrorType describes the type of the final error encountered during retries.
	// Values: "none" (success), "concurrency_conflict", "context_canceled", "context_deadline_exceeded", "other"
	LastErrorType string

	// RetriesExhausted indicates whether max retry attempts were reached with a retryable error.
	RetriesExhausted bool

	// NotificationErr is set when the changes were saved but notifying about new assignments failed.
	// The saved changes stay in place.
	NotificationErr error
}

// NewSuccessResult creates a HandlerResult for operations whose changes were saved.
func NewSuccessResult(outcome core.Outcome, retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		Outcome:          outcome,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}

// NewRejectedResult creates a HandlerResult for business rejections, nothing was saved.
func NewRejectedResult(outcome core.Outcome, retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		Outcome:          outcome,
		Rejected:         true,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}

// NewErrorResult creates a HandlerResult for failed operations.
// This is used when the handler returns an error but still wants to report retry metadata.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}

// NewDecidedResult picks the success or rejected result depending on the outcome.
func NewDecidedResult(outcome core.Outcome, retryMetrics RetryMetrics) HandlerResult {
	if outcome.IsRejected() {
		return NewRejectedResult(outcome, retryMetrics)
	}

	return NewSuccessResult(outcome, retryMetrics)
}

// WithNotificationErr attaches a failed notification to the result.
func (r HandlerResult) WithNotificationErr(err error) HandlerResult {
	r.NotificationErr = err
	return r
}
