package store

import "context"

// ConsistencyLevel defines the consistency requirements for reads.
type ConsistencyLevel int

const (
	// StrongConsistency requires reads from the primary database to ensure read-after-write consistency.
	// Command handlers need it, they decide on what they read and the decision must not be based on stale data.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica database.
	// Suitable for the reporting views, which tolerate slightly stale data.
	EventualConsistency
)

// contextKey is a private type to prevent context key collisions.
type contextKey string

// ConsistencyLevelKey is the context key used to store consistency level preferences.
const ConsistencyLevelKey contextKey = "store.consistency_level"

// WithStrongConsistency returns a context that signals reads should go to the primary database.
//
// Example usage:
//
//	ctx = store.WithStrongConsistency(ctx)
//	book, err := s.FindBook(ctx, bookID)
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that signals reads may be served by a replica.
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context.
// If no consistency level is set, it returns StrongConsistency as the safe default.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

// String provides a string representation of ConsistencyLevel for logging and debugging.
func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
