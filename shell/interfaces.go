package shell

import (
	"context"
)

// Command represents the contract for all command types of the reservation engine.
// The CommandType method enables polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

// CoreCommandHandler defines the contract for components that process commands with pure business logic.
// Handlers orchestrate the complete workflow: read state, decide, save.
// Implementations focus on the workflow without observability concerns, they are designed to be wrapped
// with observability decorators.
// Handlers return HandlerResult containing the business outcome and execution metadata (retry info).
type CoreCommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}

// Query represents the contract for all query types of the reservation engine.
type Query interface {
	QueryType() string
}

// QueryResult represents the contract for all query results (reporting views).
type QueryResult interface {
	Len() int
}

// CoreQueryHandler defines the contract for components that process queries and return reporting views.
// The generic parameters Q and R ensure type safety between queries and their corresponding results.
type CoreQueryHandler[Q Query, R QueryResult] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
