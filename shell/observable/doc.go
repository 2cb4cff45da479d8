// Package observable provides observability decorators for command and query handlers.
//
// CommandWrapper and QueryWrapper add metrics, tracing, and logging around a core handler,
// which stays free of any observability concern. A business rejection is recorded with status "rejected",
// not as an error. A failed assignment notification after saved changes is logged as a warning.
package observable
