package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/library-reservations-go/store"
)

// Span status strings reported by the store engines and the observable handlers.
const (
	statusSuccess             = "success"
	statusError               = "error"
	statusRejected            = "rejected"
	statusCanceled            = "canceled"
	statusTimeout             = "timeout"
	statusConcurrencyConflict = "concurrency_conflict"

	attrStatus = "status"
)

// TracingCollector implements store.TracingCollector with an OpenTelemetry tracer.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a collector on top of a tracer from the service's TracerProvider.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts a span carrying attrs and returns the context holding it.
func (t *TracingCollector) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, store.SpanContext) {
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for key, value := range attrs {
		kvs = append(kvs, attribute.String(key, value))
	}

	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(kvs...))

	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan sets the final attributes and status and ends the span.
// Span contexts that were not started by a TracingCollector are ignored.
func (t *TracingCollector) FinishSpan(spanCtx store.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	for key, value := range attrs {
		otelSpanCtx.span.SetAttributes(attribute.String(key, value))
	}

	otelSpanCtx.SetStatus(status)
	otelSpanCtx.span.End()
}

var _ store.TracingCollector = (*TracingCollector)(nil)

// OTelSpanContext implements store.SpanContext by wrapping an OpenTelemetry span.
type OTelSpanContext struct {
	span trace.Span
}

// SetStatus maps a status string onto the span status.
// A business rejection is a successful operation from the tracing point of view.
func (s *OTelSpanContext) SetStatus(status string) {
	switch status {
	case statusSuccess:
		s.span.SetStatus(codes.Ok, "")
	case statusRejected:
		s.span.SetStatus(codes.Ok, "")
		s.span.SetAttributes(attribute.String(attrStatus, status))
	case statusError:
		s.span.SetStatus(codes.Error, "operation failed")
	case statusCanceled:
		s.span.SetStatus(codes.Error, "operation canceled")
	case statusTimeout:
		s.span.SetStatus(codes.Error, "operation timed out")
	case statusConcurrencyConflict:
		s.span.SetStatus(codes.Error, "concurrency conflict")
	default:
		s.span.SetAttributes(attribute.String(attrStatus, status))
	}
}

// AddAttribute adds a string attribute to the span.
func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var _ store.SpanContext = (*OTelSpanContext)(nil)
