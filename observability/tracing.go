package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/xraph/hookstream"

// Tracer provides OpenTelemetry tracing for hookstream.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a new hookstream tracer.
func NewTracer() *Tracer {
	return &Tracer{
		tracer: otel.Tracer(tracerName),
	}
}

// StartFanoutSpan starts a span covering payload production and subscriber
// fanout for one delivery.
func (t *Tracer) StartFanoutSpan(ctx context.Context, webhookID, bundleID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "hookstream.fanout",
		trace.WithAttributes(
			attribute.String("hookstream.webhook_id", webhookID),
			attribute.String("hookstream.bundle_id", bundleID),
		),
	)
}

// EndFanoutSpan ends a fanout span with result attributes.
func (t *Tracer) EndFanoutSpan(span trace.Span, subscribers int, err string) {
	span.SetAttributes(attribute.Int("hookstream.subscribers", subscribers))
	if err != "" {
		span.SetAttributes(attribute.String("hookstream.error", err))
	}
	span.End()
}
