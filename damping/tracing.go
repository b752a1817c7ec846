package damping

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingSubscriber adapts the controller's event stream to OpenTelemetry
// spans, standing in for the Tracing collaborator of spec §6 (an event
// sink registered elsewhere at runtime). It never implements the sink
// itself — subscription and delivery remain that subsystem's job — it only
// gives the damper's own emitted events a span each, the way a caller
// using go.opentelemetry.io/otel/trace would instrument any other
// subprotocol step.
type TracingSubscriber struct {
	ctx    context.Context
	tracer trace.Tracer
}

// NewTracingSubscriber returns a Subscriber that opens one short span per
// event under tracer, with the event's contextual fields as attributes.
func NewTracingSubscriber(ctx context.Context, tracer trace.Tracer) *TracingSubscriber {
	return &TracingSubscriber{ctx: ctx, tracer: tracer}
}

func (t *TracingSubscriber) OnDampingEvent(e Event) {
	attrs := []attribute.KeyValue{
		attribute.Int("damp.r_val", e.RVal),
		attribute.Int("damp.flapper_count", len(e.Flappers)),
		attribute.Int("damp.observer_count", len(e.Observers)),
	}

	if e.Err != nil {
		attrs = append(attrs, attribute.String("damp.error", e.Err.Error()))
	}

	_, span := t.tracer.Start(t.ctx, string(e.Kind), trace.WithAttributes(attrs...))
	span.End()
}
