package otelx

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// StoredTrace is a span's W3C trace context kept inside a persisted record, so a later
// operation on that record can link back to the request that produced it.
type StoredTrace struct {
	Parent string
	State  string
}

// CaptureTrace records the span active in ctx. It is empty when ctx carries no span.
func CaptureTrace(ctx context.Context) StoredTrace {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return StoredTrace{Parent: carrier["traceparent"], State: carrier["tracestate"]}
}

func (s StoredTrace) Empty() bool {
	return s.Parent == "" && s.State == ""
}

// Context restores the stored span as the remote parent of ctx.
func (s StoredTrace) Context(ctx context.Context) context.Context {
	if s.Empty() {
		return ctx
	}
	carrier := propagation.MapCarrier{
		"traceparent": s.Parent,
		"tracestate":  s.State,
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// Link points a new span at the stored one. An empty StoredTrace yields an invalid link,
// which the SDK drops.
func (s StoredTrace) Link() trace.Link {
	return trace.LinkFromContext(s.Context(context.Background()))
}
