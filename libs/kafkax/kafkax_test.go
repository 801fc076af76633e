package kafkax

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers %v", got)
	}
	if ReadyCheck("") != nil {
		t.Fatal("expected nil check without brokers")
	}
}

func TestNewMessageCarriesMetaAndTrace(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	msg := NewMessage(ctx, "agenda.appointment.rescheduled.v1", "appt-1", []byte(`{}`))
	if msg.Topic != "agenda.appointment.rescheduled.v1" || string(msg.Key) != "appt-1" {
		t.Fatalf("unexpected routing %q/%q", msg.Topic, msg.Key)
	}
	meta := ExtractEventMeta(msg)
	if meta.EventID == "" || meta.EventType != "agenda.appointment.rescheduled.v1" {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if HeaderValue(msg.Headers, "traceparent") == "" {
		t.Fatal("expected traceparent header")
	}

	extracted := ExtractTraceContext(context.Background(), msg)
	if got := trace.SpanContextFromContext(extracted).TraceID().String(); got != span.SpanContext().TraceID().String() {
		t.Fatalf("trace id not propagated: %s", got)
	}
}
