package otelx

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestSetupDisabledInstallsPropagators(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false, ServiceName: "test"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "drag")
	defer span.End()

	stored := CaptureTrace(ctx)
	if stored.Empty() {
		t.Fatal("expected traceparent after Setup")
	}
	restored := stored.Context(context.Background())
	if trace.SpanContextFromContext(restored).TraceID() != span.SpanContext().TraceID() {
		t.Fatal("trace id lost in round trip")
	}
	if link := stored.Link(); link.SpanContext.SpanID() != span.SpanContext().SpanID() {
		t.Fatalf("link should point at the captured span, got %s", link.SpanContext.SpanID())
	}
	if (StoredTrace{}).Context(ctx) != ctx {
		t.Fatal("empty trace should return ctx unchanged")
	}
	if (StoredTrace{}).Link().SpanContext.IsValid() {
		t.Fatal("empty trace should yield an invalid link")
	}
	if !CaptureTrace(context.Background()).Empty() {
		t.Fatal("no span means nothing to capture")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.25")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4317")
	cfg := ConfigFromEnv("agenda-service")
	if !cfg.Enabled || cfg.SampleRatio != 0.25 || cfg.OTLPEndpoint != "collector:4317" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
