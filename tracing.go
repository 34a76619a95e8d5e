package moor

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is looked up lazily against whatever TracerProvider the
// application has installed via otel.SetTracerProvider; this package never
// configures exporters itself, matching a library's role versus an
// application's.
func tracer() trace.Tracer {
	return otel.Tracer("github.com/brigantine/moor")
}

// startSpan starts a span named name as a child of any span already in ctx,
// tagging it with attrs.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err on span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
