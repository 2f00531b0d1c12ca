// Package observability holds the Prometheus metrics and OpenTelemetry spans
// recorded while parsing documents.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "statement-normalizer"

// Tracer returns tr, or the global tracer when tr is nil.
func Tracer(tr trace.Tracer) trace.Tracer {
	if tr == nil {
		return otel.Tracer(tracerName)
	}
	return tr
}

// StartSpan opens an internal span. The returned func ends it and records err.
func StartSpan(ctx context.Context, tr trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	ctx, span := Tracer(tr).Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(attrs...)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "ok")
		}
		span.End()
	}
}
