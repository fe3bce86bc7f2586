package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/asyncjobs/action"
)

// tracerName is the instrumentation scope name for asyncjobs tracing.
const tracerName = "github.com/xraph/asyncjobs"

// Tracing returns middleware that wraps each dispatch in an OpenTelemetry
// span. If no TracerProvider is configured globally, the default noop
// tracer is used and this middleware becomes a pass-through.
//
// Span attributes: asyncjobs.action.type, asyncjobs.action.kind,
// asyncjobs.job.id, asyncjobs.job.name.
func Tracing() Middleware {
	return TracingWithTracer(otel.Tracer(tracerName))
}

// TracingWithTracer returns tracing middleware using the provided tracer.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, a action.Action, next Handler) error {
		kind, _ := a.Kind()
		ctx, span := tracer.Start(ctx, "asyncjobs.dispatch",
			trace.WithAttributes(
				attribute.String("asyncjobs.action.type", a.Type),
				attribute.String("asyncjobs.action.kind", string(kind)),
				attribute.String("asyncjobs.job.id", a.ID),
				attribute.String("asyncjobs.job.name", a.Name),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}
