package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/asyncjobs/action"
)

// meterName is the instrumentation scope name for asyncjobs metrics.
const meterName = "github.com/xraph/asyncjobs"

// Metrics returns middleware that records per-dispatch metrics using the
// global OTel MeterProvider.
//
// Instruments:
//   - asyncjobs.dispatch.duration (Float64Histogram): time spent in the
//     rest of the chain in seconds, with attributes kind and status
//   - asyncjobs.dispatch.actions (Int64Counter): dispatched actions, with
//     attributes kind and status ("applied", "rejected", "dropped" or
//     "foreign")
func Metrics() Middleware {
	return MetricsWithMeter(otel.Meter(meterName))
}

// MetricsWithMeter returns metrics middleware using the provided meter.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// On error the OTel API returns noop instruments.
	duration, _ := meter.Float64Histogram(
		"asyncjobs.dispatch.duration",
		metric.WithDescription("Duration of action dispatch in seconds"),
		metric.WithUnit("s"),
	)
	actions, _ := meter.Int64Counter(
		"asyncjobs.dispatch.actions",
		metric.WithDescription("Total number of dispatched actions"),
		metric.WithUnit("{action}"),
	)

	return func(ctx context.Context, a action.Action, next Handler) error {
		ctx, out := withOutcome(ctx)
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start).Seconds()

		kind, ok := a.Kind()
		status := "applied"
		switch {
		case !ok:
			status = "foreign"
		case err != nil:
			status = "rejected"
		case out.dropped:
			status = "dropped"
		}

		attrs := metric.WithAttributes(
			attribute.String("kind", string(kind)),
			attribute.String("status", status),
		)
		duration.Record(ctx, elapsed, attrs)
		actions.Add(ctx, 1, attrs)

		return err
	}
}
