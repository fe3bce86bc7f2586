package observability

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/asyncjobs/ext"
	"github.com/xraph/asyncjobs/job"
	"github.com/xraph/asyncjobs/report"
)

// Compile-time interface checks.
var (
	_ ext.Extension          = (*MetricsExtension)(nil)
	_ ext.JobCreated         = (*MetricsExtension)(nil)
	_ ext.JobStarted         = (*MetricsExtension)(nil)
	_ ext.JobSucceeded       = (*MetricsExtension)(nil)
	_ ext.JobFailed          = (*MetricsExtension)(nil)
	_ ext.JobCancelled       = (*MetricsExtension)(nil)
	_ ext.JobRemoved         = (*MetricsExtension)(nil)
	_ ext.TransitionRejected = (*MetricsExtension)(nil)
)

const meterName = "github.com/xraph/asyncjobs/observability"

// MetricsExtension records job lifecycle metrics through an OTel meter.
// Register it as a tracker extension to track how many jobs pass through
// each status and how long they take to settle.
//
// Every counter carries a job_name attribute; the rejection counter also
// carries the violation code and level.
type MetricsExtension struct {
	JobCreated   metric.Int64Counter
	JobStarted   metric.Int64Counter
	JobSucceeded metric.Int64Counter
	JobFailed    metric.Int64Counter
	JobCancelled metric.Int64Counter
	JobRemoved   metric.Int64Counter
	Rejected     metric.Int64Counter
	JobDuration  metric.Float64Histogram
}

// NewMetricsExtension creates a MetricsExtension using the global MeterProvider.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the provided meter.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	counter := func(name, desc string) metric.Int64Counter {
		// On error the OTel API returns a noop instrument.
		c, _ := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("{job}"))
		return c
	}
	duration, _ := meter.Float64Histogram(
		"asyncjobs.job.duration",
		metric.WithDescription("Time from PENDING to a terminal status in seconds"),
		metric.WithUnit("s"),
	)

	return &MetricsExtension{
		JobCreated:   counter("asyncjobs.job.created", "Jobs registered by CREATE"),
		JobStarted:   counter("asyncjobs.job.started", "Jobs moved to PENDING"),
		JobSucceeded: counter("asyncjobs.job.succeeded", "Jobs moved to SUCCESS"),
		JobFailed:    counter("asyncjobs.job.failed", "Jobs moved to FAILURE"),
		JobCancelled: counter("asyncjobs.job.cancelled", "Jobs moved to CANCELLED"),
		JobRemoved:   counter("asyncjobs.job.removed", "Jobs removed from the state"),
		Rejected:     counter("asyncjobs.action.rejected", "Actions that could not be applied"),
		JobDuration:  duration,
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

func nameAttr(j *job.Job) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("job_name", j.Name))
}

// ── Job lifecycle hooks ─────────────────────────────

// OnJobCreated implements ext.JobCreated.
func (m *MetricsExtension) OnJobCreated(ctx context.Context, j *job.Job) error {
	m.JobCreated.Add(ctx, 1, nameAttr(j))
	return nil
}

// OnJobStarted implements ext.JobStarted.
func (m *MetricsExtension) OnJobStarted(ctx context.Context, j *job.Job) error {
	m.JobStarted.Add(ctx, 1, nameAttr(j))
	return nil
}

// OnJobSucceeded implements ext.JobSucceeded.
func (m *MetricsExtension) OnJobSucceeded(ctx context.Context, j *job.Job, elapsed time.Duration) error {
	m.JobSucceeded.Add(ctx, 1, nameAttr(j))
	m.recordDuration(ctx, j, elapsed)
	return nil
}

// OnJobFailed implements ext.JobFailed.
func (m *MetricsExtension) OnJobFailed(ctx context.Context, j *job.Job, _ error) error {
	m.JobFailed.Add(ctx, 1, nameAttr(j))
	m.recordDuration(ctx, j, ext.Elapsed(j, job.StatusFailure))
	return nil
}

// OnJobCancelled implements ext.JobCancelled.
func (m *MetricsExtension) OnJobCancelled(ctx context.Context, j *job.Job) error {
	m.JobCancelled.Add(ctx, 1, nameAttr(j))
	m.recordDuration(ctx, j, ext.Elapsed(j, job.StatusCancelled))
	return nil
}

// OnJobRemoved implements ext.JobRemoved.
func (m *MetricsExtension) OnJobRemoved(ctx context.Context, j *job.Job) error {
	m.JobRemoved.Add(ctx, 1, nameAttr(j))
	return nil
}

// ── Rejections ──────────────────────────────────────

// OnTransitionRejected implements ext.TransitionRejected.
func (m *MetricsExtension) OnTransitionRejected(ctx context.Context, v *report.Violation) error {
	m.Rejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("job_name", v.Action.Name),
		attribute.String("code", strconv.Itoa(int(v.Code))),
		attribute.String("level", string(v.Level())),
	))
	return nil
}

// recordDuration skips jobs that never entered PENDING.
func (m *MetricsExtension) recordDuration(ctx context.Context, j *job.Job, elapsed time.Duration) {
	if _, ok := j.Timestamp(job.StatusPending); !ok {
		return
	}
	m.JobDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("job_name", j.Name),
		attribute.String("status", string(j.Status)),
	))
}
