package observability_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/xraph/asyncjobs/action"
	"github.com/xraph/asyncjobs/ext"
	"github.com/xraph/asyncjobs/job"
	"github.com/xraph/asyncjobs/observability"
	"github.com/xraph/asyncjobs/report"
)

func newTestExtension() (*observability.MetricsExtension, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return observability.NewMetricsExtensionWithMeter(mp.Meter("test")), reader
}

func newTestJob(status job.Status) *job.Job {
	return &job.Job{
		ID:     "job_1",
		Name:   "send-email",
		Status: status,
		Timestamps: job.Timestamps{
			job.StatusPending: 1000,
			status:            3500,
		},
	}
}

// counterValue sums every data point of the named counter.
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s: expected Sum[int64], got %T", name, m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func histogramCount(t *testing.T, reader *sdkmetric.ManualReader, name string) uint64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			hist, ok := m.Data.(metricdata.Histogram[float64])
			if !ok {
				t.Fatalf("%s: expected Histogram[float64], got %T", name, m.Data)
			}
			var total uint64
			for _, dp := range hist.DataPoints {
				total += dp.Count
			}
			return total
		}
	}
	return 0
}

func TestMetricsExtension_Name(t *testing.T) {
	e, _ := newTestExtension()
	if e.Name() != "observability-metrics" {
		t.Errorf("Name() = %q, want %q", e.Name(), "observability-metrics")
	}
}

func TestMetricsExtension_Hooks(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		metric string
		fire   func(e *observability.MetricsExtension) error
	}{
		{"asyncjobs.job.created", func(e *observability.MetricsExtension) error {
			return e.OnJobCreated(ctx, newTestJob(job.StatusCreated))
		}},
		{"asyncjobs.job.started", func(e *observability.MetricsExtension) error {
			return e.OnJobStarted(ctx, newTestJob(job.StatusPending))
		}},
		{"asyncjobs.job.succeeded", func(e *observability.MetricsExtension) error {
			return e.OnJobSucceeded(ctx, newTestJob(job.StatusSuccess), 2500*time.Millisecond)
		}},
		{"asyncjobs.job.failed", func(e *observability.MetricsExtension) error {
			return e.OnJobFailed(ctx, newTestJob(job.StatusFailure), errors.New("boom"))
		}},
		{"asyncjobs.job.cancelled", func(e *observability.MetricsExtension) error {
			return e.OnJobCancelled(ctx, newTestJob(job.StatusCancelled))
		}},
		{"asyncjobs.job.removed", func(e *observability.MetricsExtension) error {
			return e.OnJobRemoved(ctx, newTestJob(job.StatusSuccess))
		}},
		{"asyncjobs.action.rejected", func(e *observability.MetricsExtension) error {
			return e.OnTransitionRejected(ctx, report.New(report.CodeJobDoesNotExistError, action.Succeed("send-email", "job_x")))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			e, reader := newTestExtension()
			if err := tt.fire(e); err != nil {
				t.Fatalf("hook returned error: %v", err)
			}
			if got := counterValue(t, reader, tt.metric); got != 1 {
				t.Errorf("%s = %d, want 1", tt.metric, got)
			}
		})
	}
}

func TestMetricsExtension_Duration(t *testing.T) {
	ctx := context.Background()
	e, reader := newTestExtension()

	_ = e.OnJobSucceeded(ctx, newTestJob(job.StatusSuccess), 2500*time.Millisecond)
	_ = e.OnJobFailed(ctx, newTestJob(job.StatusFailure), errors.New("boom"))

	// A job cancelled before it was started has no duration.
	never := &job.Job{ID: "job_2", Name: "send-email", Status: job.StatusCancelled,
		Timestamps: job.Timestamps{job.StatusCreated: 1000, job.StatusCancelled: 2000}}
	_ = e.OnJobCancelled(ctx, never)

	if got := histogramCount(t, reader, "asyncjobs.job.duration"); got != 2 {
		t.Errorf("duration count = %d, want 2", got)
	}
}

func TestMetricsExtension_ViaRegistry(t *testing.T) {
	ctx := context.Background()
	e, reader := newTestExtension()
	reg := ext.NewRegistry(slog.Default())
	reg.Register(e)

	j := newTestJob(job.StatusSuccess)
	reg.EmitJobCreated(ctx, j)
	reg.EmitJobStarted(ctx, j)
	reg.EmitJobSucceeded(ctx, j, ext.Elapsed(j, job.StatusSuccess))
	reg.EmitJobFailed(ctx, j, errors.New("boom"))
	reg.EmitJobCancelled(ctx, j)
	reg.EmitJobRemoved(ctx, j)
	reg.EmitTransitionRejected(ctx, report.New(report.CodeJobExistsOnCreate, action.Create("send-email")))

	for _, name := range []string{
		"asyncjobs.job.created",
		"asyncjobs.job.started",
		"asyncjobs.job.succeeded",
		"asyncjobs.job.failed",
		"asyncjobs.job.cancelled",
		"asyncjobs.job.removed",
		"asyncjobs.action.rejected",
	} {
		if got := counterValue(t, reader, name); got != 1 {
			t.Errorf("%s: want 1, got %d", name, got)
		}
	}
}
