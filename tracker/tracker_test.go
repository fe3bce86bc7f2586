package tracker_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/xraph/asyncjobs"
	"github.com/xraph/asyncjobs/action"
	"github.com/xraph/asyncjobs/job"
	mw "github.com/xraph/asyncjobs/middleware"
	"github.com/xraph/asyncjobs/reducer"
	"github.com/xraph/asyncjobs/report"
	"github.com/xraph/asyncjobs/selector"
	"github.com/xraph/asyncjobs/tracker"
)

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

// fakeClock returns 1000ms, 2000ms, 3000ms, ... on successive calls.
func fakeClock() func() time.Time {
	var n int64
	return func() time.Time {
		n++
		return time.UnixMilli(n * 1000)
	}
}

func newTracker(t *testing.T, opts ...tracker.Option) (*tracker.Tracker, *report.Recorder) {
	t.Helper()
	rec := &report.Recorder{}
	base := []tracker.Option{
		tracker.WithClock(fakeClock()),
		tracker.WithReporter(rec),
		tracker.WithMeterProvider(sdkmetric.NewMeterProvider()),
	}
	tr, err := tracker.New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("tracker.New: %v", err)
	}
	return tr, rec
}

// hookRecorder records every hook the tracker fires.
type hookRecorder struct {
	mu      sync.Mutex
	calls   []string
	elapsed time.Duration
	jobErr  error
}

func (h *hookRecorder) Name() string { return "hook-recorder" }

func (h *hookRecorder) record(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, s)
}

func (h *hookRecorder) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func (h *hookRecorder) OnJobCreated(_ context.Context, j *job.Job) error {
	h.record("created:" + j.ID)
	return nil
}

func (h *hookRecorder) OnJobStarted(_ context.Context, j *job.Job) error {
	h.record("started:" + j.ID)
	return nil
}

func (h *hookRecorder) OnJobSucceeded(_ context.Context, j *job.Job, elapsed time.Duration) error {
	h.elapsed = elapsed
	h.record("succeeded:" + j.ID)
	return nil
}

func (h *hookRecorder) OnJobFailed(_ context.Context, j *job.Job, err error) error {
	h.jobErr = err
	h.record("failed:" + j.ID)
	return nil
}

func (h *hookRecorder) OnJobCancelled(_ context.Context, j *job.Job) error {
	h.record("cancelled:" + j.ID)
	return nil
}

func (h *hookRecorder) OnJobRemoved(_ context.Context, j *job.Job) error {
	h.record("removed:" + j.ID)
	return nil
}

func (h *hookRecorder) OnTransitionRejected(_ context.Context, v *report.Violation) error {
	h.record("rejected:" + v.Action.ID)
	return nil
}

func (h *hookRecorder) OnShutdown(_ context.Context) error {
	h.record("shutdown")
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ──────────────────────────────────────────────────
// Construction
// ──────────────────────────────────────────────────

func TestNew_InvalidPrefix(t *testing.T) {
	_, err := tracker.New(tracker.WithIDPrefix("Bad_Prefix"))
	if !errors.Is(err, asyncjobs.ErrInvalidPrefix) {
		t.Fatalf("expected ErrInvalidPrefix, got %v", err)
	}
}

func TestNew_ConfigPrefix(t *testing.T) {
	cfg := asyncjobs.DefaultConfig()
	cfg.IDPrefix = "fetch"
	tr, _ := newTracker(t, tracker.WithConfig(cfg))

	a := tr.NewSet("FETCH").Start()
	if !strings.HasPrefix(a.ID, "fetch_") {
		t.Errorf("ID = %q, want prefix %q", a.ID, "fetch_")
	}
}

// ──────────────────────────────────────────────────
// Dispatch
// ──────────────────────────────────────────────────

func TestDispatch_Lifecycle(t *testing.T) {
	ctx := context.Background()
	tr, rec := newTracker(t)
	fetch := tr.NewSet("FETCH")

	created := fetch.Create()
	steps := []struct {
		action action.Action
		status job.Status
	}{
		{created, job.StatusCreated},
		{fetch.Start(action.WithID(created.ID)), job.StatusPending},
		{fetch.Succeed(created.ID), job.StatusSuccess},
	}

	for i, step := range steps {
		if err := tr.Dispatch(ctx, step.action); err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		j, ok := tr.Job(created.ID)
		if !ok {
			t.Fatalf("step %d: job not found", i)
		}
		if j.Status != step.status {
			t.Errorf("step %d: status = %s, want %s", i, j.Status, step.status)
		}
	}

	j, _ := tr.Job(created.ID)
	want := job.Timestamps{
		job.StatusCreated: 1000,
		job.StatusPending: 2000,
		job.StatusSuccess: 3000,
	}
	for s, ts := range want {
		if got, _ := j.Timestamp(s); got != ts {
			t.Errorf("timestamp[%s] = %d, want %d", s, got, ts)
		}
	}
	if len(rec.Violations()) != 0 {
		t.Errorf("unexpected violations: %v", rec.Codes())
	}
}

func TestDispatch_ReturnsViolation(t *testing.T) {
	ctx := context.Background()
	tr, rec := newTracker(t)

	tests := []struct {
		name   string
		action action.Action
		code   report.Code
		is     error
	}{
		{"succeed unknown", action.Succeed("FETCH", "job_missing"), report.CodeJobDoesNotExistError, asyncjobs.ErrJobNotFound},
		{"cancel unknown", action.Cancel("FETCH", "job_missing"), report.CodeJobDoesNotExistWarning, asyncjobs.ErrJobNotFound},
		{"malformed", action.Action{Type: "@AJ/START/FETCH", Name: "FETCH"}, report.CodeMalformedAction, asyncjobs.ErrMissingID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec.Reset()
			err := tr.Dispatch(ctx, tt.action)
			v, ok := report.As(err)
			if !ok {
				t.Fatalf("expected *report.Violation, got %v", err)
			}
			if v.Code != tt.code {
				t.Errorf("code = %d, want %d", v.Code, tt.code)
			}
			if !errors.Is(err, tt.is) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.is)
			}
			if codes := rec.Codes(); len(codes) != 1 || codes[0] != tt.code {
				t.Errorf("reported codes = %v, want [%d]", codes, tt.code)
			}
		})
	}

	if tr.State().Len() != 0 {
		t.Errorf("state has %d jobs, want 0", tr.State().Len())
	}
}

type timeoutError struct{ after time.Duration }

func (e *timeoutError) Error() string { return "timeout after " + e.after.String() }

func TestDispatch_FailWithNilPointerError(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTracker(t)
	start := tr.NewSet("FETCH").Start()
	_ = tr.Dispatch(ctx, start)

	var cause *timeoutError
	if err := tr.Dispatch(ctx, action.Fail("FETCH", start.ID, action.WithError(cause))); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	got := make(chan reducer.State, 1)
	go func() { got <- tr.State() }()
	select {
	case s := <-got:
		j, _ := s.Get(start.ID)
		if j.Status != job.StatusFailure {
			t.Errorf("status = %s, want FAILURE", j.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("State blocked after dispatch")
	}
}

func TestDispatch_CreateTwice(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTracker(t)

	a := tr.NewSet("FETCH").Create()
	if err := tr.Dispatch(ctx, a); err != nil {
		t.Fatalf("first create: %v", err)
	}
	before := tr.State()

	err := tr.Dispatch(ctx, a)
	if !errors.Is(err, asyncjobs.ErrJobExists) {
		t.Fatalf("expected ErrJobExists, got %v", err)
	}

	j1, _ := before.Get(a.ID)
	j2, _ := tr.Job(a.ID)
	if j1.Status != j2.Status || len(j1.Timestamps) != len(j2.Timestamps) {
		t.Errorf("job changed after rejected create: %+v -> %+v", j1, j2)
	}
}

func TestDispatch_ForeignAction(t *testing.T) {
	tr, rec := newTracker(t)
	if err := tr.Dispatch(context.Background(), action.Action{Type: "app/PING"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.State().Len() != 0 || len(rec.Violations()) != 0 {
		t.Error("foreign action changed state or reported")
	}
}

func TestDispatch_StateSnapshotsAreImmutable(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTracker(t)
	fetch := tr.NewSet("FETCH")

	start := fetch.Start()
	_ = tr.Dispatch(ctx, start)
	snapshot := tr.State()

	_ = tr.Dispatch(ctx, fetch.Fail(start.ID, action.WithPayload("boom")))

	old, _ := snapshot.Get(start.ID)
	if old.Status != job.StatusPending {
		t.Errorf("snapshot status = %s, want %s", old.Status, job.StatusPending)
	}
	cur, _ := tr.Job(start.ID)
	if cur.Status != job.StatusFailure || cur.Error != "boom" {
		t.Errorf("current = %s/%q, want FAILURE/boom", cur.Status, cur.Error)
	}
}

func TestDispatch_Concurrent(t *testing.T) {
	ctx := context.Background()
	tr, err := tracker.New(tracker.WithReporter(report.Nop), tracker.WithMeterProvider(sdkmetric.NewMeterProvider()))
	if err != nil {
		t.Fatalf("tracker.New: %v", err)
	}
	fetch := tr.NewSet("FETCH")

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a := fetch.Start()
			_ = tr.Dispatch(ctx, a)
			_ = tr.Dispatch(ctx, fetch.Succeed(a.ID))
		}()
	}
	wg.Wait()

	counts := selector.CountByStatus(tr.State(), "FETCH")
	if counts[job.StatusSuccess] != n {
		t.Errorf("succeeded = %d, want %d", counts[job.StatusSuccess], n)
	}
}

// ──────────────────────────────────────────────────
// Subscribers
// ──────────────────────────────────────────────────

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTracker(t)
	fetch := tr.NewSet("FETCH")

	var seen []string
	var lens []int
	unsubscribe := tr.Subscribe(func(a action.Action, s reducer.State) {
		seen = append(seen, a.Type)
		lens = append(lens, s.Len())
	})

	start := fetch.Start()
	_ = tr.Dispatch(ctx, start)
	_ = tr.Dispatch(ctx, fetch.Succeed("job_missing"))
	_ = tr.Dispatch(ctx, fetch.Remove(start.ID))

	unsubscribe()
	unsubscribe()
	_ = tr.Dispatch(ctx, fetch.Start())

	wantSeen := []string{"@AJ/START/FETCH", "@AJ/SUCCEED/FETCH", "@AJ/REMOVE/FETCH"}
	if !equalStrings(seen, wantSeen) {
		t.Errorf("seen = %v, want %v", seen, wantSeen)
	}
	wantLens := []int{1, 1, 0}
	for i := range wantLens {
		if i >= len(lens) || lens[i] != wantLens[i] {
			t.Errorf("lens = %v, want %v", lens, wantLens)
			break
		}
	}
}

func TestSubscribe_CanDispatch(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTracker(t)
	fetch := tr.NewSet("FETCH")

	// Auto-remove jobs as soon as they succeed.
	tr.Subscribe(func(a action.Action, _ reducer.State) {
		if action.Is(a, action.KindSucceed) {
			_ = tr.Dispatch(ctx, fetch.Remove(a.ID))
		}
	})

	start := fetch.Start()
	_ = tr.Dispatch(ctx, start)
	_ = tr.Dispatch(ctx, fetch.Succeed(start.ID))

	if tr.State().Has(start.ID) {
		t.Error("expected job to be removed by subscriber")
	}
}

// ──────────────────────────────────────────────────
// Extensions
// ──────────────────────────────────────────────────

func TestExtensions_Hooks(t *testing.T) {
	ctx := context.Background()
	h := &hookRecorder{}
	tr, _ := newTracker(t, tracker.WithExtension(h))
	fetch := tr.NewSet("FETCH")

	a := fetch.Create()
	b := fetch.Start()
	c := fetch.Start()
	actions := []action.Action{
		a,
		fetch.Start(action.WithID(a.ID)),
		fetch.Succeed(a.ID),
		b,
		fetch.Fail(b.ID, action.WithError(errors.New("timeout"))),
		c,
		fetch.Cancel(c.ID),
		fetch.Remove(a.ID),
		fetch.Remove(a.ID),
	}
	for _, act := range actions {
		_ = tr.Dispatch(ctx, act)
	}
	_ = tr.Close(ctx)

	want := []string{
		"created:" + a.ID,
		"started:" + a.ID,
		"succeeded:" + a.ID,
		"started:" + b.ID,
		"failed:" + b.ID,
		"started:" + c.ID,
		"cancelled:" + c.ID,
		"removed:" + a.ID,
		"rejected:" + a.ID,
		"shutdown",
	}
	if got := h.Calls(); !equalStrings(got, want) {
		t.Errorf("hooks =\n%v\nwant\n%v", got, want)
	}
	// Created at 1000, started at 2000, succeeded at 3000.
	if h.elapsed != time.Second {
		t.Errorf("elapsed = %v, want %v", h.elapsed, time.Second)
	}
	if h.jobErr == nil || h.jobErr.Error() != "timeout" {
		t.Errorf("job error = %v, want timeout", h.jobErr)
	}
}

func TestExtensions_ObservabilityRegistered(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	tr, err := tracker.New(tracker.WithReporter(report.Nop), tracker.WithMeterProvider(mp))
	if err != nil {
		t.Fatalf("tracker.New: %v", err)
	}

	_ = tr.Dispatch(context.Background(), tr.NewSet("FETCH").Start())

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = true
		}
	}
	for _, name := range []string{"asyncjobs.job.started", "asyncjobs.dispatch.actions", "asyncjobs.dispatch.duration"} {
		if !found[name] {
			t.Errorf("metric %q not recorded", name)
		}
	}
}

// ──────────────────────────────────────────────────
// Middleware
// ──────────────────────────────────────────────────

func TestMiddleware_Order(t *testing.T) {
	var order []string
	record := func(tag string) mw.Middleware {
		return func(ctx context.Context, _ action.Action, next mw.Handler) error {
			order = append(order, tag)
			return next(ctx)
		}
	}
	tr, _ := newTracker(t, tracker.WithMiddleware(record("a"), record("b")))

	_ = tr.Dispatch(context.Background(), tr.NewSet("FETCH").Start())

	if !equalStrings(order, []string{"a", "b"}) {
		t.Errorf("order = %v, want [a b]", order)
	}
}

func TestMiddleware_Filter(t *testing.T) {
	tr, _ := newTracker(t, tracker.WithMiddleware(mw.Filter("KEEP")))
	ctx := context.Background()

	_ = tr.Dispatch(ctx, tr.NewSet("KEEP").Start())
	_ = tr.Dispatch(ctx, tr.NewSet("DROP").Start())

	if tr.State().Len() != 1 {
		t.Errorf("len = %d, want 1", tr.State().Len())
	}
}

func TestMiddleware_RecoversSubscriberPanic(t *testing.T) {
	tr, _ := newTracker(t)
	tr.Subscribe(func(action.Action, reducer.State) { panic("subscriber") })

	err := tr.Dispatch(context.Background(), tr.NewSet("FETCH").Start())
	if err == nil || !strings.Contains(err.Error(), "panic") {
		t.Fatalf("expected panic error, got %v", err)
	}
	if tr.State().Len() != 1 {
		t.Errorf("state should keep the applied action")
	}
}

func TestTracerProvider(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	tr, _ := newTracker(t, tracker.WithTracerProvider(tp))

	_ = tr.Dispatch(context.Background(), tr.NewSet("FETCH").Start())

	spans := sr.Ended()
	if len(spans) != 1 || spans[0].Name() != "asyncjobs.dispatch" {
		t.Fatalf("expected one asyncjobs.dispatch span, got %d", len(spans))
	}
}

// ──────────────────────────────────────────────────
// Selectors and Close
// ──────────────────────────────────────────────────

func TestLatestEarliest(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTracker(t)
	fetch := tr.NewSet("FETCH")

	first := fetch.Start()
	second := fetch.Start()
	_ = tr.Dispatch(ctx, first)
	_ = tr.Dispatch(ctx, second)

	latest, ok := tr.Latest(selector.Options{Name: "FETCH"})
	if !ok || latest.ID != second.ID {
		t.Errorf("Latest = %v, want %s", latest, second.ID)
	}
	earliest, ok := tr.Earliest(selector.Options{Name: "FETCH"})
	if !ok || earliest.ID != first.ID {
		t.Errorf("Earliest = %v, want %s", earliest, first.ID)
	}
	if _, ok := tr.Latest(selector.Options{Name: "OTHER"}); ok {
		t.Error("expected no job for OTHER")
	}
}

func TestClose(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	if err := tr.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := tr.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := tr.Dispatch(ctx, tr.NewSet("FETCH").Start()); !errors.Is(err, asyncjobs.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestClose_WaitsForAppliedDispatch(t *testing.T) {
	ctx := context.Background()
	h := &hookRecorder{}
	tr, _ := newTracker(t, tracker.WithExtension(h))
	start := tr.NewSet("FETCH").Start()

	entered := make(chan struct{})
	release := make(chan struct{})
	tr.Subscribe(func(a action.Action, _ reducer.State) {
		if a.ID == start.ID {
			close(entered)
			<-release
		}
	})

	dispatched := make(chan error, 1)
	go func() { dispatched <- tr.Dispatch(ctx, start) }()
	<-entered

	closed := make(chan error, 1)
	go func() { closed <- tr.Close(ctx) }()

	select {
	case <-closed:
		t.Fatal("Close returned while a dispatch was still notifying")
	case <-time.After(50 * time.Millisecond):
	}
	if err := tr.Dispatch(ctx, tr.NewSet("FETCH").Start()); !errors.Is(err, asyncjobs.ErrClosed) {
		t.Errorf("dispatch during Close: expected ErrClosed, got %v", err)
	}

	close(release)
	if err := <-dispatched; err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if err := <-closed; err != nil {
		t.Fatalf("Close: %v", err)
	}

	want := []string{"started:" + start.ID, "shutdown"}
	if got := h.Calls(); !equalStrings(got, want) {
		t.Errorf("hooks = %v, want %v", got, want)
	}
}

func TestClose_ContextDone(t *testing.T) {
	tr, _ := newTracker(t)
	start := tr.NewSet("FETCH").Start()

	entered := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	tr.Subscribe(func(action.Action, reducer.State) {
		close(entered)
		<-release
	})
	go func() { _ = tr.Dispatch(context.Background(), start) }()
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tr.Close(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Close: expected context.Canceled, got %v", err)
	}
}

func TestClose_NoHooksAfterShutdown(t *testing.T) {
	ctx := context.Background()
	h := &hookRecorder{}
	tr, _ := newTracker(t, tracker.WithExtension(h))
	fetch := tr.NewSet("FETCH")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if err := tr.Dispatch(ctx, fetch.Start()); errors.Is(err, asyncjobs.ErrClosed) {
					return
				}
			}
		}()
	}
	if err := tr.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	wg.Wait()

	calls := h.Calls()
	if len(calls) == 0 || calls[len(calls)-1] != "shutdown" {
		t.Errorf("last hook = %v, want shutdown", calls)
	}
}

func TestReplay(t *testing.T) {
	tr, rec := newTracker(t)
	start := action.Start("FETCH")

	err := tr.Replay(context.Background(),
		start,
		action.Succeed("FETCH", "job_missing"),
		action.Succeed("FETCH", start.ID),
	)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	j, _ := tr.Job(start.ID)
	if j.Status != job.StatusSuccess {
		t.Errorf("status = %s, want SUCCESS", j.Status)
	}
	if len(rec.Violations()) != 1 {
		t.Errorf("violations = %d, want 1", len(rec.Violations()))
	}
}
