package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/asyncjobs"
	"github.com/xraph/asyncjobs/action"
	"github.com/xraph/asyncjobs/ext"
	"github.com/xraph/asyncjobs/id"
	"github.com/xraph/asyncjobs/job"
	mw "github.com/xraph/asyncjobs/middleware"
	"github.com/xraph/asyncjobs/observability"
	"github.com/xraph/asyncjobs/reducer"
	"github.com/xraph/asyncjobs/report"
	"github.com/xraph/asyncjobs/selector"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/xraph/asyncjobs"

// Listener is called after every dispatch with the action and the state it
// produced. Listeners run for rejected and foreign actions too.
//
// Listeners and extension hooks run outside the tracker lock, so they may
// call back into the tracker. Notifications for dispatches made from one
// goroutine arrive in dispatch order; dispatches racing on different
// goroutines may be observed in either order, each with its own state.
type Listener func(a action.Action, s reducer.State)

type subscription struct {
	id int
	fn Listener
}

// Tracker is the state container for job lifecycles.
type Tracker struct {
	// mu serializes reductions and guards the fields below it.
	mu     sync.RWMutex
	state  reducer.State
	subs   []subscription
	nextID int
	closed bool

	// inflight counts applied dispatches still notifying listeners and hooks.
	inflight sync.WaitGroup

	logger     *slog.Logger
	reporter   report.Reporter
	clock      func() time.Time
	idPrefix   string
	newID      func() string
	extensions *ext.Registry
	pending    []ext.Extension
	mws        []mw.Middleware
	chain      mw.Middleware

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// New creates a Tracker with an empty state.
func New(opts ...Option) (*Tracker, error) {
	t := &Tracker{
		logger:   slog.Default(),
		clock:    time.Now,
		idPrefix: string(id.PrefixJob),
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := id.ValidatePrefix(id.Prefix(t.idPrefix)); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", asyncjobs.ErrInvalidPrefix, t.idPrefix, err)
	}
	t.newID = id.Generator(id.Prefix(t.idPrefix))

	if t.reporter == nil {
		t.reporter = report.NewSlogReporter(t.logger)
	}

	t.extensions = ext.NewRegistry(t.logger)

	// Build tracing middleware (custom provider or global).
	var tracingMw mw.Middleware
	if t.tracerProvider != nil {
		tracingMw = mw.TracingWithTracer(t.tracerProvider.Tracer(instrumentationName))
	} else {
		tracingMw = mw.Tracing()
	}

	// Build metrics middleware and the observability extension.
	var metricsMw mw.Middleware
	var obsExt *observability.MetricsExtension
	if t.meterProvider != nil {
		metricsMw = mw.MetricsWithMeter(t.meterProvider.Meter(instrumentationName))
		obsExt = observability.NewMetricsExtensionWithMeter(t.meterProvider.Meter(instrumentationName + "/observability"))
	} else {
		metricsMw = mw.Metrics()
		obsExt = observability.NewMetricsExtension()
	}
	t.extensions.Register(obsExt)
	for _, e := range t.pending {
		t.extensions.Register(e)
	}
	t.pending = nil

	all := make([]mw.Middleware, 0, 4+len(t.mws))
	all = append(all, mw.Recover(t.logger), tracingMw, metricsMw, mw.Logging(t.logger))
	all = append(all, t.mws...)
	t.chain = mw.Chain(all...)

	return t, nil
}

// Logger returns the tracker's logger.
func (t *Tracker) Logger() *slog.Logger { return t.logger }

// Extensions returns the extension registry.
func (t *Tracker) Extensions() *ext.Registry { return t.extensions }

// NewSet returns an action set for name whose Create and Start generate
// IDs with the tracker's prefix.
func (t *Tracker) NewSet(name string) *action.Set {
	return action.NewSet(name).WithIDGenerator(t.newID)
}

// Dispatch runs a through the middleware chain and the reducer.
//
// It returns a *report.Violation when the action could not be applied,
// asyncjobs.ErrClosed after Close, and any error raised by middleware.
// Foreign actions are accepted and leave the state unchanged.
func (t *Tracker) Dispatch(ctx context.Context, a action.Action) error {
	t.mu.RLock()
	closed := t.closed
	t.mu.RUnlock()
	if closed {
		return asyncjobs.ErrClosed
	}

	return t.chain(ctx, a, func(ctx context.Context) error {
		return t.apply(ctx, a)
	})
}

func (t *Tracker) apply(ctx context.Context, a action.Action) error {
	r, err := t.reduce(a)
	if err != nil {
		return err
	}
	defer t.inflight.Done()

	if v, ok := report.As(r.err); ok {
		t.reporter.Report(v)
	}
	for _, s := range r.subs {
		s.fn(a, r.next)
	}
	t.emit(ctx, a, r.prev, r.next, r.err)

	return r.err
}

// reduction is the outcome of applying one action under the lock.
type reduction struct {
	prev, next reducer.State
	subs       []subscription
	// err is the violation, if any.
	err error
}

// reduce applies a to the current state. It fails with ErrClosed once
// Close has begun. The lock is released even if the reducer panics.
func (t *Tracker) reduce(a action.Action) (reduction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return reduction{}, asyncjobs.ErrClosed
	}

	r := reduction{prev: t.state}
	r.next, r.err = reducer.Apply(r.prev, a, t.clock().UnixMilli())
	t.state = r.next
	r.subs = make([]subscription, len(t.subs))
	copy(r.subs, t.subs)
	t.inflight.Add(1)
	return r, nil
}

// emit translates an applied action into extension hooks.
func (t *Tracker) emit(ctx context.Context, a action.Action, prev, next reducer.State, err error) {
	if err != nil {
		if v, ok := report.As(err); ok {
			t.extensions.EmitTransitionRejected(ctx, v)
		}
		return
	}

	kind, ok := a.Kind()
	if !ok {
		return
	}

	if kind == action.KindRemove {
		if j, ok := prev.Get(a.ID); ok {
			t.extensions.EmitJobRemoved(ctx, j)
		}
		return
	}

	j, ok := next.Get(a.ID)
	if !ok {
		return
	}
	switch kind {
	case action.KindCreate:
		t.extensions.EmitJobCreated(ctx, j)
	case action.KindStart:
		t.extensions.EmitJobStarted(ctx, j)
	case action.KindSucceed:
		t.extensions.EmitJobSucceeded(ctx, j, ext.Elapsed(j, job.StatusSuccess))
	case action.KindFail:
		t.extensions.EmitJobFailed(ctx, j, ext.JobError(j))
	case action.KindCancel:
		t.extensions.EmitJobCancelled(ctx, j)
	}
}

// Replay dispatches actions in order. Rejected actions are reported and
// skipped; the first other error stops the replay.
func (t *Tracker) Replay(ctx context.Context, actions ...action.Action) error {
	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := t.Dispatch(ctx, a)
		if _, ok := report.As(err); err != nil && !ok {
			return err
		}
	}
	return nil
}

// State returns the current state. The value is immutable and safe to
// keep after later dispatches.
func (t *Tracker) State() reducer.State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Subscribe registers fn to run after every dispatch and returns a
// function that removes it. Calling the returned function twice is a no-op.
func (t *Tracker) Subscribe(fn Listener) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	subID := t.nextID
	t.subs = append(t.subs, subscription{id: subID, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			for i, s := range t.subs {
				if s.id == subID {
					t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Job returns a copy of the job with the given ID.
func (t *Tracker) Job(jobID string) (*job.Job, bool) {
	return selector.ByID(t.State(), jobID)
}

// Latest returns the most recent job matching opts.
func (t *Tracker) Latest(opts selector.Options) (*job.Job, bool) {
	return selector.Latest(t.State(), opts)
}

// Earliest returns the oldest job matching opts.
func (t *Tracker) Earliest(opts selector.Options) (*job.Job, bool) {
	return selector.Earliest(t.State(), opts)
}

// Close stops accepting dispatches, waits for applied dispatches to finish
// notifying listeners and hooks, then notifies Shutdown hooks. The wait
// ends early when ctx is done, and ctx.Err() is returned. A Listener or
// hook that calls Close waits on its own dispatch, so it must pass a ctx
// that ends.
// Closing an already closed tracker is a no-op.
func (t *Tracker) Close(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		t.inflight.Wait()
		close(drained)
	}()

	var err error
	select {
	case <-drained:
	case <-ctx.Done():
		err = ctx.Err()
		t.logger.Warn("tracker closed before dispatches drained", slog.String("error", err.Error()))
	}

	t.extensions.EmitShutdown(ctx)
	t.logger.Debug("tracker closed", slog.Int("jobs", t.State().Len()))
	return err
}
