package tracker

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/asyncjobs"
	"github.com/xraph/asyncjobs/ext"
	mw "github.com/xraph/asyncjobs/middleware"
	"github.com/xraph/asyncjobs/report"
)

// Option configures a Tracker.
type Option func(*Tracker)

// WithConfig applies the shared configuration. Only IDPrefix affects the
// tracker; logging settings are applied by whoever builds the logger.
func WithConfig(cfg asyncjobs.Config) Option {
	return func(t *Tracker) {
		if cfg.IDPrefix != "" {
			t.idPrefix = cfg.IDPrefix
		}
	}
}

// WithLogger sets the structured logger. It also becomes the sink of the
// default reporter unless WithReporter is given.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithReporter sets the reporter that receives invalid transitions.
func WithReporter(r report.Reporter) Option {
	return func(t *Tracker) {
		t.reporter = r
	}
}

// WithClock sets the time source for transition timestamps.
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// WithIDPrefix sets the prefix of IDs generated by NewSet and Track.
func WithIDPrefix(prefix string) Option {
	return func(t *Tracker) {
		t.idPrefix = prefix
	}
}

// WithMiddleware appends middleware to the dispatch chain. User middleware
// runs inside the built-in recover, tracing, metrics and logging layers.
func WithMiddleware(m ...mw.Middleware) Option {
	return func(t *Tracker) {
		t.mws = append(t.mws, m...)
	}
}

// WithExtension registers an extension with the tracker.
func WithExtension(e ext.Extension) Option {
	return func(t *Tracker) {
		t.pending = append(t.pending, e)
	}
}

// WithTracerProvider sets a custom OTel TracerProvider for the tracing
// middleware. If not set, the global otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(t *Tracker) {
		t.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom OTel MeterProvider. When set, both the
// metrics middleware and the observability extension use it instead of the
// global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(t *Tracker) {
		t.meterProvider = mp
	}
}
