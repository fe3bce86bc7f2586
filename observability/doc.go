// Package observability provides an OpenTelemetry metrics extension for
// the tracker. The MetricsExtension implements lifecycle hooks to record
// counters for created, started, succeeded, failed, cancelled, removed and
// rejected jobs, plus a histogram of how long jobs spent pending.
//
// For per-dispatch tracing and metrics, see the middleware package:
// middleware.Tracing() and middleware.Metrics().
package observability
