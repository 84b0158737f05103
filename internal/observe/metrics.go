// Package observe provides application-wide observability primitives for
// dais: OpenTelemetry metrics, a Prometheus exporter bridge, and an optional
// /metrics HTTP endpoint for long batch runs.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all dais metrics.
const meterName = "github.com/openhearings/dais"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Transcript stage ---

	// Utterances counts parsed utterances.
	Utterances metric.Int64Counter

	// SkippedLines counts head-window lines that produced no utterance.
	// Use with attribute:
	//   attribute.String("reason", ...)
	SkippedLines metric.Int64Counter

	// --- Roster stage ---

	// RosterRecords counts loaded roster records. Use with attribute:
	//   attribute.String("source", ...)
	RosterRecords metric.Int64Counter

	// RosterSkipped counts roster entries skipped during loading. Use with
	// attributes:
	//   attribute.String("source", ...), attribute.String("reason", ...)
	RosterSkipped metric.Int64Counter

	// --- Resolver stage ---

	// ResolverRequests counts inference attempts. Use with attribute:
	//   attribute.String("status", ...)
	ResolverRequests metric.Int64Counter

	// ResolverDuration tracks resolution-stage latency (prompt build through
	// mapping parse).
	ResolverDuration metric.Float64Histogram

	// ResolverLabels counts observed speaker labels by outcome. Use with
	// attribute:
	//   attribute.Bool("resolved", ...)
	ResolverLabels metric.Int64Counter

	// --- Pipeline ---

	// PipelineDuration tracks end-to-end resolution run latency.
	PipelineDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// inference-bound stages.
var latencyBuckets = []float64{
	0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Counters.
	if met.Utterances, err = m.Int64Counter("dais.transcript.utterances",
		metric.WithDescription("Total transcript utterances parsed from head windows."),
	); err != nil {
		return nil, err
	}
	if met.SkippedLines, err = m.Int64Counter("dais.transcript.skipped_lines",
		metric.WithDescription("Total head-window lines skipped by the parser, by reason."),
	); err != nil {
		return nil, err
	}
	if met.RosterRecords, err = m.Int64Counter("dais.roster.records",
		metric.WithDescription("Total roster records loaded, by source."),
	); err != nil {
		return nil, err
	}
	if met.RosterSkipped, err = m.Int64Counter("dais.roster.skipped_records",
		metric.WithDescription("Total roster entries skipped during loading, by source and reason."),
	); err != nil {
		return nil, err
	}
	if met.ResolverRequests, err = m.Int64Counter("dais.resolver.requests",
		metric.WithDescription("Total inference attempts, by status."),
	); err != nil {
		return nil, err
	}
	if met.ResolverLabels, err = m.Int64Counter("dais.resolver.labels",
		metric.WithDescription("Total observed speaker labels, by resolution outcome."),
	); err != nil {
		return nil, err
	}

	// Histograms.
	if met.ResolverDuration, err = m.Float64Histogram("dais.resolver.duration",
		metric.WithDescription("Latency of the resolution stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.PipelineDuration, err = m.Float64Histogram("dais.pipeline.duration",
		metric.WithDescription("End-to-end resolution run latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordSkippedLines records n parser skips for one reason.
func (m *Metrics) RecordSkippedLines(ctx context.Context, reason string, n int) {
	m.SkippedLines.Add(ctx, int64(n),
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}

// RecordRosterRecords records n loaded records for one roster source.
func (m *Metrics) RecordRosterRecords(ctx context.Context, source string, n int) {
	m.RosterRecords.Add(ctx, int64(n),
		metric.WithAttributes(attribute.String("source", source)),
	)
}

// RecordRosterSkips records n skipped entries for one roster source and
// reason.
func (m *Metrics) RecordRosterSkips(ctx context.Context, source, reason string, n int) {
	m.RosterSkipped.Add(ctx, int64(n),
		metric.WithAttributes(
			attribute.String("source", source),
			attribute.String("reason", reason),
		),
	)
}

// RecordResolverRequest records one inference attempt with its status and
// stage latency.
func (m *Metrics) RecordResolverRequest(ctx context.Context, status string, d time.Duration) {
	m.ResolverRequests.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
	m.ResolverDuration.Record(ctx, d.Seconds())
}

// RecordResolverLabels records n observed labels sharing one resolution
// outcome.
func (m *Metrics) RecordResolverLabels(ctx context.Context, resolved bool, n int) {
	m.ResolverLabels.Add(ctx, int64(n),
		metric.WithAttributes(attribute.Bool("resolved", resolved)),
	)
}
