// Package observe provides observability primitives for Vedavani:
// OpenTelemetry metrics and tracing for the analysis pipeline.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A
// Prometheus exporter bridge is available via [InitProvider] so a batch
// run can expose a /metrics endpoint. A package-level default [Metrics]
// instance ([DefaultMetrics]) is provided for convenience; tests should
// use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Vedavani
// metrics.
const meterName = "github.com/vedavani/vedavani"

// Metrics holds all OpenTelemetry metric instruments for the engine.
// All fields are safe for concurrent use; the underlying OTel types
// handle their own synchronisation.
type Metrics struct {
	// AnalysisDuration tracks wall time of one full recording analysis.
	AnalysisDuration metric.Float64Histogram

	// TranscriptionDuration tracks STT provider latency.
	TranscriptionDuration metric.Float64Histogram

	// SyllablesGraded counts graded syllables. Use with attribute:
	//   attribute.String("outcome", "acceptable"|"unacceptable"|"ungradable")
	SyllablesGraded metric.Int64Counter

	// AlignmentFallbacks counts recordings where onset detection was
	// distrusted and segmentation fell back to uniform division.
	AlignmentFallbacks metric.Int64Counter

	// BaselineFallbacks counts syllables whose baseline came from a
	// fallback rung rather than the rolling window. Use with attribute:
	//   attribute.String("source", ...)
	BaselineFallbacks metric.Int64Counter

	// TranscriptionErrors counts STT provider failures.
	TranscriptionErrors metric.Int64Counter

	// ActiveAnalyses tracks concurrently running analyses.
	ActiveAnalyses metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized
// for single-recording analysis and transcription latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the
// given [metric.MeterProvider]. Returns an error if any instrument
// creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.AnalysisDuration, err = m.Float64Histogram("vedavani.analysis.duration",
		metric.WithDescription("Wall time of one full recording analysis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranscriptionDuration, err = m.Float64Histogram("vedavani.transcription.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.SyllablesGraded, err = m.Int64Counter("vedavani.syllables.graded",
		metric.WithDescription("Graded syllables by outcome."),
	); err != nil {
		return nil, err
	}
	if met.AlignmentFallbacks, err = m.Int64Counter("vedavani.alignment.fallbacks",
		metric.WithDescription("Recordings segmented by uniform time division instead of onset detection."),
	); err != nil {
		return nil, err
	}
	if met.BaselineFallbacks, err = m.Int64Counter("vedavani.baseline.fallbacks",
		metric.WithDescription("Syllables whose baseline came from a fallback source."),
	); err != nil {
		return nil, err
	}
	if met.TranscriptionErrors, err = m.Int64Counter("vedavani.transcription.errors",
		metric.WithDescription("Speech-to-text provider failures."),
	); err != nil {
		return nil, err
	}

	if met.ActiveAnalyses, err = m.Int64UpDownCounter("vedavani.active_analyses",
		metric.WithDescription("Number of concurrently running analyses."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics
// instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating
// it on first call using [otel.GetMeterProvider]. Subsequent calls
// return the same pointer. Panics if instrument creation fails (should
// not happen with the global provider).
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

// RecordSyllableOutcome increments the graded-syllables counter with
// the standard outcome attribute.
func (m *Metrics) RecordSyllableOutcome(ctx context.Context, outcome string) {
	m.SyllablesGraded.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}

// RecordBaselineFallback increments the baseline-fallback counter with
// the source attribute.
func (m *Metrics) RecordBaselineFallback(ctx context.Context, source string) {
	m.BaselineFallbacks.Add(ctx, 1,
		metric.WithAttributes(attribute.String("source", source)),
	)
}
