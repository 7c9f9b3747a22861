package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetricsCreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestAnalysisDurationHistogram(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.AnalysisDuration.Record(ctx, 0.123)
	m.AnalysisDuration.Record(ctx, 0.456)

	rm := collect(t, reader)
	metric := findMetric(rm, "vedavani.analysis.duration")
	if metric == nil {
		t.Fatal("vedavani.analysis.duration not found")
	}
	hist, ok := metric.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("data type = %T, want Histogram[float64]", metric.Data)
	}
	if len(hist.DataPoints) != 1 {
		t.Fatalf("got %d data points, want 1", len(hist.DataPoints))
	}
	if dp := hist.DataPoints[0]; dp.Count != 2 {
		t.Errorf("count = %d, want 2", dp.Count)
	}
}

func TestSyllableOutcomeAttributes(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordSyllableOutcome(ctx, "acceptable")
	m.RecordSyllableOutcome(ctx, "acceptable")
	m.RecordSyllableOutcome(ctx, "ungradable")

	rm := collect(t, reader)
	metric := findMetric(rm, "vedavani.syllables.graded")
	if metric == nil {
		t.Fatal("vedavani.syllables.graded not found")
	}
	sum, ok := metric.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("data type = %T, want Sum[int64]", metric.Data)
	}

	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key("outcome")); ok {
			counts[v.AsString()] = dp.Value
		}
	}
	if counts["acceptable"] != 2 {
		t.Errorf("acceptable count = %d, want 2", counts["acceptable"])
	}
	if counts["ungradable"] != 1 {
		t.Errorf("ungradable count = %d, want 1", counts["ungradable"])
	}
}

func TestBaselineFallbackAttributes(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordBaselineFallback(ctx, "global")

	rm := collect(t, reader)
	metric := findMetric(rm, "vedavani.baseline.fallbacks")
	if metric == nil {
		t.Fatal("vedavani.baseline.fallbacks not found")
	}
	sum, ok := metric.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("data type = %T, want Sum[int64]", metric.Data)
	}
	if len(sum.DataPoints) != 1 {
		t.Fatalf("got %d data points, want 1", len(sum.DataPoints))
	}
	if v, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("source")); !ok || v.AsString() != "global" {
		t.Errorf("source attribute = %v, want global", v)
	}
}

func TestActiveAnalysesUpDown(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.ActiveAnalyses.Add(ctx, 1)
	m.ActiveAnalyses.Add(ctx, 1)
	m.ActiveAnalyses.Add(ctx, -1)

	rm := collect(t, reader)
	metric := findMetric(rm, "vedavani.active_analyses")
	if metric == nil {
		t.Fatal("vedavani.active_analyses not found")
	}
	sum, ok := metric.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("data type = %T, want Sum[int64]", metric.Data)
	}
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Errorf("active analyses = %+v, want a single data point of 1", sum.DataPoints)
	}
}
