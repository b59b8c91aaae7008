package collapse

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	return sums
}

func TestEngineCountersAreExported(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
	})

	e, err := New(starvingTiles(), 2, 1, WithSeed(1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	sums := collectSums(t, reader)
	if got := sums["collapse.resolutions"]; got != 2 {
		t.Errorf("collapse.resolutions = %d, want 2", got)
	}
	if got := sums["collapse.starved_stacks"]; got != int64(e.Stats().Starved) {
		t.Errorf("collapse.starved_stacks = %d, want %d", got, e.Stats().Starved)
	}
	if e.Stats().Starved == 0 {
		t.Error("expected starved stacks from a single-tile pool")
	}
}
