package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	sums := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func TestMetricsRecordCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m := NewMetrics(provider)
	ctx := context.Background()
	m.RecordRequest(ctx, "/api/complaints", "GET", 200, 15*time.Millisecond)
	m.RecordRequest(ctx, "/api/complaints", "POST", 400, time.Millisecond)
	m.RecordError(ctx, "/api/complaints", "POST", "VALIDATION_FAILED")
	m.RecordTransition(ctx, domain.StatusPending, domain.StatusInProgress)

	sums := collectSums(t, reader)
	assert.Equal(t, int64(2), sums["complaints.http.requests"])
	assert.Equal(t, int64(1), sums["complaints.http.errors"])
	assert.Equal(t, int64(1), sums["complaints.status.transitions"])
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest(context.Background(), "/", "GET", 200, time.Millisecond)
		m.RecordError(context.Background(), "/", "GET", "INTERNAL_ERROR")
		m.RecordTransition(context.Background(), domain.StatusPending, domain.StatusResolved)
	})
	assert.NotNil(t, NewMetrics(nil))
}

func TestDisabledMeterProvider(t *testing.T) {
	provider, shutdown, err := NewMeterProvider(config.MetricsConfig{Enabled: false})
	require.NoError(t, err)
	assert.NotNil(t, provider)
	assert.NoError(t, shutdown(context.Background()))
}
