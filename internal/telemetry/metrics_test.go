package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}
	return totals
}

func TestMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	m, err := InitMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordAppointmentOperation(ctx, "book", "pending")
	m.RecordAppointmentOperation(ctx, "confirm", "confirmed")
	m.RecordBookingConflict(ctx, "provider_overlap")
	m.RecordInventoryAdjustment(ctx, -3)
	m.RecordLowStock(ctx, "c1")
	m.RecordCacheLookup(ctx, "clinics", true)
	m.RecordHTTPRequest(ctx, "GET", "/clinics", 200, 3.5)

	totals := collect(t, reader)
	assert.Equal(t, int64(2), totals["appointment_operations_total"])
	assert.Equal(t, int64(1), totals["appointment_booking_conflicts_total"])
	assert.Equal(t, int64(1), totals["inventory_adjustments_total"])
	assert.Equal(t, int64(1), totals["inventory_low_stock_alerts_total"])
	assert.Equal(t, int64(1), totals["cache_lookups_total"])
	assert.Equal(t, int64(1), totals["http_server_requests_total"])
}

func TestInitProvider_DisabledNopLogger(t *testing.T) {
	p, err := InitProvider(context.Background(), Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, p.TracerProvider)
	assert.NoError(t, p.Shutdown(context.Background()))
}
