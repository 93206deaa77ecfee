package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all custom metrics for the service
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal metric.Int64Counter
	HTTPDurationMs    metric.Float64Histogram

	// Business metrics
	ClinicTotal          metric.Int64Counter
	AppointmentTotal     metric.Int64Counter
	BookingConflicts     metric.Int64Counter
	InventoryAdjustments metric.Int64Counter
	LowStockAlerts       metric.Int64Counter
	CacheLookups         metric.Int64Counter

	// Auth metrics
	AuthFailuresTotal       metric.Int64Counter
	PermissionCheckDuration metric.Float64Histogram
}

type counterSpec struct {
	dst  *metric.Int64Counter
	name string
	desc string
	unit string
}

// InitMetrics registers the service's instruments on the global meter.
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("github.com/WailSalutem-Health-Care/clinic-service")
	m := &Metrics{}

	counters := []counterSpec{
		{&m.HTTPRequestsTotal, "http_server_requests_total", "Total number of HTTP requests", "{request}"},
		{&m.ClinicTotal, "clinic_operations_total", "Total number of clinic operations", "{operation}"},
		{&m.AppointmentTotal, "appointment_operations_total", "Appointment operations by action and resulting status", "{operation}"},
		{&m.BookingConflicts, "appointment_booking_conflicts_total", "Bookings rejected because the slot was taken", "{conflict}"},
		{&m.InventoryAdjustments, "inventory_adjustments_total", "Stock adjustments by direction", "{adjustment}"},
		{&m.LowStockAlerts, "inventory_low_stock_alerts_total", "Items that crossed their reorder level", "{alert}"},
		{&m.CacheLookups, "cache_lookups_total", "Cache lookups by cache and result", "{lookup}"},
		{&m.AuthFailuresTotal, "auth_failures_total", "Total number of authentication failures", "{failure}"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	var err error
	m.HTTPDurationMs, err = meter.Float64Histogram(
		"http_server_duration_milliseconds",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	m.PermissionCheckDuration, err = meter.Float64Histogram(
		"permission_check_duration_ms",
		metric.WithDescription("Permission check duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request metric
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String("http_method", method),
		attribute.String("http_route", route),
		attribute.Int("http_status_code", statusCode),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPDurationMs.Record(ctx, durationMs, attrs)
}

func (m *Metrics) RecordClinicOperation(ctx context.Context, operation string) {
	m.ClinicTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordAppointmentOperation records a booking or a status transition.
func (m *Metrics) RecordAppointmentOperation(ctx context.Context, action, status string) {
	m.AppointmentTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordBookingConflict(ctx context.Context, reason string) {
	m.BookingConflicts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

func (m *Metrics) RecordInventoryAdjustment(ctx context.Context, delta int) {
	direction := "in"
	if delta < 0 {
		direction = "out"
	}
	m.InventoryAdjustments.Add(ctx, 1, metric.WithAttributes(
		attribute.String("direction", direction),
	))
}

func (m *Metrics) RecordLowStock(ctx context.Context, clinicID string) {
	m.LowStockAlerts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("clinic_id", clinicID),
	))
}

// RecordCacheLookup satisfies cache.HitRecorder.
func (m *Metrics) RecordCacheLookup(ctx context.Context, cacheName string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache", cacheName),
		attribute.String("result", result),
	))
}

// RecordAuthFailure records an authentication failure metric
func (m *Metrics) RecordAuthFailure(ctx context.Context, reason string) {
	m.AuthFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordPermissionCheck records a permission check duration metric
func (m *Metrics) RecordPermissionCheck(ctx context.Context, permission string, durationMs float64, allowed bool) {
	m.PermissionCheckDuration.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("permission", permission),
		attribute.Bool("allowed", allowed),
	))
}
