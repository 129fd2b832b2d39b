package observability

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
)

const instrumentationScope = "github.com/spec-kit/complaint-service"

// Metrics records request and lifecycle counters on an OpenTelemetry meter.
type Metrics struct {
	requests    metric.Int64Counter
	duration    metric.Float64Histogram
	errors      metric.Int64Counter
	transitions metric.Int64Counter
}

// NewMeterProvider returns a stdout-exporting provider when enabled and a
// no-op provider otherwise. The shutdown func flushes pending exports.
func NewMeterProvider(cfg config.MetricsConfig) (metric.MeterProvider, func(context.Context) error, error) {
	if !cfg.Enabled {
		return metricnoop.NewMeterProvider(), func(context.Context) error { return nil }, nil
	}
	exp, err := stdoutmetric.New()
	if err != nil {
		return nil, nil, err
	}
	interval := time.Duration(cfg.ExportIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(
		sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval)),
	))
	return mp, mp.Shutdown, nil
}

// NewMetrics registers instruments on the provider's meter.
func NewMetrics(provider metric.MeterProvider) *Metrics {
	if provider == nil {
		provider = metricnoop.NewMeterProvider()
	}
	m := provider.Meter(instrumentationScope)
	requests, _ := m.Int64Counter("complaints.http.requests",
		metric.WithDescription("Total HTTP requests served"),
	)
	duration, _ := m.Float64Histogram("complaints.http.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("complaints.http.errors",
		metric.WithDescription("Total HTTP requests that ended in an error"),
	)
	transitions, _ := m.Int64Counter("complaints.status.transitions",
		metric.WithDescription("Complaint status transitions by from/to status"),
	)
	return &Metrics{
		requests:    requests,
		duration:    duration,
		errors:      errs,
		transitions: transitions,
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(ctx context.Context, path, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("route", path),
		attribute.String("method", method),
		attribute.String("status", strconv.Itoa(status)),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
}

// RecordError increments error counters.
func (m *Metrics) RecordError(ctx context.Context, path, method, code string) {
	if m == nil {
		return
	}
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", path),
		attribute.String("method", method),
		attribute.String("code", code),
	))
}

// RecordTransition counts a complaint status change.
func (m *Metrics) RecordTransition(ctx context.Context, from, to domain.ComplaintStatus) {
	if m == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
	))
}
