package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"jobboard-listing/internal/common/logger"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	fetchCounter   otelmetric.Int64Counter
	fetchDuration  otelmetric.Float64Histogram
}

// New installs global meter and tracer providers for serviceName. On exporter
// failure it degrades to no-op instruments and logs a warning.
func New(serviceName string, log logger.Logger) *Observability {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	o := &Observability{
		tracerProvider: tp,
		tracer:         tp.Tracer(serviceName),
	}

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("prometheus exporter unavailable, otel metrics disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	o.meterProvider = provider
	o.fetchCounter, _ = meter.Int64Counter(
		"listing.fetches",
		otelmetric.WithDescription("Number of page fetches"),
	)
	o.fetchDuration, _ = meter.Float64Histogram(
		"listing.fetch.duration",
		otelmetric.WithDescription("Page fetch duration"),
		otelmetric.WithUnit("ms"),
	)
	return o
}

// StartSpan starts a span on the service tracer.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer("listing")
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordFetch records one page fetch for listing with its status label.
func (o *Observability) RecordFetch(ctx context.Context, listing, status string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("listing", listing),
		attribute.String("status", status),
	)
	if o.fetchCounter != nil {
		o.fetchCounter.Add(ctx, 1, attrs)
	}
	if o.fetchDuration != nil {
		o.fetchDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
