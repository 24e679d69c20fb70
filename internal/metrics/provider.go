// Package metrics records business and HTTP metrics with OpenTelemetry and exposes
// them in Prometheus format.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Provider owns the meter provider and the Prometheus registry it exports to. Each
// Provider has its own registry, so tests can create several side by side.
type Provider struct {
	meterProvider *metric.MeterProvider
	registry      *prometheus.Registry
}

// NewProvider creates a Provider whose resource carries service.name=namespace.
func NewProvider(namespace string) (*Provider, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	return &Provider{
		meterProvider: metric.NewMeterProvider(
			metric.WithReader(exporter),
			metric.WithResource(resource.NewSchemaless(attribute.String("service.name", namespace))),
		),
		registry: registry,
	}, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// MeterProvider returns the provider to create meters from.
func (p *Provider) MeterProvider() *metric.MeterProvider {
	return p.meterProvider
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}

// instruments pairs an operation counter with a latency histogram.
type instruments struct {
	count    otelmetric.Int64Counter
	duration otelmetric.Float64Histogram
}

type instrumentNames struct {
	count, countHelp, countUnit string
	duration, durationHelp      string
}

func newInstruments(meter otelmetric.Meter, names instrumentNames) (instruments, error) {
	count, err := meter.Int64Counter(names.count,
		otelmetric.WithDescription(names.countHelp),
		otelmetric.WithUnit(names.countUnit),
	)
	if err != nil {
		return instruments{}, fmt.Errorf("failed to create counter %s: %w", names.count, err)
	}

	duration, err := meter.Float64Histogram(names.duration,
		otelmetric.WithDescription(names.durationHelp),
		otelmetric.WithUnit("s"),
	)
	if err != nil {
		return instruments{}, fmt.Errorf("failed to create histogram %s: %w", names.duration, err)
	}

	return instruments{count: count, duration: duration}, nil
}
