package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
	Version     string
	// Registerer defaults to the Prometheus default registry.
	Registerer prometheus.Registerer
	// Gatherer must match Registerer; defaults to the default gatherer.
	Gatherer prometheus.Gatherer
}

// InitMetrics wires an OpenTelemetry MeterProvider to a Prometheus exporter
// and installs it globally. The returned handler serves /metrics.
func InitMetrics(cfg MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	exporter, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(serviceResource(cfg.ServiceName, cfg.Version)),
	)
	otel.SetMeterProvider(provider)

	handler := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})

	return provider, handler, nil
}

func serviceResource(name, version string) *resource.Resource {
	return resource.NewSchemaless(
		semconv.ServiceName(name),
		semconv.ServiceVersion(version),
	)
}
