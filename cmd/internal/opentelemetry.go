package internal

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.16.0"

	"github.com/sanLimbu/taskboard-api/internal/envvar"
)

// NewOTExporter instantiates the OpenTelemetry exporters using configuration defined in environment
// variables. It returns the handler serving the Prometheus metrics.
func NewOTExporter(conf *envvar.Configuration, serviceName string) (http.Handler, error) {
	promExporter, err := prometheus.New(prometheus.WithoutUnits())
	if err != nil {
		return nil, fmt.Errorf("prometheus.New: %w", err)
	}

	otel.SetMeterProvider(metric.NewMeterProvider(metric.WithReader(promExporter)))

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(time.Second)); err != nil {
		return nil, fmt.Errorf("runtime.Start: %w", err)
	}

	jaegerEndpoint, err := conf.Get("JAEGER_ENDPOINT")
	if err != nil {
		return nil, fmt.Errorf("conf.Get JAEGER_ENDPOINT: %w", err)
	}

	var opts []jaeger.CollectorEndpointOption
	if jaegerEndpoint != "" {
		opts = append(opts, jaeger.WithEndpoint(jaegerEndpoint))
	}

	jaegerExporter, err := jaeger.New(jaeger.WithCollectorEndpoint(opts...))
	if err != nil {
		return nil, fmt.Errorf("jaeger.New: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(jaegerExporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)

	otel.SetTracerProvider(tp)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return promhttp.Handler(), nil
}
