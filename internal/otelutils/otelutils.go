// Package otelutils configures the OpenTelemetry tracer provider that the HTTP
// and database instrumentation hang off of.
package otelutils

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/contentpilot/cps/logging"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "otelutils"})

const shutdownTimeout = 5 * time.Second

// Init sets the global tracer provider and propagators. Spans are exported over
// OTLP/gRPC when the standard OTEL endpoint variable is set; otherwise the
// provider only serves trace context propagation and records nothing. The
// returned function shuts the provider down.
func Init(serviceName string) (func(context.Context), error) {
	wrapMsg := "unable to set up tracing"

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	providerOptions := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		exporter, err := otlptracegrpc.New(context.Background())
		if err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}
		providerOptions = append(providerOptions, sdktrace.WithBatcher(exporter))
		log.Info("exporting traces over OTLP")
	}

	provider := sdktrace.NewTracerProvider(providerOptions...)
	otel.SetTracerProvider(provider)

	shutdown := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.Errorf("unable to shut down the tracer provider: %s", err.Error())
		}
	}
	return shutdown, nil
}
