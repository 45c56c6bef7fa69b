package telemetry

import (
	"context"

	"github.com/orgball2608/fb-post-manager/pkg/config"
	"github.com/orgball2608/fb-post-manager/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config
	Logger logger.Logger
}

// Register installs a global tracer provider exporting over OTLP/HTTP.
// Without an endpoint the otel no-op provider stays in place.
func Register(opts Opts) error {
	log := opts.Logger.WithComponent("Telemetry")
	endpoint := opts.Config.Telemetry.OTLPEndpoint
	if endpoint == "" {
		log.Debug("Tracing disabled, no OTLP endpoint configured")
		return nil
	}

	exp, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpointURL(endpoint),
	)
	if err != nil {
		return err
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", opts.Config.Telemetry.ServiceName),
		attribute.String("deployment.environment", opts.Config.App.Env),
	))
	if err != nil {
		return err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	opts.LC.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("Flushing traces")
			return tp.Shutdown(ctx)
		},
	})
	log.Info("Tracing enabled", "endpoint", endpoint)
	return nil
}
