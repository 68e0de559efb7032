package tracing

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	tcr "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	once        sync.Once
	initialized = false
	tp          *trace.TracerProvider
)

const (
	enabledKey    = "TRACING_ENABLED"
	endpointEnv   = "OTEL_EXPORTER_OTLP_ENDPOINT"
	samplerArgEnv = "OTEL_TRACES_SAMPLER_ARG"
)

// Init installs the global tracer provider and propagator. Without it the
// gin and http client instrumentation emit no-op spans. Disabled unless
// TRACING_ENABLED is set.
func Init() {
	if !viper.GetBool(enabledKey) {
		log.Info().Msg("Tracing is not enabled!")
		return
	}
	if initialized {
		log.Warn().Msg("Tracing already initialized!")
		return
	}
	once.Do(initializeTracing)
}

func initializeTracing() {
	ctx := context.Background()

	serviceName := viper.GetString("APP_NAME")
	if serviceName == "" {
		log.Fatal().Msg("APP_NAME cannot be empty!!!")
	}

	collectorURL := os.Getenv(endpointEnv)
	if collectorURL == "" {
		log.Fatal().Msg(endpointEnv + " env is not set!!!")
	}

	exporter, err := otlptrace.New(ctx,
		otlptracegrpc.NewClient(
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(collectorURL),
		),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create OTLP trace exporter")
	}

	resources, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("telemetry.sdk.language", "go"),
		),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create OTLP resource")
	}

	viper.SetDefault(samplerArgEnv, 0.1)
	samplingRatio := viper.GetFloat64(samplerArgEnv)

	tp = trace.NewTracerProvider(
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(samplingRatio))),
		trace.WithBatcher(exporter),
		trace.WithResource(resources),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	log.Info().
		Str("collectorURL", collectorURL).
		Str("serviceName", serviceName).
		Float64("samplingRatio", samplingRatio).
		Msg("Tracer initialized!")
	initialized = true
}

// GetTracer returns a tracer for the given instrumentation name, or a noop
// tracer when tracing is disabled or not yet initialized.
func GetTracer(name string) tcr.Tracer {
	if tp == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return tp.Tracer(name)
}

func ShutdownTracer() {
	if tp == nil {
		return
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Error shutting down tracer provider")
		return
	}
	log.Info().Msg("Tracer shutdown complete!!!")
}
