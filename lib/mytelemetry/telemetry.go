package mytelemetry

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string // host:port of the otlp collector, telemetry stays disabled when empty
	Insecure       bool
	SampleRate     float64
}

func ConfigFromEnvironment() (Config, error) {
	cfg := Config{
		ServiceName:    valueOrDefault(os.Getenv("OTEL_SERVICE_NAME"), "klarnacheckout"),
		ServiceVersion: valueOrDefault(os.Getenv("SERVICE_VERSION"), "dev"),
		OTLPEndpoint:   os.Getenv("OTLP_ENDPOINT"),
		Insecure:       os.Getenv("OTLP_INSECURE") == "true",
		SampleRate:     1.0,
	}

	sampleRate := os.Getenv("OTEL_SAMPLE_RATE")
	if sampleRate != "" {
		rate, err := strconv.ParseFloat(sampleRate, 64)
		if err != nil || rate < 0.0 || rate > 1.0 {
			return cfg, fmt.Errorf("invalid OTEL_SAMPLE_RATE %q: expected a value between 0.0 and 1.0", sampleRate)
		}
		cfg.SampleRate = rate
	}

	return cfg, nil
}

type Option func(*options)

type options struct {
	traceExporter sdktrace.SpanExporter
	metricReader  sdkmetric.Reader
}

func WithTraceExporter(exporter sdktrace.SpanExporter) Option {
	return func(opts *options) {
		opts.traceExporter = exporter
	}
}

func WithMetricReader(reader sdkmetric.Reader) Option {
	return func(opts *options) {
		opts.metricReader = reader
	}
}

type Telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// Start installs the global tracer and meter providers. Without an endpoint and without
// explicit exporters the otel no-op providers stay in place.
func Start(c context.Context, cfg Config, opts ...Option) (*Telemetry, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if cfg.OTLPEndpoint == "" && o.traceExporter == nil && o.metricReader == nil {
		return &Telemetry{}, nil
	}

	res, err := resource.New(c,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
		resource.WithFromEnv(),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating telemetry resource: %s", err)
	}

	traceExporter := o.traceExporter
	if traceExporter == nil {
		traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.Insecure {
			traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		}
		traceExporter, err = otlptracegrpc.New(c, traceOpts...)
		if err != nil {
			return nil, fmt.Errorf("error creating trace exporter: %s", err)
		}
	}

	metricReader := o.metricReader
	if metricReader == nil {
		metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.Insecure {
			metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		}
		metricExporter, err := otlpmetricgrpc.New(c, metricOpts...)
		if err != nil {
			_ = traceExporter.Shutdown(c)
			return nil, fmt.Errorf("error creating metric exporter: %s", err)
		}
		metricReader = sdkmetric.NewPeriodicReader(metricExporter)
	}

	t := &Telemetry{
		tracerProvider: sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sampler(cfg.SampleRate)),
			sdktrace.WithBatcher(traceExporter),
		),
		meterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(metricReader),
		),
	}

	otel.SetTracerProvider(t.tracerProvider)
	otel.SetMeterProvider(t.meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return t, nil
}

func sampler(sampleRate float64) sdktrace.Sampler {
	switch {
	case sampleRate <= 0.0:
		return sdktrace.NeverSample()
	case sampleRate >= 1.0:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRate))
	}
}

func (t *Telemetry) Enabled() bool {
	return t.tracerProvider != nil
}

func (t *Telemetry) ForceFlush(c context.Context) error {
	if !t.Enabled() {
		return nil
	}

	var result *multierror.Error
	if err := t.tracerProvider.ForceFlush(c); err != nil {
		result = multierror.Append(result, fmt.Errorf("error flushing traces: %s", err))
	}
	if err := t.meterProvider.ForceFlush(c); err != nil {
		result = multierror.Append(result, fmt.Errorf("error flushing metrics: %s", err))
	}
	return result.ErrorOrNil()
}

func (t *Telemetry) Shutdown(c context.Context) error {
	if !t.Enabled() {
		return nil
	}

	var result *multierror.Error
	if err := t.tracerProvider.Shutdown(c); err != nil {
		result = multierror.Append(result, fmt.Errorf("error stopping tracer provider: %s", err))
	}
	if err := t.meterProvider.Shutdown(c); err != nil {
		result = multierror.Append(result, fmt.Errorf("error stopping meter provider: %s", err))
	}
	return result.ErrorOrNil()
}

func valueOrDefault(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
