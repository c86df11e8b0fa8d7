package mytelemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestConfigFromEnvironment(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("OTEL_SERVICE_NAME", "")
		t.Setenv("OTLP_ENDPOINT", "")
		t.Setenv("OTEL_SAMPLE_RATE", "")

		cfg, err := ConfigFromEnvironment()
		assert.NoError(t, err)
		assert.Equal(t, "klarnacheckout", cfg.ServiceName)
		assert.Equal(t, "", cfg.OTLPEndpoint)
		assert.Equal(t, 1.0, cfg.SampleRate)
	})

	t.Run("all set", func(t *testing.T) {
		t.Setenv("OTEL_SERVICE_NAME", "checkout")
		t.Setenv("SERVICE_VERSION", "1.2.3")
		t.Setenv("OTLP_ENDPOINT", "localhost:4317")
		t.Setenv("OTLP_INSECURE", "true")
		t.Setenv("OTEL_SAMPLE_RATE", "0.25")

		cfg, err := ConfigFromEnvironment()
		assert.NoError(t, err)
		assert.Equal(t, Config{ServiceName: "checkout", ServiceVersion: "1.2.3", OTLPEndpoint: "localhost:4317", Insecure: true, SampleRate: 0.25}, cfg)
	})

	t.Run("invalid sample rate", func(t *testing.T) {
		t.Setenv("OTEL_SAMPLE_RATE", "2")

		_, err := ConfigFromEnvironment()
		assert.Error(t, err)
	})
}

func TestStart(t *testing.T) {
	c := context.Background()

	t.Run("disabled without endpoint", func(t *testing.T) {
		telemetry, err := Start(c, Config{ServiceName: "test"})
		assert.NoError(t, err)
		assert.False(t, telemetry.Enabled())
		assert.NoError(t, telemetry.ForceFlush(c))
		assert.NoError(t, telemetry.Shutdown(c))
	})

	t.Run("exports spans and metrics", func(t *testing.T) {
		spans := tracetest.NewInMemoryExporter()
		reader := sdkmetric.NewManualReader()

		telemetry, err := Start(c, Config{ServiceName: "test", ServiceVersion: "dev", SampleRate: 1.0},
			WithTraceExporter(spans), WithMetricReader(reader))
		assert.NoError(t, err)
		assert.True(t, telemetry.Enabled())

		_, span := otel.Tracer("test").Start(c, "klarna.create_order")
		span.End()

		counter, err := otel.Meter("test").Int64Counter("orders_total")
		assert.NoError(t, err)
		counter.Add(c, 2)

		assert.NoError(t, telemetry.ForceFlush(c))
		assert.Len(t, spans.GetSpans(), 1)
		assert.Equal(t, "klarna.create_order", spans.GetSpans()[0].Name)

		var rm metricdata.ResourceMetrics
		assert.NoError(t, reader.Collect(c, &rm))
		assert.Len(t, rm.ScopeMetrics, 1)
		assert.Equal(t, "orders_total", rm.ScopeMetrics[0].Metrics[0].Name)

		assert.NoError(t, telemetry.Shutdown(c))
	})

	t.Run("sampler", func(t *testing.T) {
		assert.Contains(t, sampler(0).Description(), "AlwaysOff")
		assert.Contains(t, sampler(1).Description(), "AlwaysOn")
		assert.Contains(t, sampler(0.5).Description(), "TraceIDRatioBased")
	})
}
