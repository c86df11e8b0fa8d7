package checkoutklarna

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/MarcGrol/klarnacheckout/services/checkoutklarna"

const (
	opCreateOrder          = "create_order"
	opRetrieveOrder        = "retrieve_order"
	opUpdateOrder          = "update_order"
	opGetManagementOrder   = "get_management_order"
	opAcknowledgeOrder     = "acknowledge_order"
	opSetMerchantReference = "set_merchant_reference"
)

type gatewayMetrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
	outcomes metric.Int64Counter
}

func newGatewayMetrics(meter metric.Meter) (*gatewayMetrics, error) {
	m := &gatewayMetrics{}

	var err error
	m.requests, err = meter.Int64Counter("klarna_gateway_requests_total",
		metric.WithDescription("Calls to the Klarna API by operation and http status"))
	if err != nil {
		return nil, fmt.Errorf("error creating klarna_gateway_requests_total counter: %s", err)
	}

	m.latency, err = meter.Float64Histogram("klarna_gateway_latency_seconds",
		metric.WithDescription("Latency of calls to the Klarna API"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("error creating klarna_gateway_latency_seconds histogram: %s", err)
	}

	m.outcomes, err = meter.Int64Counter("klarna_order_outcomes_total",
		metric.WithDescription("Results of creating and updating Klarna orders"))
	if err != nil {
		return nil, fmt.Errorf("error creating klarna_order_outcomes_total counter: %s", err)
	}

	return m, nil
}

// noopGatewayMetrics never fails to build
func noopGatewayMetrics() *gatewayMetrics {
	m, _ := newGatewayMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	return m
}

// recordRequest counts a transport failure under status "error"
func (m *gatewayMetrics) recordRequest(c context.Context, operation string, statusCode int, err error, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	m.requests.Add(c, 1, attrs)
	m.latency.Record(c, duration.Seconds(), attrs)
}

func (m *gatewayMetrics) recordOutcome(c context.Context, operation string, outcome Outcome) {
	m.outcomes.Add(c, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", string(outcome)),
	))
}
