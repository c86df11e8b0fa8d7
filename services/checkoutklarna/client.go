package checkoutklarna

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MarcGrol/klarnacheckout/lib/myerrors"
	"github.com/MarcGrol/klarnacheckout/lib/myhttpclient"
	"github.com/MarcGrol/klarnacheckout/lib/mylog"
)

//go:generate mockgen -source=client.go -package checkoutklarna -destination client_mock.go OrderClient
type OrderClient interface {
	CreateOrder(c context.Context, sessionUID string) (Order, Outcome, error)
	RetrieveOrder(c context.Context, sessionUID string, orderID string) (Order, error)
	UpdateOrder(c context.Context, sessionUID string) (Order, Outcome, error)
	GetManagementOrder(c context.Context, orderID string) (RawResponse, error)
	AcknowledgeOrder(c context.Context, orderID string) (RawResponse, error)
	SetMerchantReference(c context.Context, orderID string, refs MerchantReferences) (RawResponse, error)
}

type klarnaClient struct {
	apiBaseURL  string
	logger      mylog.Logger
	sessions    SessionStore
	builder     payloadBuilder
	credentials CredentialsProvider
	newSender   myhttpclient.SenderFactory
	tracer      trace.Tracer
	metrics     *gatewayMetrics
}

// NewOrderClient talks to the Klarna endpoint that matches the configured store country and test mode
func NewOrderClient(cfg Config, sessions SessionStore, carts CartReader, credentials CredentialsProvider) *klarnaClient {
	return newOrderClient(APIBaseURL(cfg.StoreCountry, cfg.TestMode), cfg, sessions, carts, credentials, myhttpclient.NewWithBasicAuth)
}

func newOrderClient(apiBaseURL string, cfg Config, sessions SessionStore, carts CartReader, credentials CredentialsProvider, newSender myhttpclient.SenderFactory) *klarnaClient {
	logger := mylog.New("klarnaclient")

	metrics, err := newGatewayMetrics(otel.Meter(instrumentationName))
	if err != nil {
		logger.Log(context.Background(), "", mylog.SeverityError, "Error creating gateway metrics: %s", err)
		metrics = noopGatewayMetrics()
	}

	return &klarnaClient{
		apiBaseURL:  apiBaseURL,
		logger:      logger,
		sessions:    sessions,
		builder:     payloadBuilder{cfg: cfg, carts: carts},
		credentials: credentials,
		newSender:   newSender,
		tracer:      otel.Tracer(instrumentationName),
		metrics:     metrics,
	}
}

func (k *klarnaClient) CreateOrder(c context.Context, sessionUID string) (Order, Outcome, error) {
	order, outcome, err := k.createOrder(c, sessionUID)
	k.metrics.recordOutcome(c, opCreateOrder, outcome)
	return order, outcome, err
}

func (k *klarnaClient) createOrder(c context.Context, sessionUID string) (Order, Outcome, error) {
	request, err := k.builder.build(c, sessionUID, requestKindCreate)
	if err != nil {
		return Order{}, OutcomeFailed, err
	}

	body, err := json.Marshal(request)
	if err != nil {
		return Order{}, OutcomeFailed, myerrors.NewInternalError(fmt.Errorf("error marshalling order request: %s", err))
	}

	statusCode, respBody, err := k.send(c, opCreateOrder, sessionUID, http.MethodPost, "checkout/v3/orders", body)
	if err != nil {
		return Order{}, OutcomeFailed, err
	}
	if !isSuccess(statusCode) {
		return Order{}, OutcomeFailed, ExtractErrorMessages(c, k.logger, sessionUID, statusCode, respBody)
	}

	order, err := parseOrder(statusCode, respBody)
	if err != nil {
		return Order{}, OutcomeFailed, err
	}

	err = k.sessions.Set(c, sessionUID, SessionKeyOrderID, order.OrderID)
	if err != nil {
		return order, OutcomeFailed, err
	}
	err = k.sessions.Set(c, sessionUID, SessionKeyProviderOrderID, order.OrderID)
	if err != nil {
		return order, OutcomeFailed, err
	}

	k.logger.Log(c, sessionUID, mylog.SeverityInfo, "Created klarna order %s", order.OrderID)

	return order, OutcomeCreated, nil
}

func (k *klarnaClient) RetrieveOrder(c context.Context, sessionUID string, orderID string) (Order, error) {
	statusCode, respBody, err := k.send(c, opRetrieveOrder, sessionUID, http.MethodGet, "checkout/v3/orders/"+orderID, nil)
	if err != nil {
		return Order{}, err
	}
	if !isSuccess(statusCode) {
		return Order{}, ExtractErrorMessages(c, k.logger, sessionUID, statusCode, respBody)
	}

	return parseOrder(statusCode, respBody)
}

func (k *klarnaClient) UpdateOrder(c context.Context, sessionUID string) (Order, Outcome, error) {
	order, outcome, err := k.updateOrder(c, sessionUID)
	k.metrics.recordOutcome(c, opUpdateOrder, outcome)
	return order, outcome, err
}

func (k *klarnaClient) updateOrder(c context.Context, sessionUID string) (Order, Outcome, error) {
	orderID, exists, err := k.sessions.Get(c, sessionUID, SessionKeyOrderID)
	if err != nil {
		return Order{}, OutcomeFailed, err
	}
	if !exists {
		return Order{}, OutcomeFailed, myerrors.NewNotFoundError(fmt.Errorf("session %s has no klarna order", sessionUID))
	}

	request, err := k.builder.build(c, sessionUID, requestKindUpdate)
	if err != nil {
		return Order{}, OutcomeFailed, err
	}

	body, err := json.Marshal(request)
	if err != nil {
		return Order{}, OutcomeFailed, myerrors.NewInternalError(fmt.Errorf("error marshalling order request: %s", err))
	}

	path := "checkout/v3/orders/" + orderID
	newFingerprint := fingerprint(k.apiBaseURL+path, body)

	previousFingerprint, exists, err := k.sessions.Get(c, sessionUID, SessionKeyUpdateMD5)
	if err != nil {
		return Order{}, OutcomeFailed, err
	}
	if exists && previousFingerprint == newFingerprint {
		k.logger.Log(c, sessionUID, mylog.SeverityDebug, "Klarna order %s is up to date", orderID)
		return Order{}, OutcomeUnchanged, nil
	}

	statusCode, respBody, err := k.send(c, opUpdateOrder, sessionUID, http.MethodPost, path, body)
	if err == nil && !isSuccess(statusCode) {
		err = ExtractErrorMessages(c, k.logger, sessionUID, statusCode, respBody)
	}
	if err != nil {
		k.forgetOrder(c, sessionUID)
		return Order{}, OutcomeFailed, err
	}

	order, err := parseOrder(statusCode, respBody)
	if err != nil {
		k.forgetOrder(c, sessionUID)
		return Order{}, OutcomeFailed, err
	}

	err = k.sessions.Set(c, sessionUID, SessionKeyUpdateMD5, newFingerprint)
	if err != nil {
		return order, OutcomeFailed, err
	}

	k.logger.Log(c, sessionUID, mylog.SeverityInfo, "Updated klarna order %s", order.OrderID)

	return order, OutcomeUpdated, nil
}

// forgetOrder makes the next page view start over with a new order
func (k *klarnaClient) forgetOrder(c context.Context, sessionUID string) {
	for _, key := range []string{SessionKeyOrderID, SessionKeyUpdateMD5} {
		err := k.sessions.Unset(c, sessionUID, key)
		if err != nil {
			k.logger.Log(c, sessionUID, mylog.SeverityError, "Error clearing %s: %s", key, err)
		}
	}
}

func (k *klarnaClient) GetManagementOrder(c context.Context, orderID string) (RawResponse, error) {
	return k.sendRaw(c, opGetManagementOrder, orderID, http.MethodGet, "ordermanagement/v1/orders/"+orderID, nil)
}

func (k *klarnaClient) AcknowledgeOrder(c context.Context, orderID string) (RawResponse, error) {
	return k.sendRaw(c, opAcknowledgeOrder, orderID, http.MethodPost, "ordermanagement/v1/orders/"+orderID+"/acknowledge", nil)
}

func (k *klarnaClient) SetMerchantReference(c context.Context, orderID string, refs MerchantReferences) (RawResponse, error) {
	body, err := json.Marshal(refs)
	if err != nil {
		return RawResponse{}, myerrors.NewInternalError(fmt.Errorf("error marshalling merchant references: %s", err))
	}
	return k.sendRaw(c, opSetMerchantReference, orderID, http.MethodPatch, "ordermanagement/v1/orders/"+orderID+"/merchant-references", body)
}

func (k *klarnaClient) sendRaw(c context.Context, operation string, traceLabel string, method string, path string, body []byte) (RawResponse, error) {
	statusCode, respBody, err := k.send(c, operation, traceLabel, method, path, body)
	if err != nil {
		return RawResponse{}, err
	}
	return RawResponse{StatusCode: statusCode, Body: respBody}, nil
}

func (k *klarnaClient) send(c context.Context, operation string, traceLabel string, method string, path string, body []byte) (int, []byte, error) {
	c, span := k.tracer.Start(c, "klarna."+operation, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("klarna.trace_label", traceLabel),
	)

	credentials, err := k.credentials.GetCredentials(c)
	if err != nil {
		span.SetStatus(codes.Error, "no credentials")
		return 0, nil, err
	}

	start := time.Now()
	statusCode, respBody, err := k.newSender(credentials.MerchantID, credentials.SharedSecret).Send(c, method, k.apiBaseURL+path, body)
	k.metrics.recordRequest(c, operation, statusCode, err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		k.logger.Log(c, traceLabel, mylog.SeverityError, "Error calling klarna %s %s: %s", method, path, err)
		return 0, nil, newTransportError(err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", statusCode))
	if !isSuccess(statusCode) {
		span.SetStatus(codes.Error, http.StatusText(statusCode))
	}

	return statusCode, respBody, nil
}

func parseOrder(statusCode int, body []byte) (Order, error) {
	order := Order{}
	err := json.Unmarshal(body, &order)
	if err != nil {
		return Order{}, &GatewayError{StatusCode: statusCode, Err: fmt.Errorf("error parsing order: %s", err)}
	}
	return order, nil
}

// fingerprint identifies an update request by its target and its payload
func fingerprint(url string, body []byte) string {
	sum := md5.Sum(append([]byte(url), body...))
	return hex.EncodeToString(sum[:])
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
