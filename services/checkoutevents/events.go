package checkoutevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MarcGrol/klarnacheckout/lib/myerrors"
	"github.com/MarcGrol/klarnacheckout/lib/myevents"
)

const (
	TopicName             = "checkout"
	checkoutStartedName   = TopicName + ".started"
	checkoutCompletedName = TopicName + ".completed"
)

// CheckoutEventService is implemented by services that consume checkout events via a push-subscription
type CheckoutEventService interface {
	OnCheckoutStarted(c context.Context, topic string, event CheckoutStarted) error
	OnCheckoutCompleted(c context.Context, topic string, event CheckoutCompleted) error
}

// DispatchEvent unpacks a pubsub push and hands the event to the matching service method.
// Malformed pushes are invalid input, event types nobody handles are not implemented.
func DispatchEvent(c context.Context, reader io.Reader, service CheckoutEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case checkoutStartedName:
		return handle(c, envelope, service.OnCheckoutStarted)
	case checkoutCompletedName:
		return handle(c, envelope, service.OnCheckoutCompleted)
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("unsupported event %s", envelope.EventTypeName))
	}
}

func handle[E myevents.Event](c context.Context, envelope myevents.EventEnvelope, onEvent func(context.Context, string, E) error) error {
	var event E
	err := json.Unmarshal([]byte(envelope.EventPayload), &event)
	if err != nil {
		return myerrors.NewInvalidInputError(fmt.Errorf("error decoding %s payload: %s", envelope.EventTypeName, err))
	}
	return onEvent(c, envelope.Topic, event)
}

// CheckoutStarted is published when a basket gets a checkout session at the provider
type CheckoutStarted struct {
	ProviderName string
	CheckoutUID  string
	SessionUID   string
	// TotalAmount is in minor units of Currency
	TotalAmount int64
	Currency    string
	ShopperUID  string
}

func (e CheckoutStarted) GetEventTypeName() string {
	return checkoutStartedName
}

func (e CheckoutStarted) GetAggregateName() string {
	return e.CheckoutUID
}

type CheckoutStatus string

const (
	CheckoutStatusUndefined CheckoutStatus = ""
	CheckoutStatusSuccess   CheckoutStatus = "success"
	CheckoutStatusPending   CheckoutStatus = "pending"
)

// CheckoutStatusFromOrder maps the order status reported by the provider onto a checkout status
func CheckoutStatusFromOrder(orderStatus string) CheckoutStatus {
	switch orderStatus {
	case "checkout_complete":
		return CheckoutStatusSuccess
	case "checkout_incomplete":
		return CheckoutStatusPending
	default:
		return CheckoutStatusUndefined
	}
}

// CheckoutCompleted is published once per session, when the provider has placed the order
type CheckoutCompleted struct {
	ProviderName          string
	CheckoutUID           string
	SessionUID            string
	ProviderOrderID       string
	CheckoutStatus        CheckoutStatus
	CheckoutStatusDetails string
}

func (e CheckoutCompleted) GetEventTypeName() string {
	return checkoutCompletedName
}

func (e CheckoutCompleted) GetAggregateName() string {
	return e.CheckoutUID
}
