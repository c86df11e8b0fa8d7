package checkoutevents

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/klarnacheckout/lib/myerrors"
	"github.com/MarcGrol/klarnacheckout/lib/myevents"
)

func TestEventNames(t *testing.T) {
	testCases := []struct {
		name          string
		event         myevents.Event
		typeName      string
		aggregateName string
	}{
		{
			name:          "Checkout started",
			event:         CheckoutStarted{CheckoutUID: "basket_123"},
			typeName:      "checkout.started",
			aggregateName: "basket_123",
		},
		{
			name:          "Checkout completed",
			event:         CheckoutCompleted{CheckoutUID: "basket_456"},
			typeName:      "checkout.completed",
			aggregateName: "basket_456",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.typeName, tc.event.GetEventTypeName())
			assert.Equal(t, tc.aggregateName, tc.event.GetAggregateName())
		})
	}
}

type recordingService struct {
	started   []CheckoutStarted
	completed []CheckoutCompleted
}

func (s *recordingService) OnCheckoutStarted(c context.Context, topic string, event CheckoutStarted) error {
	s.started = append(s.started, event)
	return nil
}

func (s *recordingService) OnCheckoutCompleted(c context.Context, topic string, event CheckoutCompleted) error {
	s.completed = append(s.completed, event)
	return nil
}

func pushRequest(t *testing.T, event myevents.Event) string {
	payload, err := json.Marshal(event)
	assert.NoError(t, err)
	envelope, err := json.Marshal(myevents.EventEnvelope{
		Topic:         TopicName,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(payload),
	})
	assert.NoError(t, err)
	body, err := json.Marshal(myevents.PushRequest{
		Message: myevents.PushMessage{Data: envelope},
	})
	assert.NoError(t, err)
	return string(body)
}

func TestDispatchEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("checkout started", func(t *testing.T) {
		service := &recordingService{}
		event := CheckoutStarted{ProviderName: "klarna", CheckoutUID: "basket_123", SessionUID: "session_1", TotalAmount: 4000, Currency: "EUR"}

		err := DispatchEvent(ctx, strings.NewReader(pushRequest(t, event)), service)
		assert.NoError(t, err)
		assert.Equal(t, []CheckoutStarted{event}, service.started)
		assert.Empty(t, service.completed)
	})

	t.Run("checkout completed", func(t *testing.T) {
		service := &recordingService{}
		event := CheckoutCompleted{ProviderName: "klarna", CheckoutUID: "basket_123", ProviderOrderID: "order_1", CheckoutStatus: CheckoutStatusSuccess}

		err := DispatchEvent(ctx, strings.NewReader(pushRequest(t, event)), service)
		assert.NoError(t, err)
		assert.Equal(t, []CheckoutCompleted{event}, service.completed)
	})

	t.Run("unknown event", func(t *testing.T) {
		body, _ := json.Marshal(myevents.PushRequest{
			Message: myevents.PushMessage{Data: []byte(`{"EventTypeName":"checkout.refunded"}`)},
		})

		err := DispatchEvent(ctx, strings.NewReader(string(body)), &recordingService{})
		assert.Equal(t, http.StatusNotImplemented, myerrors.GetHTTPStatus(err))
	})

	t.Run("invalid body", func(t *testing.T) {
		err := DispatchEvent(ctx, strings.NewReader(`{`), &recordingService{})
		assert.Equal(t, http.StatusBadRequest, myerrors.GetHTTPStatus(err))
	})
}

func TestCheckoutStatusFromOrder(t *testing.T) {
	assert.Equal(t, CheckoutStatusSuccess, CheckoutStatusFromOrder("checkout_complete"))
	assert.Equal(t, CheckoutStatusPending, CheckoutStatusFromOrder("checkout_incomplete"))
	assert.Equal(t, CheckoutStatusUndefined, CheckoutStatusFromOrder("cancelled"))
}

func TestDispatchEventWithInvalidPayload(t *testing.T) {
	envelope, _ := json.Marshal(myevents.EventEnvelope{
		Topic:         TopicName,
		EventTypeName: "checkout.completed",
		EventPayload:  `{"CheckoutUID":`,
	})
	body, _ := json.Marshal(myevents.PushRequest{Message: myevents.PushMessage{Data: envelope}})

	service := &recordingService{}
	err := DispatchEvent(context.Background(), strings.NewReader(string(body)), service)
	assert.Equal(t, http.StatusBadRequest, myerrors.GetHTTPStatus(err))
	assert.Empty(t, service.completed)
}
