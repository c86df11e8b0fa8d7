package mypubsub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/klarnacheckout/lib/myevents"
)

func TestFakePubSub(t *testing.T) {
	c := context.TODO()

	received := make(chan myevents.EventEnvelope, 10)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelope, err := myevents.ParseEventEnvelope(r.Body)
		assert.NoError(t, err)
		received <- envelope
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ps := newFake()
	assert.NoError(t, ps.CreateTopic(c, "checkout"))
	assert.NoError(t, ps.Subscribe(c, "checkout", server.URL+"/basket/event"))
	// subscribing twice does not duplicate delivery
	assert.NoError(t, ps.Subscribe(c, "checkout", server.URL+"/basket/event"))

	envelope := myevents.EventEnvelope{
		UID:           "abc",
		Topic:         "checkout",
		AggregateUID:  "basket_123",
		EventTypeName: "checkout.started",
		EventPayload:  `{"CheckoutUID":"basket_123"}`,
	}
	data, err := json.Marshal(envelope)
	assert.NoError(t, err)

	assert.NoError(t, ps.Publish(c, "basket", string(data)))
	assert.NoError(t, ps.Publish(c, "checkout", string(data)))

	select {
	case got := <-received:
		assert.Equal(t, "checkout.started", got.EventTypeName)
		assert.Equal(t, "basket_123", got.AggregateUID)
	case <-time.After(5 * time.Second):
		t.Fatal("message was not pushed")
	}

	select {
	case got := <-received:
		t.Fatalf("unexpected push of %s", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFakePubSubUnreachableSubscriber(t *testing.T) {
	c := context.TODO()
	ps := newFake()
	assert.NoError(t, ps.Subscribe(c, "checkout", "http://127.0.0.1:1/basket/event"))
	assert.NoError(t, ps.Publish(c, "checkout", "{}"))
}

func TestSubscriptionName(t *testing.T) {
	t.Run("Named after endpoint path", func(t *testing.T) {
		name, err := subscriptionName("checkout", "https://shop.example.com/basket/event")
		assert.NoError(t, err)
		assert.Equal(t, "checkout-basket-event", name)
	})

	t.Run("Root endpoint", func(t *testing.T) {
		name, err := subscriptionName("checkout", "https://shop.example.com/")
		assert.NoError(t, err)
		assert.Equal(t, "checkout-push", name)
	})

	t.Run("Invalid endpoint", func(t *testing.T) {
		_, err := subscriptionName("checkout", "not a url")
		assert.Error(t, err)
	})
}
