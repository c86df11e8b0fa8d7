package myevents

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEventEnvelope(t *testing.T) {
	t.Run("Valid push request", func(t *testing.T) {
		envelopeBytes, err := json.Marshal(EventEnvelope{
			UID:           "123",
			Topic:         "checkout",
			AggregateUID:  "basket_1",
			EventTypeName: "checkout.completed",
			EventPayload:  `{"CheckoutUID":"basket_1"}`,
		})
		assert.NoError(t, err)
		reqBytes, err := json.Marshal(PushRequest{
			Message:      PushMessage{Data: envelopeBytes},
			Subscription: "checkout",
		})
		assert.NoError(t, err)

		envelope, err := ParseEventEnvelope(strings.NewReader(string(reqBytes)))
		assert.NoError(t, err)
		assert.Equal(t, "checkout.checkout.completed.basket_1", envelope.String())
		assert.Equal(t, `{"CheckoutUID":"basket_1"}`, envelope.EventPayload)
	})

	t.Run("Invalid push request", func(t *testing.T) {
		_, err := ParseEventEnvelope(strings.NewReader(`{`))
		assert.Error(t, err)
	})
}
