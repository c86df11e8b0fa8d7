package klarnafake

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/klarnacheckout/lib/myhttpclient"
)

func TestFakeGateway(t *testing.T) {
	GatewayContract{
		gateway: func(t *testing.T) (string, string, string) {
			server := httptest.NewServer(New("merchant", "secret").Handler())
			t.Cleanup(server.Close)
			return server.URL + "/", "merchant", "secret"
		},
	}.Test(t)
}

// The same contract can be verified against the Klarna playground
func TestPlaygroundGateway(t *testing.T) {
	merchantID := os.Getenv("KLARNA_PLAYGROUND_MERCHANT_ID")
	sharedSecret := os.Getenv("KLARNA_PLAYGROUND_SHARED_SECRET")
	if merchantID == "" || sharedSecret == "" {
		t.Skip("no playground credentials configured")
	}

	GatewayContract{
		gateway: func(t *testing.T) (string, string, string) {
			return "https://api.playground.klarna.com/", merchantID, sharedSecret
		},
	}.Test(t)
}

type GatewayContract struct {
	gateway func(t *testing.T) (baseURL string, merchantID string, sharedSecret string)
}

func (c GatewayContract) Test(t *testing.T) {
	t.Run("can create, retrieve and update an order", func(t *testing.T) {
		var (
			baseURL, merchantID, secret = c.gateway(t)
			sender                      = myhttpclient.NewWithBasicAuth(merchantID, secret)
			ctx                         = context.Background()
		)

		status, body, err := sender.Send(ctx, http.MethodPost, baseURL+"checkout/v3/orders", validOrderRequest(t, 1))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, status)
		created := Order{}
		assert.NoError(t, json.Unmarshal(body, &created))
		assert.NotEmpty(t, created.OrderID)
		assert.Equal(t, "checkout_incomplete", created.Status)
		assert.NotEmpty(t, created.HTMLSnippet)

		status, body, err = sender.Send(ctx, http.MethodGet, baseURL+"checkout/v3/orders/"+created.OrderID, nil)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		got := Order{}
		assert.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, created.OrderID, got.OrderID)
		assert.Equal(t, int64(2000), got.OrderAmount)

		status, body, err = sender.Send(ctx, http.MethodPost, baseURL+"checkout/v3/orders/"+created.OrderID, validOrderRequest(t, 2))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		updated := Order{}
		assert.NoError(t, json.Unmarshal(body, &updated))
		assert.Equal(t, int64(4000), updated.OrderAmount)
	})

	t.Run("reports an unknown order with error messages", func(t *testing.T) {
		var (
			baseURL, merchantID, secret = c.gateway(t)
			sender                      = myhttpclient.NewWithBasicAuth(merchantID, secret)
			ctx                         = context.Background()
		)

		status, body, err := sender.Send(ctx, http.MethodGet, baseURL+"checkout/v3/orders/a0d3c5f4-0000-0000-0000-000000000000", nil)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, status)
		assert.NotEmpty(t, errorMessages(t, body))
	})

	t.Run("rejects an invalid order with error messages", func(t *testing.T) {
		var (
			baseURL, merchantID, secret = c.gateway(t)
			sender                      = myhttpclient.NewWithBasicAuth(merchantID, secret)
			ctx                         = context.Background()
		)

		status, body, err := sender.Send(ctx, http.MethodPost, baseURL+"checkout/v3/orders", []byte(`{"purchase_country":"NL"}`))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.NotEmpty(t, errorMessages(t, body))
	})

	t.Run("rejects wrong credentials without error messages", func(t *testing.T) {
		var (
			baseURL, merchantID, _ = c.gateway(t)
			sender                 = myhttpclient.NewWithBasicAuth(merchantID, "wrong")
			ctx                    = context.Background()
		)

		status, body, err := sender.Send(ctx, http.MethodPost, baseURL+"checkout/v3/orders", validOrderRequest(t, 1))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Empty(t, errorMessages(t, body))
	})

	t.Run("order management does not know incomplete orders", func(t *testing.T) {
		var (
			baseURL, merchantID, secret = c.gateway(t)
			sender                      = myhttpclient.NewWithBasicAuth(merchantID, secret)
			ctx                         = context.Background()
		)

		status, body, err := sender.Send(ctx, http.MethodPost, baseURL+"checkout/v3/orders", validOrderRequest(t, 1))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, status)
		created := Order{}
		assert.NoError(t, json.Unmarshal(body, &created))

		status, _, err = sender.Send(ctx, http.MethodGet, baseURL+"ordermanagement/v1/orders/"+created.OrderID, nil)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestFakeGatewayCompletion(t *testing.T) {
	var (
		gateway = New("merchant", "secret")
		server  = httptest.NewServer(gateway.Handler())
		sender  = myhttpclient.NewWithBasicAuth("merchant", "secret")
		ctx     = context.Background()
	)
	defer server.Close()

	_, body, err := sender.Send(ctx, http.MethodPost, server.URL+"/checkout/v3/orders", validOrderRequest(t, 1))
	assert.NoError(t, err)
	created := Order{}
	assert.NoError(t, json.Unmarshal(body, &created))

	assert.NoError(t, gateway.CompleteOrder(ctx, created.OrderID))

	t.Run("completed order is read-only", func(t *testing.T) {
		status, body, err := sender.Send(ctx, http.MethodPost, server.URL+"/checkout/v3/orders/"+created.OrderID, validOrderRequest(t, 2))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, []string{"Cannot modify a completed order"}, errorMessages(t, body))
	})

	t.Run("completed order can be acknowledged and referenced", func(t *testing.T) {
		status, _, err := sender.Send(ctx, http.MethodGet, server.URL+"/ordermanagement/v1/orders/"+created.OrderID, nil)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)

		status, _, err = sender.Send(ctx, http.MethodPost, server.URL+"/ordermanagement/v1/orders/"+created.OrderID+"/acknowledge", nil)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, status)

		status, _, err = sender.Send(ctx, http.MethodPatch, server.URL+"/ordermanagement/v1/orders/"+created.OrderID+"/merchant-references",
			[]byte(`{"merchant_reference1":"basket-1","merchant_reference2":"session-1"}`))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, status)

		order, exists, err := gateway.GetOrder(ctx, created.OrderID)
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.True(t, order.Acknowledged)
		assert.Equal(t, "basket-1", order.MerchantReference1)
		assert.Equal(t, "session-1", order.MerchantReference2)
	})

	t.Run("expired order is gone", func(t *testing.T) {
		assert.NoError(t, gateway.ExpireOrder(ctx, created.OrderID))

		status, _, err := sender.Send(ctx, http.MethodGet, server.URL+"/checkout/v3/orders/"+created.OrderID, nil)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, status)
	})

	assert.Len(t, gateway.Calls(http.MethodPost, "/checkout/v3/orders"), 2)
}

func validOrderRequest(t *testing.T, quantity int) []byte {
	request := map[string]any{
		"purchase_country":  "NL",
		"purchase_currency": "EUR",
		"locale":            "nl-NL",
		"order_amount":      quantity * 2000,
		"order_tax_amount":  quantity * 347,
		"order_lines": []map[string]any{
			{
				"type":             "physical",
				"reference":        "1",
				"name":             "Tennis balls",
				"quantity":         quantity,
				"unit_price":       2000,
				"tax_rate":         2100,
				"total_amount":     quantity * 2000,
				"total_tax_amount": quantity * 347,
			},
		},
		"merchant_urls": map[string]string{
			"terms":        "https://example.com/terms",
			"checkout":     "https://example.com/klarna/session/1",
			"confirmation": "https://example.com/klarna/session/1/confirmation?klarna_order_id={checkout.order.id}",
			"push":         "https://example.com/klarna/session/1/push?klarna_order_id={checkout.order.id}",
		},
	}
	body, err := json.Marshal(request)
	assert.NoError(t, err)
	return body
}

func errorMessages(t *testing.T, body []byte) []string {
	if len(body) == 0 {
		return nil
	}
	resp := errorResponse{}
	err := json.Unmarshal(body, &resp)
	assert.NoError(t, err)
	return resp.ErrorMessages
}
