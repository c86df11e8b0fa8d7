package checkoutklarna

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/klarnacheckout/lib/mytime"
	"github.com/MarcGrol/klarnacheckout/services/checkoutapi"
)

var (
	testConfig = Config{
		MerchantID:   "PK1234",
		SharedSecret: "secret",
		TestMode:     true,
		StoreCountry: "DE",
		Currency:     "EUR",
		Locale:       "en-GB",
		TaxRate:      2100,
		PublicURL:    "https://cfg.example.com",
	}

	testCart = checkoutapi.Checkout{
		BasketUID:   "basket-1",
		TotalAmount: checkoutapi.Amount{Amount: 16100, Currency: "eur"},
		Shopper: checkoutapi.Shopper{
			UID:         "shopper-1",
			Locale:      "nl_NL",
			ContactInfo: checkoutapi.ContactInfo{Email: "shopper@example.com"},
			Address:     checkoutapi.Address{PostalCode: "1234AB", Country: "nl"},
		},
		Products: []checkoutapi.Product{
			{Name: "Tennis balls", ItemPrice: 2000, Currency: "EUR", Quantity: 2},
			{Name: "Racket", ItemPrice: 12100, Currency: "EUR", Quantity: 1, TaxRate: 900},
		},
		OrderNotes: "Please ring twice",
	}
)

func testSession() checkoutapi.CheckoutContext {
	cart := testCart
	cart.Products = append([]checkoutapi.Product{}, testCart.Products...)
	session := checkoutapi.NewCheckoutContext("session-1", cart, mytime.ExampleTime)
	session.PublicURL = "https://shop.example.com"
	return session
}

func TestBuildOrderRequest(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		request := buildOrderRequest(testConfig, testSession(), requestKindCreate)

		assert.Equal(t, "NL", request.PurchaseCountry)
		assert.Equal(t, "EUR", request.PurchaseCurrency)
		assert.Equal(t, "nl-NL", request.Locale)
		assert.Equal(t, []string{"NL"}, request.ShippingCountries)
		assert.Equal(t, MerchantURLs{
			Terms:        "https://shop.example.com/terms",
			Checkout:     "https://shop.example.com/klarna/session/session-1",
			Confirmation: "https://shop.example.com/klarna/session/session-1/confirmation?klarna_order_id={checkout.order.id}",
			Push:         "https://shop.example.com/klarna/session/session-1/push?klarna_order_id={checkout.order.id}",
		}, request.MerchantURLs)
		assert.Equal(t, []OrderLine{
			{Type: "physical", Reference: "1", Name: "Tennis balls", Quantity: 2, UnitPrice: 2000, TaxRate: 2100, TotalAmount: 4000, TotalTaxAmount: 694},
			{Type: "physical", Reference: "2", Name: "Racket", Quantity: 1, UnitPrice: 12100, TaxRate: 900, TotalAmount: 12100, TotalTaxAmount: 999},
		}, request.OrderLines)
		assert.Equal(t, int64(16100), request.OrderAmount)
		assert.Equal(t, int64(1693), request.OrderTaxAmount)
		assert.Equal(t, &BillingAddress{Email: "shopper@example.com", PostalCode: "1234AB", Country: "NL"}, request.BillingAddress)
		assert.Nil(t, request.Options)
	})

	t.Run("create with options", func(t *testing.T) {
		cfg := testConfig
		cfg.Options = Options{ColorButton: "#FF0000", RadiusBorder: "5px"}

		request := buildOrderRequest(cfg, testSession(), requestKindCreate)

		body, err := json.Marshal(request.Options)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"color_button":"#FF0000","radius_border":"5px"}`, string(body))
	})

	t.Run("update omits billing address and options", func(t *testing.T) {
		cfg := testConfig
		cfg.Options = Options{ColorButton: "#FF0000"}

		request := buildOrderRequest(cfg, testSession(), requestKindUpdate)

		assert.Nil(t, request.BillingAddress)
		assert.Nil(t, request.Options)

		body, err := json.Marshal(request)
		assert.NoError(t, err)
		assert.NotContains(t, string(body), "billing_address")
		assert.NotContains(t, string(body), "options")
	})

	t.Run("fallbacks", func(t *testing.T) {
		cfg := testConfig
		cfg.ShippingCountries = []string{"DE", "AT"}

		session := testSession()
		session.PublicURL = ""
		session.Cart.Shopper.Locale = ""
		session.Cart.Shopper.Address.Country = ""
		session.Cart.TotalAmount.Currency = ""
		for idx := range session.Cart.Products {
			session.Cart.Products[idx].Currency = ""
		}

		request := buildOrderRequest(cfg, session, requestKindCreate)

		assert.Equal(t, "DE", request.PurchaseCountry)
		assert.Equal(t, "EUR", request.PurchaseCurrency)
		assert.Equal(t, "en-GB", request.Locale)
		assert.Equal(t, []string{"DE", "AT"}, request.ShippingCountries)
		assert.Equal(t, "https://cfg.example.com/terms", request.MerchantURLs.Terms)
	})
}

func TestComposeOrderLinesTaxRate(t *testing.T) {
	products := []checkoutapi.Product{
		{Name: "Gift card", ItemPrice: 1210, Quantity: 1, TaxRate: 0},
		{Name: "Refund", ItemPrice: 1210, Quantity: 1, TaxRate: -100},
		{Name: "Book", ItemPrice: 1090, Quantity: 1, TaxRate: 900},
	}

	lines, amount, taxAmount := composeOrderLines(products, 2100)

	assert.Equal(t, 2100, lines[0].TaxRate)
	assert.Equal(t, int64(210), lines[0].TotalTaxAmount)
	assert.Equal(t, 2100, lines[1].TaxRate)
	assert.Equal(t, int64(210), lines[1].TotalTaxAmount)
	assert.Equal(t, 900, lines[2].TaxRate)
	assert.Equal(t, int64(90), lines[2].TotalTaxAmount)
	assert.Equal(t, int64(3510), amount)
	assert.Equal(t, int64(510), taxAmount)
}

func TestIncludedTax(t *testing.T) {
	assert.Equal(t, int64(0), includedTax(1000, 0))
	assert.Equal(t, int64(174), includedTax(1000, 2100))
	assert.Equal(t, int64(2000), includedTax(12000, 2000))
	assert.Equal(t, int64(83), includedTax(1000, 900))
}

func TestPayloadBuilder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	carts := NewMockCartReader(ctrl)
	sut := payloadBuilder{cfg: testConfig, carts: carts}

	t.Run("unknown session", func(t *testing.T) {
		carts.EXPECT().GetCart(gomock.Any(), "unknown").Return(checkoutapi.CheckoutContext{}, false, nil)

		_, err := sut.build(ctx, "unknown", requestKindCreate)
		assert.Error(t, err)
	})

	t.Run("known session", func(t *testing.T) {
		carts.EXPECT().GetCart(gomock.Any(), "session-1").Return(testSession(), true, nil)

		request, err := sut.build(ctx, "session-1", requestKindUpdate)
		assert.NoError(t, err)
		assert.Equal(t, int64(16100), request.OrderAmount)
	})
}
