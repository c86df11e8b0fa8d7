package checkoutklarna

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIBaseURL(t *testing.T) {
	testCases := []struct {
		name         string
		storeCountry string
		testMode     bool
		expected     string
	}{
		{name: "europe live", storeCountry: "NL", testMode: false, expected: "https://api.klarna.com/"},
		{name: "europe test", storeCountry: "NL", testMode: true, expected: "https://api.playground.klarna.com/"},
		{name: "north america live", storeCountry: "US", testMode: false, expected: "https://api-na.klarna.com/"},
		{name: "north america test", storeCountry: "us", testMode: true, expected: "https://api-na.playground.klarna.com/"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, APIBaseURL(tc.storeCountry, tc.testMode))
		})
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Run("all set", func(t *testing.T) {
		t.Setenv("KLARNA_MERCHANT_ID", "PK1234")
		t.Setenv("KLARNA_SHARED_SECRET", "secret")
		t.Setenv("KLARNA_TEST_MODE", "yes")
		t.Setenv("KLARNA_STORE_COUNTRY", "se")
		t.Setenv("KLARNA_CURRENCY", "sek")
		t.Setenv("KLARNA_LOCALE", "sv-SE")
		t.Setenv("KLARNA_SHIPPING_COUNTRIES", "se, no,,fi")
		t.Setenv("KLARNA_TAX_RATE", "2500")
		t.Setenv("KLARNA_COLOR_BUTTON", "#FF0000")
		t.Setenv("PUBLIC_URL", "https://shop.example.com/")

		cfg, err := ConfigFromEnvironment()
		assert.NoError(t, err)
		assert.Equal(t, "PK1234", cfg.MerchantID)
		assert.Equal(t, "secret", cfg.SharedSecret)
		assert.True(t, cfg.TestMode)
		assert.Equal(t, "SE", cfg.StoreCountry)
		assert.Equal(t, "SEK", cfg.Currency)
		assert.Equal(t, "sv-SE", cfg.Locale)
		assert.Equal(t, []string{"SE", "NO", "FI"}, cfg.ShippingCountries)
		assert.Equal(t, 2500, cfg.TaxRate)
		assert.Equal(t, Options{ColorButton: "#FF0000"}, cfg.Options)
		assert.Equal(t, "https://shop.example.com", cfg.PublicURL)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("KLARNA_TEST_MODE", "")
		t.Setenv("KLARNA_STORE_COUNTRY", "")
		t.Setenv("KLARNA_CURRENCY", "")
		t.Setenv("KLARNA_LOCALE", "")
		t.Setenv("KLARNA_SHIPPING_COUNTRIES", "")
		t.Setenv("KLARNA_TAX_RATE", "")

		cfg, err := ConfigFromEnvironment()
		assert.NoError(t, err)
		assert.False(t, cfg.TestMode)
		assert.Equal(t, "NL", cfg.StoreCountry)
		assert.Equal(t, "EUR", cfg.Currency)
		assert.Equal(t, "en-GB", cfg.Locale)
		assert.Empty(t, cfg.ShippingCountries)
		assert.Equal(t, 0, cfg.TaxRate)
	})

	t.Run("invalid tax rate", func(t *testing.T) {
		t.Setenv("KLARNA_TAX_RATE", "21%")

		_, err := ConfigFromEnvironment()
		assert.Error(t, err)
	})

	t.Run("invalid store country", func(t *testing.T) {
		t.Setenv("KLARNA_STORE_COUNTRY", "NLD")

		_, err := ConfigFromEnvironment()
		assert.Error(t, err)
	})

	t.Run("invalid shipping country", func(t *testing.T) {
		t.Setenv("KLARNA_SHIPPING_COUNTRIES", "NL,Belgium")

		_, err := ConfigFromEnvironment()
		assert.Error(t, err)
	})

	t.Run("invalid public url", func(t *testing.T) {
		t.Setenv("PUBLIC_URL", "shop example")

		_, err := ConfigFromEnvironment()
		assert.Error(t, err)
	})
}
