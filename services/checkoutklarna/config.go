package checkoutklarna

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds the merchant settings of the Klarna integration
type Config struct {
	MerchantID        string
	SharedSecret      string
	TestMode          bool
	StoreCountry      string   `validate:"len=2,alpha"`
	Currency          string   `validate:"len=3,alpha"`
	Locale            string   `validate:"required"`
	ShippingCountries []string `validate:"dive,len=2,alpha"`
	TaxRate           int      `validate:"min=0,max=10000"` // basis points: 2100 means 21%
	Options           Options
	PublicURL         string `validate:"omitempty,url"`
}

// ConfigFromEnvironment reads the settings from KLARNA_* environment variables
func ConfigFromEnvironment() (Config, error) {
	cfg := Config{
		MerchantID:   os.Getenv("KLARNA_MERCHANT_ID"),
		SharedSecret: os.Getenv("KLARNA_SHARED_SECRET"),
		TestMode:     isEnabled(os.Getenv("KLARNA_TEST_MODE")),
		StoreCountry: strings.ToUpper(valueOrDefault(os.Getenv("KLARNA_STORE_COUNTRY"), "NL")),
		Currency:     strings.ToUpper(valueOrDefault(os.Getenv("KLARNA_CURRENCY"), "EUR")),
		Locale:       valueOrDefault(os.Getenv("KLARNA_LOCALE"), "en-GB"),
		Options: Options{
			ColorButton:       os.Getenv("KLARNA_COLOR_BUTTON"),
			ColorButtonText:   os.Getenv("KLARNA_COLOR_BUTTON_TEXT"),
			ColorCheckbox:     os.Getenv("KLARNA_COLOR_CHECKBOX"),
			ColorCheckboxMark: os.Getenv("KLARNA_COLOR_CHECKBOX_CHECKMARK"),
			ColorHeader:       os.Getenv("KLARNA_COLOR_HEADER"),
			ColorLink:         os.Getenv("KLARNA_COLOR_LINK"),
			RadiusBorder:      os.Getenv("KLARNA_RADIUS_BORDER"),
		},
		PublicURL: strings.TrimSuffix(os.Getenv("PUBLIC_URL"), "/"),
	}

	for _, country := range strings.Split(os.Getenv("KLARNA_SHIPPING_COUNTRIES"), ",") {
		country = strings.ToUpper(strings.TrimSpace(country))
		if country != "" {
			cfg.ShippingCountries = append(cfg.ShippingCountries, country)
		}
	}

	taxRate := os.Getenv("KLARNA_TAX_RATE")
	if taxRate != "" {
		rate, err := strconv.Atoi(taxRate)
		if err != nil || rate < 0 || rate > 10000 {
			return cfg, fmt.Errorf("invalid KLARNA_TAX_RATE %q: expected basis points between 0 and 10000", taxRate)
		}
		cfg.TaxRate = rate
	}

	err := validate.Struct(cfg)
	if err != nil {
		return cfg, fmt.Errorf("invalid klarna config: %s", err)
	}

	return cfg, nil
}

// APIBaseURL selects the regional and test/live endpoint of the Klarna API
func APIBaseURL(storeCountry string, testMode bool) string {
	region := ""
	if strings.EqualFold(storeCountry, "US") {
		region = "-na"
	}
	environment := ""
	if testMode {
		environment = ".playground"
	}
	return fmt.Sprintf("https://api%s%s.klarna.com/", region, environment)
}

func isEnabled(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "1":
		return true
	default:
		return false
	}
}

func valueOrDefault(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
