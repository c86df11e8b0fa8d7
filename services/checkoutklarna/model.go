package checkoutklarna

import "strings"

const (
	ProviderName = "klarna"

	StatusCheckoutIncomplete = "checkout_incomplete"
	StatusCheckoutComplete   = "checkout_complete"
)

// Order is the part of a Klarna checkout order this service cares about
type Order struct {
	OrderID            string `json:"order_id"`
	Status             string `json:"status"`
	HTMLSnippet        string `json:"html_snippet"`
	PurchaseCountry    string `json:"purchase_country,omitempty"`
	PurchaseCurrency   string `json:"purchase_currency,omitempty"`
	Locale             string `json:"locale,omitempty"`
	OrderAmount        int64  `json:"order_amount,omitempty"`
	OrderTaxAmount     int64  `json:"order_tax_amount,omitempty"`
	MerchantReference1 string `json:"merchant_reference1,omitempty"`
	MerchantReference2 string `json:"merchant_reference2,omitempty"`
}

func (o Order) IsComplete() bool {
	return o.Status == StatusCheckoutComplete
}

type OrderRequest struct {
	PurchaseCountry   string          `json:"purchase_country"`
	PurchaseCurrency  string          `json:"purchase_currency"`
	Locale            string          `json:"locale"`
	MerchantURLs      MerchantURLs    `json:"merchant_urls"`
	OrderAmount       int64           `json:"order_amount"`
	OrderTaxAmount    int64           `json:"order_tax_amount"`
	OrderLines        []OrderLine     `json:"order_lines"`
	ShippingCountries []string        `json:"shipping_countries"`
	BillingAddress    *BillingAddress `json:"billing_address,omitempty"`
	Options           *Options        `json:"options,omitempty"`
}

type OrderLine struct {
	Type           string `json:"type"`
	Reference      string `json:"reference"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPrice      int64  `json:"unit_price"`
	TaxRate        int    `json:"tax_rate"`
	TotalAmount    int64  `json:"total_amount"`
	TotalTaxAmount int64  `json:"total_tax_amount"`
}

type MerchantURLs struct {
	Terms        string `json:"terms"`
	Checkout     string `json:"checkout"`
	Confirmation string `json:"confirmation"`
	Push         string `json:"push"`
}

type BillingAddress struct {
	Email      string `json:"email,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Options holds the colors and radius used to style the checkout iframe
type Options struct {
	ColorButton       string `json:"color_button,omitempty"`
	ColorButtonText   string `json:"color_button_text,omitempty"`
	ColorCheckbox     string `json:"color_checkbox,omitempty"`
	ColorCheckboxMark string `json:"color_checkbox_checkmark,omitempty"`
	ColorHeader       string `json:"color_header,omitempty"`
	ColorLink         string `json:"color_link,omitempty"`
	RadiusBorder      string `json:"radius_border,omitempty"`
}

func (o Options) IsEmpty() bool {
	return strings.Join([]string{o.ColorButton, o.ColorButtonText, o.ColorCheckbox, o.ColorCheckboxMark,
		o.ColorHeader, o.ColorLink, o.RadiusBorder}, "") == ""
}

type MerchantReferences struct {
	MerchantReference1 string `json:"merchant_reference1"`
	MerchantReference2 string `json:"merchant_reference2"`
}

// RawResponse is returned by the management calls, whose body is not interpreted
type RawResponse struct {
	StatusCode int
	Body       []byte
}

func (r RawResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Outcome tells what a create or update call did to the remote order
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
)

// CheckoutPageInfo is rendered by the checkout and confirmation pages
type CheckoutPageInfo struct {
	SessionUID   string
	BasketUID    string
	OrderID      string
	Status       string
	Snippet      string
	ErrorMessage string
	Completed    bool
}
