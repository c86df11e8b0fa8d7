package checkoutklarna

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/MarcGrol/klarnacheckout/lib/myerrors"
	"github.com/MarcGrol/klarnacheckout/services/checkoutapi"
)

const (
	orderLineTypePhysical = "physical"
	orderIDPlaceholder    = "{checkout.order.id}"
)

type requestKind int

const (
	requestKindCreate requestKind = iota
	requestKindUpdate
)

type payloadBuilder struct {
	cfg   Config
	carts CartReader
}

func (b payloadBuilder) build(c context.Context, sessionUID string, kind requestKind) (OrderRequest, error) {
	session, exists, err := b.carts.GetCart(c, sessionUID)
	if err != nil {
		return OrderRequest{}, myerrors.NewInternalError(fmt.Errorf("error fetching cart of session %s: %s", sessionUID, err))
	}
	if !exists {
		return OrderRequest{}, myerrors.NewNotFoundError(fmt.Errorf("session %s not found", sessionUID))
	}

	return buildOrderRequest(b.cfg, session, kind), nil
}

func buildOrderRequest(cfg Config, session checkoutapi.CheckoutContext, kind requestKind) OrderRequest {
	cart := session.Cart
	country := purchaseCountry(cfg, cart)

	publicURL := session.PublicURL
	if publicURL == "" {
		publicURL = cfg.PublicURL
	}

	lines, amount, taxAmount := composeOrderLines(cart.Products, cfg.TaxRate)

	request := OrderRequest{
		PurchaseCountry:   country,
		PurchaseCurrency:  purchaseCurrency(cfg, cart),
		Locale:            composeLocale(cart.Shopper.Locale, cfg.Locale),
		MerchantURLs:      composeMerchantURLs(publicURL, session.SessionUID),
		OrderAmount:       amount,
		OrderTaxAmount:    taxAmount,
		OrderLines:        lines,
		ShippingCountries: cfg.ShippingCountries,
	}
	if len(request.ShippingCountries) == 0 {
		request.ShippingCountries = []string{country}
	}

	if kind == requestKindCreate {
		request.BillingAddress = &BillingAddress{
			Email:      cart.Shopper.ContactInfo.Email,
			PostalCode: cart.Shopper.Address.PostalCode,
			Country:    country,
		}
		if !cfg.Options.IsEmpty() {
			options := cfg.Options
			request.Options = &options
		}
	}

	return request
}

func composeLocale(shopperLocale string, defaultLocale string) string {
	locale := shopperLocale
	if locale == "" {
		locale = defaultLocale
	}
	return strings.ReplaceAll(locale, "_", "-")
}

func purchaseCountry(cfg Config, cart checkoutapi.Checkout) string {
	if cart.Shopper.Address.Country != "" {
		return strings.ToUpper(cart.Shopper.Address.Country)
	}
	return strings.ToUpper(cfg.StoreCountry)
}

func purchaseCurrency(cfg Config, cart checkoutapi.Checkout) string {
	if cart.TotalAmount.Currency != "" {
		return strings.ToUpper(cart.TotalAmount.Currency)
	}
	for _, p := range cart.Products {
		if p.Currency != "" {
			return strings.ToUpper(p.Currency)
		}
	}
	return strings.ToUpper(cfg.Currency)
}

func composeMerchantURLs(publicURL string, sessionUID string) MerchantURLs {
	sessionURL := fmt.Sprintf("%s/klarna/session/%s", publicURL, sessionUID)
	return MerchantURLs{
		Terms:        publicURL + "/terms",
		Checkout:     sessionURL,
		Confirmation: sessionURL + "/confirmation?klarna_order_id=" + orderIDPlaceholder,
		Push:         sessionURL + "/push?klarna_order_id=" + orderIDPlaceholder,
	}
}

// composeOrderLines returns the order lines plus the order amount and tax amount they add up to
func composeOrderLines(products []checkoutapi.Product, defaultTaxRate int) ([]OrderLine, int64, int64) {
	lines := make([]OrderLine, 0, len(products))
	orderAmount := int64(0)
	orderTaxAmount := int64(0)
	for idx, p := range products {
		taxRate := p.TaxRate
		if taxRate <= 0 {
			taxRate = defaultTaxRate
		}
		total := int64(p.LineTotal())
		line := OrderLine{
			Type:           orderLineTypePhysical,
			Reference:      strconv.Itoa(idx + 1),
			Name:           p.Name,
			Quantity:       p.Quantity,
			UnitPrice:      int64(p.ItemPrice),
			TaxRate:        taxRate,
			TotalAmount:    total,
			TotalTaxAmount: includedTax(total, taxRate),
		}
		lines = append(lines, line)
		orderAmount += line.TotalAmount
		orderTaxAmount += line.TotalTaxAmount
	}
	return lines, orderAmount, orderTaxAmount
}

// includedTax computes the tax that is part of a tax-inclusive amount, rounded half up
func includedTax(amount int64, taxRate int) int64 {
	if taxRate <= 0 {
		return 0
	}
	divisor := int64(10000 + taxRate)
	return (amount*int64(taxRate) + divisor/2) / divisor
}
