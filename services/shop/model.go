package shop

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MarcGrol/klarnacheckout/services/checkoutapi"
	"github.com/MarcGrol/klarnacheckout/services/checkoutevents"
)

type Shop struct {
	UID      string
	Name     string
	Country  string
	Currency string
}

type Shopper struct {
	UID          string
	FirstName    string
	LastName     string
	Address      Address
	EmailAddress string
	Locale       string
	PhoneNumber  string
}

type Address struct {
	City              string
	Country           string
	HouseNumberOrName string
	PostalCode        string
	StateOrProvince   string
	Street            string
}

type Basket struct {
	UID                   string
	CreatedAt             time.Time
	LastModified          *time.Time
	Shop                  Shop
	Shopper               Shopper
	SelectedProducts      []SelectedProduct
	OrderNotes            string `datastore:",noindex"`
	CheckoutSessionUID    string
	ProviderOrderID       string
	CheckoutStatus        checkoutevents.CheckoutStatus
	CheckoutStatusDetails string
	Done                  bool
}

func (b Basket) Timestamp() string {
	return b.CreatedAt.Format("2006-01-02 15:04:05")
}

func (b Basket) TotalPrice() int {
	total := 0
	for _, p := range b.SelectedProducts {
		total += p.TotalPrice()
	}
	return total
}

func (b Basket) GetPriceInCurrency() string {
	return fmt.Sprintf("%s %.2f", b.Shop.Currency, float64(b.TotalPrice())/100.0)
}

func (b Basket) GetProductSummary() string {
	lines := []string{}
	for _, p := range b.SelectedProducts {
		lines = append(lines, fmt.Sprintf("%d x %s", p.Quantity, p.Description))
	}

	return strings.Join(lines, ", ")
}

func (b Basket) IsPaid() bool {
	return b.CheckoutStatus == checkoutevents.CheckoutStatusSuccess
}

func (b Basket) GetCheckoutStatus() string {
	switch {
	case b.CheckoutStatus != checkoutevents.CheckoutStatusUndefined:
		return fmt.Sprintf("%s (%s)", b.CheckoutStatus, b.CheckoutStatusDetails)
	case b.CheckoutSessionUID != "":
		return "checkout started"
	default:
		return "open"
	}
}

// ToCheckout converts the basket into the cart that is posted to the checkout
func (b Basket) ToCheckout() checkoutapi.Checkout {
	checkout := checkoutapi.Checkout{
		BasketUID: b.UID,
		TotalAmount: checkoutapi.Amount{
			Amount:   b.TotalPrice(),
			Currency: b.Shop.Currency,
		},
		Company: checkoutapi.Company{
			Name:        b.Shop.Name,
			CountryCode: b.Shop.Country,
			ShopName:    b.Shop.Name,
		},
		Shopper: checkoutapi.Shopper{
			UID:       b.Shopper.UID,
			Locale:    b.Shopper.Locale,
			FirstName: b.Shopper.FirstName,
			LastName:  b.Shopper.LastName,
			ContactInfo: checkoutapi.ContactInfo{
				PhoneNumber: b.Shopper.PhoneNumber,
				Email:       b.Shopper.EmailAddress,
			},
			Address: checkoutapi.Address{
				Street:             b.Shopper.Address.Street,
				AddressHouseNumber: b.Shopper.Address.HouseNumberOrName,
				PostalCode:         b.Shopper.Address.PostalCode,
				City:               b.Shopper.Address.City,
				State:              b.Shopper.Address.StateOrProvince,
				Country:            b.Shopper.Address.Country,
			},
		},
		Products:   []checkoutapi.Product{},
		OrderNotes: b.OrderNotes,
	}
	for _, p := range b.SelectedProducts {
		checkout.Products = append(checkout.Products, checkoutapi.Product{
			Name:        p.Description,
			Description: p.Description,
			ItemPrice:   p.Price,
			Currency:    p.Currency,
			Quantity:    p.Quantity,
			TotalPrice:  p.TotalPrice(),
			TaxRate:     p.TaxRate,
		})
	}
	return checkout
}

type SelectedProduct struct {
	UID         string
	Description string
	Price       int
	Currency    string
	Quantity    int
	TaxRate     int
}

func (p SelectedProduct) TotalPrice() int {
	return p.Price * p.Quantity
}

type BasketDetailPageInfo struct {
	Basket      Basket
	CheckoutURL string
	FormValues  url.Values
}
