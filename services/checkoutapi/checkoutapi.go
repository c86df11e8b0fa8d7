package checkoutapi

import (
	"fmt"
	"net/http"
	"net/url"

	formcodec "github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"

	"github.com/MarcGrol/klarnacheckout/lib/myerrors"
)

type Checkout struct {
	BasketUID   string    `form:"basketUid"`
	TotalAmount Amount    `form:"amount"`
	Company     Company   `form:"company"`
	Shopper     Shopper   `form:"shopper"`
	Products    []Product `form:"products" validate:"min=1,dive"`
	ReturnURL   string    `form:"returnUrl"`
	OrderNotes  string    `form:"orderNotes"`
}

type Company struct {
	Name        string `form:"name"`
	Homepage    string `form:"homepage"`
	CountryCode string `form:"countryCode"`
	ShopName    string `form:"shopName"`
}

type Amount struct {
	Amount   int    `form:"amount"`
	Currency string `form:"currency"`
}

type Shopper struct {
	UID         string      `form:"uid"`
	Locale      string      `form:"locale"`
	FirstName   string      `form:"firstName"`
	LastName    string      `form:"lastName"`
	ContactInfo ContactInfo `form:"contactInfo"`
	Address     Address     `form:"address"`
}

type ContactInfo struct {
	PhoneNumber string `form:"phone"`
	Email       string `form:"email"`
}

type Address struct {
	Street             string `form:"street"`
	AddressHouseNumber string `form:"houseNumber"`
	PostalCode         string `form:"postalCode"`
	City               string `form:"city"`
	State              string `form:"state"`
	Country            string `form:"country"`
}

// Product prices are in minor units and include tax; TaxRate is in basis points (2100 = 21%)
type Product struct {
	Name        string `form:"name"`
	Description string `form:"description"`
	ItemPrice   int    `form:"itemPrice" validate:"min=0"`
	Currency    string `form:"currency"`
	Quantity    int    `form:"quantity" validate:"min=1"`
	TotalPrice  int    `form:"totalPrice" validate:"min=0"`
	TaxRate     int    `form:"taxRate" validate:"min=0,max=10000"`
}

func NewFromRequest(r *http.Request) (Checkout, error) {
	err := r.ParseForm()
	if err != nil {
		return Checkout{}, myerrors.NewInvalidInputError(err)
	}
	return NewFromValues(r.Form)
}

func NewFromValues(values url.Values) (Checkout, error) {
	checkout := Checkout{}
	err := formcodec.NewDecoder().Decode(&checkout, values)
	if err != nil {
		return checkout, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err))
	}

	return checkout, nil
}

func (c Checkout) ToForm() (url.Values, error) {
	values, err := formcodec.NewEncoder().Encode(c)
	if err != nil {
		return nil, fmt.Errorf("error encoding form: %s", err)
	}

	return values, nil
}

var validate = validator.New()

func (c Checkout) Validate() error {
	err := validate.Struct(c)
	if err != nil {
		return myerrors.NewInvalidInputError(fmt.Errorf("invalid checkout %s: %s", c.BasketUID, err))
	}
	return nil
}

// TotalPrice sums the product totals, falling back to item price times quantity
func (c Checkout) TotalPrice() int {
	total := 0
	for _, p := range c.Products {
		total += p.LineTotal()
	}
	return total
}

func (p Product) LineTotal() int {
	if p.TotalPrice > 0 {
		return p.TotalPrice
	}
	return p.ItemPrice * p.Quantity
}
