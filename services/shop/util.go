package shop

import (
	"fmt"
	"math/rand"
	"time"
)

const defaultTaxRate = 2100

var r *rand.Rand

func init() {
	r = rand.New(rand.NewSource(time.Now().Unix()))
}

func createBasket(uid string, createdAt time.Time) Basket {
	basket := Basket{
		UID:              uid,
		CreatedAt:        createdAt,
		Shop:             getCurrentShop(),
		Shopper:          getCurrentShopper(uid),
		SelectedProducts: []SelectedProduct{},
	}
	for len(basket.SelectedProducts) < 2 {
		basket.SelectedProducts = addProduct(basket.SelectedProducts, getRandomProduct())
	}

	return basket
}

// addProduct merges a product that is already in the basket
func addProduct(selected []SelectedProduct, product SelectedProduct) []SelectedProduct {
	for idx, p := range selected {
		if p.UID == product.UID {
			selected[idx].Quantity += product.Quantity
			return selected
		}
	}
	return append(selected, product)
}

func getCurrentShop() Shop {
	return Shop{
		UID:      "shop_evas_shop",
		Name:     "Eva's shop",
		Country:  "NL",
		Currency: "EUR",
	}
}

func getCurrentShopper(uid string) Shopper {
	return Shopper{
		UID:       "shopper_marc_grol",
		FirstName: "Marc",
		LastName:  "Grol",
		Address: Address{
			City:              "De Bilt",
			Country:           "NL",
			HouseNumberOrName: "79",
			PostalCode:        "3731TB",
			StateOrProvince:   "Utrecht",
			Street:            "Heemdstrakwartier",
		},
		Locale:       "nl_NL",
		EmailAddress: fmt.Sprintf("marc.grol+%s@gmail.com", uid),
		PhoneNumber:  "+31648928856",
	}
}

func getRandomProduct() SelectedProduct {
	return products[r.Intn(len(products))]
}

func findProduct(uid string) (SelectedProduct, bool) {
	for _, p := range products {
		if p.UID == uid {
			return p, true
		}
	}
	return SelectedProduct{}, false
}

var products = []SelectedProduct{
	{UID: "product_hockey_stick", Description: "Hockey stick", Price: 19000, Currency: "EUR", Quantity: 1, TaxRate: defaultTaxRate},
	{UID: "product_hockey_shoes", Description: "Hockey shoes", Price: 12000, Currency: "EUR", Quantity: 1, TaxRate: defaultTaxRate},
	{UID: "product_jogging_pants", Description: "Jogging pants", Price: 6000, Currency: "EUR", Quantity: 1, TaxRate: defaultTaxRate},
	{UID: "product_sweat_shirt", Description: "Sweat shirt", Price: 7000, Currency: "EUR", Quantity: 1, TaxRate: defaultTaxRate},
	{UID: "product_hoody", Description: "Hoody", Price: 8000, Currency: "EUR", Quantity: 1, TaxRate: defaultTaxRate},
	{UID: "product_tennis_racket", Description: "Tennis racket", Price: 16900, Currency: "EUR", Quantity: 1, TaxRate: defaultTaxRate},
	{UID: "product_tennis_balls", Description: "Tennis balls", Price: 1000, Currency: "EUR", Quantity: 6, TaxRate: defaultTaxRate},
	{UID: "product_tennis_shoes", Description: "Tennis shoes", Price: 12000, Currency: "EUR", Quantity: 1, TaxRate: defaultTaxRate},
	{UID: "product_running_shoes", Description: "Running shoes", Price: 12000, Currency: "EUR", Quantity: 1, TaxRate: defaultTaxRate},
	{UID: "product_running_shirt", Description: "Running shirt", Price: 5000, Currency: "EUR", Quantity: 1, TaxRate: defaultTaxRate},
	{UID: "product_running_shorts", Description: "Running shorts", Price: 4000, Currency: "EUR", Quantity: 1, TaxRate: defaultTaxRate},
	{UID: "product_running_socks", Description: "Running socks", Price: 1000, Currency: "EUR", Quantity: 3, TaxRate: defaultTaxRate},
	{UID: "product_sports_drink", Description: "Sports drink", Price: 250, Currency: "EUR", Quantity: 12, TaxRate: 900},
}
