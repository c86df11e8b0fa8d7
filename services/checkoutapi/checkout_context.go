package checkoutapi

import (
	"time"

	"github.com/MarcGrol/klarnacheckout/services/checkoutevents"
)

// CheckoutContext is the server-side session of a single shopper going through checkout
type CheckoutContext struct {
	SessionUID            string
	BasketUID             string
	CreatedAt             time.Time
	LastModified          *time.Time
	PublicURL             string
	Cart                  Checkout
	OrderID               string
	// ProviderOrderID is the last order created for this session; it survives session cleanup
	ProviderOrderID       string
	UpdateMD5             string
	OrderNotes            string `datastore:",noindex"`
	CheckoutStatus        checkoutevents.CheckoutStatus
	CheckoutStatusDetails string
}

func NewCheckoutContext(sessionUID string, cart Checkout, createdAt time.Time) CheckoutContext {
	return CheckoutContext{
		SessionUID:     sessionUID,
		BasketUID:      cart.BasketUID,
		CreatedAt:      createdAt,
		Cart:           cart,
		OrderNotes:     cart.OrderNotes,
		CheckoutStatus: checkoutevents.CheckoutStatusUndefined,
	}
}
