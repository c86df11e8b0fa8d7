package klarnafake

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/klarnacheckout/lib/mystore"
	"github.com/MarcGrol/klarnacheckout/lib/myuuid"
)

const (
	statusCheckoutIncomplete = "checkout_incomplete"
	statusCheckoutComplete   = "checkout_complete"
	statusExpired            = "expired"
)

// Order as kept by the fake gateway
type Order struct {
	OrderID            string `json:"order_id"`
	Status             string `json:"status"`
	HTMLSnippet        string `json:"html_snippet"`
	PurchaseCountry    string `json:"purchase_country"`
	PurchaseCurrency   string `json:"purchase_currency"`
	Locale             string `json:"locale"`
	OrderAmount        int64  `json:"order_amount"`
	OrderTaxAmount     int64  `json:"order_tax_amount"`
	MerchantReference1 string `json:"merchant_reference1,omitempty"`
	MerchantReference2 string `json:"merchant_reference2,omitempty"`
	Acknowledged       bool   `json:"-"`
	UpdateCount        int    `json:"-"`
}

type orderRequest struct {
	PurchaseCountry  string            `json:"purchase_country"`
	PurchaseCurrency string            `json:"purchase_currency"`
	Locale           string            `json:"locale"`
	OrderAmount      int64             `json:"order_amount"`
	OrderTaxAmount   int64             `json:"order_tax_amount"`
	OrderLines       []json.RawMessage `json:"order_lines"`
	MerchantURLs     map[string]string `json:"merchant_urls"`
}

type merchantReferences struct {
	MerchantReference1 string `json:"merchant_reference1"`
	MerchantReference2 string `json:"merchant_reference2"`
}

type errorResponse struct {
	ErrorCode     string   `json:"error_code"`
	ErrorMessages []string `json:"error_messages"`
	CorrelationID string   `json:"correlation_id"`
}

// Call is a request received by the fake gateway
type Call struct {
	Method string
	Path   string
}

// FakeGateway mimics the checkout and order management API of Klarna
type FakeGateway struct {
	merchantID   string
	sharedSecret string
	uuider       myuuid.RealUUIDer
	Store        *mystore.InMemoryStore[Order]

	sync.Mutex
	calls []Call
}

func New(merchantID string, sharedSecret string) *FakeGateway {
	store, _, _ := mystore.NewInMemoryStore[Order](context.Background())
	return &FakeGateway{
		merchantID:   merchantID,
		sharedSecret: sharedSecret,
		Store:        store,
	}
}

// Handler serves the API below the root of the returned handler, like https://api.playground.klarna.com/
func (g *FakeGateway) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(g.recordCall, g.authenticate)

	router.HandleFunc("/checkout/v3/orders", g.createOrder()).Methods("POST")
	router.HandleFunc("/checkout/v3/orders/{orderID}", g.getOrder(false)).Methods("GET")
	router.HandleFunc("/checkout/v3/orders/{orderID}", g.updateOrder()).Methods("POST")

	router.HandleFunc("/ordermanagement/v1/orders/{orderID}", g.getOrder(true)).Methods("GET")
	router.HandleFunc("/ordermanagement/v1/orders/{orderID}/acknowledge", g.acknowledgeOrder()).Methods("POST")
	router.HandleFunc("/ordermanagement/v1/orders/{orderID}/merchant-references", g.setMerchantReferences()).Methods("PATCH")

	return router
}

// Calls returns the received requests whose path starts with the given prefix
func (g *FakeGateway) Calls(method string, pathPrefix string) []Call {
	g.Lock()
	defer g.Unlock()

	matching := []Call{}
	for _, call := range g.calls {
		if call.Method == method && strings.HasPrefix(call.Path, pathPrefix) {
			matching = append(matching, call)
		}
	}
	return matching
}

// CompleteOrder simulates the shopper finishing the checkout in the iframe
func (g *FakeGateway) CompleteOrder(c context.Context, orderID string) error {
	return g.modifyOrder(c, orderID, func(order *Order) {
		order.Status = statusCheckoutComplete
		order.HTMLSnippet = fmt.Sprintf(`<div id="klarna-confirmation" data-order-id="%s"></div>`, orderID)
	})
}

// ExpireOrder simulates Klarna forgetting an order, after which it cannot be found anymore
func (g *FakeGateway) ExpireOrder(c context.Context, orderID string) error {
	return g.modifyOrder(c, orderID, func(order *Order) {
		order.Status = statusExpired
	})
}

func (g *FakeGateway) GetOrder(c context.Context, orderID string) (Order, bool, error) {
	order, exists, err := g.Store.Get(c, orderID)
	if err != nil || !exists || order.Status == statusExpired {
		return Order{}, false, err
	}
	return order, true, nil
}

func (g *FakeGateway) modifyOrder(c context.Context, orderID string, modifier func(order *Order)) error {
	return g.Store.RunInTransaction(c, func(c context.Context) error {
		order, exists, err := g.Store.Get(c, orderID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("order %s does not exist", orderID)
		}
		modifier(&order)
		return g.Store.Put(c, orderID, order)
	})
}

func (g *FakeGateway) recordCall(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.Lock()
		g.calls = append(g.calls, Call{Method: r.Method, Path: r.URL.Path})
		g.Unlock()

		next.ServeHTTP(w, r)
	})
}

// authenticate answers 401 without a body, just like Klarna does
func (g *FakeGateway) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || username != g.merchantID || password != g.sharedSecret {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *FakeGateway) createOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		request, ok := g.parseOrderRequest(w, r)
		if !ok {
			return
		}

		orderID := g.uuider.Create()
		order := Order{
			OrderID:     orderID,
			Status:      statusCheckoutIncomplete,
			HTMLSnippet: fmt.Sprintf(`<div id="klarna-checkout-container" data-order-id="%s"></div>`, orderID),
		}
		applyRequest(&order, request)

		err := g.Store.Put(r.Context(), orderID, order)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, order)
	}
}

func (g *FakeGateway) getOrder(management bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := mux.Vars(r)["orderID"]

		order, exists, err := g.GetOrder(r.Context(), orderID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
			return
		}
		// Order management only knows about placed orders
		if !exists || (management && order.Status != statusCheckoutComplete) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Order %s not found", orderID))
			return
		}

		writeJSON(w, http.StatusOK, order)
	}
}

func (g *FakeGateway) updateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := mux.Vars(r)["orderID"]

		order, exists, err := g.GetOrder(r.Context(), orderID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
			return
		}
		if !exists {
			writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Order %s not found", orderID))
			return
		}
		if order.Status != statusCheckoutIncomplete {
			writeError(w, http.StatusBadRequest, "READ_ONLY_ORDER", "Cannot modify a completed order")
			return
		}

		request, ok := g.parseOrderRequest(w, r)
		if !ok {
			return
		}
		applyRequest(&order, request)
		order.UpdateCount++

		err = g.Store.Put(r.Context(), orderID, order)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, order)
	}
}

func (g *FakeGateway) acknowledgeOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := mux.Vars(r)["orderID"]

		err := g.modifyOrder(r.Context(), orderID, func(order *Order) {
			order.Acknowledged = true
		})
		if err != nil {
			writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (g *FakeGateway) setMerchantReferences() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := mux.Vars(r)["orderID"]

		refs := merchantReferences{}
		err := json.NewDecoder(r.Body).Decode(&refs)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_VALUE", "Invalid json")
			return
		}

		err = g.modifyOrder(r.Context(), orderID, func(order *Order) {
			order.MerchantReference1 = refs.MerchantReference1
			order.MerchantReference2 = refs.MerchantReference2
		})
		if err != nil {
			writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (g *FakeGateway) parseOrderRequest(w http.ResponseWriter, r *http.Request) (orderRequest, bool) {
	request := orderRequest{}
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_VALUE", "Invalid json")
		return request, false
	}

	messages := validate(request)
	if len(messages) > 0 {
		writeError(w, http.StatusBadRequest, "BAD_VALUE", messages...)
		return request, false
	}

	return request, true
}

func validate(request orderRequest) []string {
	messages := []string{}
	if request.PurchaseCountry == "" {
		messages = append(messages, "Bad value: purchase_country")
	}
	if request.PurchaseCurrency == "" {
		messages = append(messages, "Bad value: purchase_currency")
	}
	if request.Locale == "" {
		messages = append(messages, "Bad value: locale")
	}
	if len(request.OrderLines) == 0 {
		messages = append(messages, "Bad value: order_lines")
	}
	if request.OrderAmount <= 0 {
		messages = append(messages, "Bad value: order_amount")
	}
	for _, key := range []string{"terms", "checkout", "confirmation", "push"} {
		if request.MerchantURLs[key] == "" {
			messages = append(messages, "Bad value: merchant_urls."+key)
		}
	}
	return messages
}

func applyRequest(order *Order, request orderRequest) {
	order.PurchaseCountry = request.PurchaseCountry
	order.PurchaseCurrency = request.PurchaseCurrency
	order.Locale = request.Locale
	order.OrderAmount = request.OrderAmount
	order.OrderTaxAmount = request.OrderTaxAmount
}

func writeError(w http.ResponseWriter, httpStatus int, errorCode string, messages ...string) {
	writeJSON(w, httpStatus, errorResponse{
		ErrorCode:     errorCode,
		ErrorMessages: messages,
		CorrelationID: "fake-correlation-id",
	})
}

func writeJSON(w http.ResponseWriter, httpStatus int, resp any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(resp)
}
