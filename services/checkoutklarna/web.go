package checkoutklarna

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/klarnacheckout/lib/mycontext"
	"github.com/MarcGrol/klarnacheckout/lib/myerrors"
	"github.com/MarcGrol/klarnacheckout/lib/myhttp"
	"github.com/MarcGrol/klarnacheckout/lib/mylog"
	"github.com/MarcGrol/klarnacheckout/lib/mypublisher"
	"github.com/MarcGrol/klarnacheckout/lib/mystore"
	"github.com/MarcGrol/klarnacheckout/lib/mytime"
	"github.com/MarcGrol/klarnacheckout/lib/myuuid"
	"github.com/MarcGrol/klarnacheckout/services/checkoutapi"
	"github.com/MarcGrol/klarnacheckout/services/checkoutevents"
)

//go:embed templates
var templateFolder embed.FS
var (
	checkoutPageTemplate *template.Template
)

func init() {
	checkoutPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/checkout.html"))
}

type webService struct {
	logger    mylog.Logger
	service   *service
	publisher mypublisher.Publisher
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(cfg Config, client OrderClient, nower mytime.Nower, uuider myuuid.UUIDer, checkoutStore mystore.Store[checkoutapi.CheckoutContext], publisher mypublisher.Publisher) *webService {
	logger := mylog.New("checkoutklarna")
	return &webService{
		logger:    logger,
		service:   newService(cfg, client, logger, nower, uuider, checkoutStore, publisher),
		publisher: publisher,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/klarna/checkout/{basketUID}", s.startCheckoutPage()).Methods("POST")
	router.HandleFunc("/klarna/session/{sessionUID}", s.checkoutPage()).Methods("GET")
	router.HandleFunc("/klarna/session/{sessionUID}/cart", s.updateCartPage()).Methods("POST")
	router.HandleFunc("/klarna/session/{sessionUID}/confirmation", s.confirmationPage()).Methods("GET")

	router.HandleFunc("/klarna/session/{sessionUID}/push", s.pushNotification()).Methods("POST")

	err := s.publisher.CreateTopic(c, checkoutevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", checkoutevents.TopicName, err)
	}

	return nil
}

// startCheckoutPage stores the submitted cart and sends the shopper to the checkout page of the new session
func (s *webService) startCheckoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		basketUID := mux.Vars(r)["basketUID"]

		cart, err := checkoutapi.NewFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if cart.BasketUID == "" {
			cart.BasketUID = basketUID
		}
		if cart.BasketUID != basketUID {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputErrorf("basket uid mismatch: %s <> %s", cart.BasketUID, basketUID))
			return
		}

		publicURL := s.service.cfg.PublicURL
		if publicURL == "" {
			publicURL = myhttp.HostnameWithScheme(r)
		}

		sessionUID, err := s.service.startCheckout(c, publicURL, cart)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		http.Redirect(w, r, fmt.Sprintf("/klarna/session/%s", sessionUID), http.StatusSeeOther)
	}
}

func (s *webService) updateCartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := mux.Vars(r)["sessionUID"]
		c = mycontext.WithSessionUID(c, sessionUID)

		cart, err := checkoutapi.NewFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		err = s.service.updateCart(c, sessionUID, cart)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		http.Redirect(w, r, fmt.Sprintf("/klarna/session/%s", sessionUID), http.StatusSeeOther)
	}
}

// checkoutPage embeds the Klarna checkout of the session
func (s *webService) checkoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := mux.Vars(r)["sessionUID"]
		c = mycontext.WithSessionUID(c, sessionUID)

		info, err := s.service.checkoutPage(c, sessionUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		s.renderPage(c, w, "Checkout", info)
	}
}

func (s *webService) confirmationPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := mux.Vars(r)["sessionUID"]
		c = mycontext.WithSessionUID(c, sessionUID)
		orderID := r.URL.Query().Get("klarna_order_id")

		info, err := s.service.confirmCheckout(c, sessionUID, orderID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		s.renderPage(c, w, "Confirmation", info)
	}
}

func (s *webService) pushNotification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := mux.Vars(r)["sessionUID"]
		c = mycontext.WithSessionUID(c, sessionUID)
		orderID := r.URL.Query().Get("klarna_order_id")

		err := s.service.pushNotification(c, sessionUID, orderID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: fmt.Sprintf("Klarna order %s acknowledged", orderID),
		})
	}
}

type pageData struct {
	Title string
	CheckoutPageInfo
	SnippetHTML template.HTML
}

func (s *webService) renderPage(c context.Context, w http.ResponseWriter, title string, info CheckoutPageInfo) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := checkoutPageTemplate.Execute(w, pageData{
		Title:            title,
		CheckoutPageInfo: info,
		// The snippet is the html that Klarna provides to embed its checkout iframe
		SnippetHTML: template.HTML(info.Snippet),
	})
	if err != nil {
		myhttp.NewWriter(s.logger).WriteError(c, w, 10, myerrors.NewInternalError(err))
		return
	}
}
