package checkoutklarna

import (
	"context"
	"fmt"

	"github.com/MarcGrol/klarnacheckout/lib/myerrors"
	"github.com/MarcGrol/klarnacheckout/lib/mylog"
	"github.com/MarcGrol/klarnacheckout/lib/mypublisher"
	"github.com/MarcGrol/klarnacheckout/lib/mystore"
	"github.com/MarcGrol/klarnacheckout/lib/mytime"
	"github.com/MarcGrol/klarnacheckout/lib/myuuid"
	"github.com/MarcGrol/klarnacheckout/services/checkoutapi"
	"github.com/MarcGrol/klarnacheckout/services/checkoutevents"
)

const completedMessage = "This checkout has already been completed."

type service struct {
	cfg           Config
	logger        mylog.Logger
	nower         mytime.Nower
	uuider        myuuid.UUIDer
	checkoutStore mystore.Store[checkoutapi.CheckoutContext]
	sessions      SessionStore
	client        OrderClient
	reconciler    *reconciler
	publisher     mypublisher.Publisher
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(cfg Config, client OrderClient, logger mylog.Logger, nower mytime.Nower, uuider myuuid.UUIDer, checkoutStore mystore.Store[checkoutapi.CheckoutContext], publisher mypublisher.Publisher) *service {
	sessions := NewSessionStore(checkoutStore, nower)
	return &service{
		cfg:           cfg,
		logger:        logger,
		nower:         nower,
		uuider:        uuider,
		checkoutStore: checkoutStore,
		sessions:      sessions,
		client:        client,
		reconciler:    newReconciler(logger, client, sessions),
		publisher:     publisher,
	}
}

// startCheckout stores the cart in a fresh session and returns the uid of that session
func (s *service) startCheckout(c context.Context, publicURL string, cart checkoutapi.Checkout) (string, error) {
	err := cart.Validate()
	if err != nil {
		return "", err
	}

	now := s.nower.Now()
	sessionUID := s.uuider.Create()

	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Start checkout for basket %s", cart.BasketUID)

	err = s.checkoutStore.RunInTransaction(c, func(c context.Context) error {
		session := checkoutapi.NewCheckoutContext(sessionUID, cart, now)
		session.PublicURL = publicURL

		err := s.checkoutStore.Put(c, sessionUID, session)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing session: %s", err))
		}

		err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutStarted{
			ProviderName: ProviderName,
			CheckoutUID:  cart.BasketUID,
			SessionUID:   sessionUID,
			TotalAmount:  int64(cart.TotalPrice()),
			Currency:     purchaseCurrency(s.cfg, cart),
			ShopperUID:   cart.Shopper.UID,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return sessionUID, nil
}

// updateCart replaces the cart of a running session; the next page view brings the Klarna order up to date
func (s *service) updateCart(c context.Context, sessionUID string, cart checkoutapi.Checkout) error {
	err := cart.Validate()
	if err != nil {
		return err
	}

	now := s.nower.Now()

	return s.checkoutStore.RunInTransaction(c, func(c context.Context) error {
		session, found, err := s.checkoutStore.Get(c, sessionUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching session %s: %s", sessionUID, err))
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("session %s not found", sessionUID))
		}
		if cart.BasketUID != session.BasketUID {
			return myerrors.NewInvalidInputErrorf("session %s belongs to basket %s, not %s", sessionUID, session.BasketUID, cart.BasketUID)
		}
		if session.CheckoutStatus == checkoutevents.CheckoutStatusSuccess {
			return myerrors.NewInvalidInputErrorf("session %s has already been completed", sessionUID)
		}

		session.Cart = cart
		session.OrderNotes = cart.OrderNotes
		session.LastModified = &now

		err = s.checkoutStore.Put(c, sessionUID, session)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing session %s: %s", sessionUID, err))
		}

		s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Cart of basket %s changed: %d products", cart.BasketUID, len(cart.Products))

		return nil
	})
}

// checkoutPage makes sure Klarna has an up-to-date order for the session and returns its snippet
func (s *service) checkoutPage(c context.Context, sessionUID string) (CheckoutPageInfo, error) {
	session, err := s.getSession(c, sessionUID)
	if err != nil {
		return CheckoutPageInfo{}, err
	}

	info := CheckoutPageInfo{
		SessionUID: sessionUID,
		BasketUID:  session.BasketUID,
	}

	if session.CheckoutStatus == checkoutevents.CheckoutStatusSuccess {
		info.Completed = true
		info.ErrorMessage = completedMessage
		return info, nil
	}

	order, err := s.reconciler.GetOrder(c, sessionUID)
	return s.fillPage(c, info, order, err), nil
}

// confirmCheckout shows the confirmation snippet and finalizes the checkout once Klarna says it is complete
func (s *service) confirmCheckout(c context.Context, sessionUID string, orderID string) (CheckoutPageInfo, error) {
	if orderID == "" {
		return CheckoutPageInfo{}, myerrors.NewInvalidInputErrorf("missing klarna_order_id")
	}

	session, err := s.getSession(c, sessionUID)
	if err != nil {
		return CheckoutPageInfo{}, err
	}

	if session.ProviderOrderID != orderID {
		return CheckoutPageInfo{}, myerrors.NewInvalidInputError(fmt.Errorf("klarna order %s does not belong to session %s", orderID, sessionUID))
	}

	info := CheckoutPageInfo{
		SessionUID: sessionUID,
		BasketUID:  session.BasketUID,
	}

	order, err := s.client.RetrieveOrder(c, sessionUID, orderID)
	info = s.fillPage(c, info, order, err)
	if err != nil || !order.IsComplete() {
		return info, nil
	}

	err = s.markCompleted(c, session, order)
	if err != nil {
		return CheckoutPageInfo{}, err
	}

	return info, nil
}

func (s *service) fillPage(c context.Context, info CheckoutPageInfo, order Order, orderErr error) CheckoutPageInfo {
	snippet := s.reconciler.GetSnippet(c, info.SessionUID, order, orderErr)
	if orderErr != nil {
		info.ErrorMessage = snippet
		return info
	}

	info.OrderID = order.OrderID
	info.Status = order.Status
	info.Snippet = snippet
	info.Completed = order.IsComplete()
	return info
}

func (s *service) markCompleted(c context.Context, session checkoutapi.CheckoutContext, order Order) error {
	sessionUID := session.SessionUID
	if session.CheckoutStatus == checkoutevents.CheckoutStatusSuccess {
		return nil
	}

	resp, err := s.client.SetMerchantReference(c, order.OrderID, MerchantReferences{
		MerchantReference1: session.BasketUID,
		MerchantReference2: sessionUID,
	})
	if err != nil {
		s.logger.Log(c, sessionUID, mylog.SeverityError, "Error setting merchant references on order %s: %s", order.OrderID, err)
	} else if !resp.IsSuccess() {
		s.logger.Log(c, sessionUID, mylog.SeverityWarn, "Setting merchant references on order %s returned status %d", order.OrderID, resp.StatusCode)
	}

	now := s.nower.Now()
	status := checkoutevents.CheckoutStatusFromOrder(order.Status)

	return s.checkoutStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent: the confirmation page can be reloaded

		checkoutContext, found, err := s.checkoutStore.Get(c, sessionUID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("session %s not found", sessionUID))
		}
		if checkoutContext.CheckoutStatus == checkoutevents.CheckoutStatusSuccess {
			return nil
		}

		checkoutContext.LastModified = &now
		checkoutContext.CheckoutStatus = status
		checkoutContext.CheckoutStatusDetails = order.Status

		err = s.checkoutStore.Put(c, sessionUID, checkoutContext)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutCompleted{
			ProviderName:          ProviderName,
			CheckoutUID:           checkoutContext.BasketUID,
			SessionUID:            sessionUID,
			ProviderOrderID:       order.OrderID,
			CheckoutStatus:        status,
			CheckoutStatusDetails: order.Status,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Checkout of basket %s completed with klarna order %s", checkoutContext.BasketUID, order.OrderID)

		return nil
	})
}

// pushNotification acknowledges an order that Klarna reports as placed
func (s *service) pushNotification(c context.Context, sessionUID string, orderID string) error {
	if orderID == "" {
		return myerrors.NewInvalidInputErrorf("missing klarna_order_id")
	}

	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Push: klarna order %s", orderID)

	resp, err := s.client.GetManagementOrder(c, orderID)
	if err != nil {
		return myerrors.NewUnavailableError(fmt.Errorf("error fetching klarna order %s: %s", orderID, err))
	}
	if !resp.IsSuccess() {
		s.logger.Log(c, sessionUID, mylog.SeverityWarn, "Push: klarna order %s not available: status %d", orderID, resp.StatusCode)
		return myerrors.NewNotFoundError(fmt.Errorf("klarna order %s not found", orderID))
	}

	resp, err = s.client.AcknowledgeOrder(c, orderID)
	if err != nil {
		return myerrors.NewUnavailableError(fmt.Errorf("error acknowledging klarna order %s: %s", orderID, err))
	}

	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Push: acknowledged klarna order %s: status %d", orderID, resp.StatusCode)

	return nil
}

func (s *service) getSession(c context.Context, sessionUID string) (checkoutapi.CheckoutContext, error) {
	session, found, err := s.checkoutStore.Get(c, sessionUID)
	if err != nil {
		return checkoutapi.CheckoutContext{}, myerrors.NewInternalError(fmt.Errorf("error fetching session %s: %s", sessionUID, err))
	}
	if !found {
		return checkoutapi.CheckoutContext{}, myerrors.NewNotFoundError(fmt.Errorf("session %s not found", sessionUID))
	}
	return session, nil
}
