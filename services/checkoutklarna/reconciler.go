package checkoutklarna

import (
	"context"
	"errors"

	"github.com/MarcGrol/klarnacheckout/lib/mylog"
)

// reconciler keeps the order cached in the session in line with the order known by Klarna
type reconciler struct {
	logger   mylog.Logger
	client   OrderClient
	sessions SessionStore
}

func newReconciler(logger mylog.Logger, client OrderClient, sessions SessionStore) *reconciler {
	return &reconciler{
		logger:   logger,
		client:   client,
		sessions: sessions,
	}
}

// GetOrder returns the order of the session, creating one when there is none or the cached one is gone.
// An incomplete order is brought up to date with the cart, but the order as retrieved is returned.
func (r *reconciler) GetOrder(c context.Context, sessionUID string) (Order, error) {
	orderID, exists, err := r.sessions.Get(c, sessionUID, SessionKeyOrderID)
	if err != nil {
		return Order{}, err
	}
	if !exists {
		order, _, err := r.client.CreateOrder(c, sessionUID)
		return order, err
	}

	order, err := r.client.RetrieveOrder(c, sessionUID, orderID)
	if err != nil {
		r.logger.Log(c, sessionUID, mylog.SeverityWarn, "Error retrieving klarna order %s, creating new one: %s", orderID, err)
		order, _, err := r.client.CreateOrder(c, sessionUID)
		return order, err
	}

	if order.Status == StatusCheckoutIncomplete {
		_, outcome, err := r.client.UpdateOrder(c, sessionUID)
		if err != nil {
			r.logger.Log(c, sessionUID, mylog.SeverityWarn, "Error updating klarna order %s: %s", orderID, err)
		} else {
			r.logger.Log(c, sessionUID, mylog.SeverityDebug, "Update of klarna order %s: %s", orderID, outcome)
		}
	}

	return order, nil
}

// GetSnippet returns the html to embed, or a message explaining why there is none
func (r *reconciler) GetSnippet(c context.Context, sessionUID string, order Order, orderErr error) string {
	if orderErr != nil {
		var gatewayErr *GatewayError
		if errors.As(orderErr, &gatewayErr) {
			return gatewayErr.Message()
		}
		return orderErr.Error()
	}

	err := r.MaybeClearSession(c, sessionUID, order)
	if err != nil {
		r.logger.Log(c, sessionUID, mylog.SeverityError, "Error clearing session: %s", err)
	}

	return order.HTMLSnippet
}

// MaybeClearSession drops the reconciliation state once the shopper completed the order
func (r *reconciler) MaybeClearSession(c context.Context, sessionUID string, order Order) error {
	if !order.IsComplete() {
		return nil
	}

	for _, key := range []string{SessionKeyOrderID, SessionKeyUpdateMD5, SessionKeyOrderNotes} {
		err := r.sessions.Unset(c, sessionUID, key)
		if err != nil {
			return err
		}
	}

	r.logger.Log(c, sessionUID, mylog.SeverityInfo, "Klarna order %s completed, session cleared", order.OrderID)

	return nil
}
