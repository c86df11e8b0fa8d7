package checkoutklarna

import (
	"context"
	"fmt"

	"github.com/MarcGrol/klarnacheckout/lib/myerrors"
	"github.com/MarcGrol/klarnacheckout/lib/mystore"
	"github.com/MarcGrol/klarnacheckout/lib/mytime"
	"github.com/MarcGrol/klarnacheckout/services/checkoutapi"
)

const (
	SessionKeyOrderID    = "order_id"
	SessionKeyUpdateMD5  = "update_md5"
	SessionKeyOrderNotes = "order_notes"

	// SessionKeyProviderOrderID is never cleared; confirmations are checked against it
	SessionKeyProviderOrderID = "provider_order_id"
)

// SessionStore is the per-shopper cache of the reconciliation state. Empty values count as absent.
//
//go:generate mockgen -source=session.go -package checkoutklarna -destination session_mock.go SessionStore,CartReader
type SessionStore interface {
	Get(c context.Context, sessionUID string, key string) (string, bool, error)
	Set(c context.Context, sessionUID string, key string, value string) error
	Unset(c context.Context, sessionUID string, key string) error
}

// CartReader gives read access to the cart that was submitted when the session started
type CartReader interface {
	GetCart(c context.Context, sessionUID string) (checkoutapi.CheckoutContext, bool, error)
}

type checkoutSessionStore struct {
	store mystore.Store[checkoutapi.CheckoutContext]
	nower mytime.Nower
}

func NewSessionStore(store mystore.Store[checkoutapi.CheckoutContext], nower mytime.Nower) *checkoutSessionStore {
	return &checkoutSessionStore{
		store: store,
		nower: nower,
	}
}

func (s *checkoutSessionStore) GetCart(c context.Context, sessionUID string) (checkoutapi.CheckoutContext, bool, error) {
	return s.store.Get(c, sessionUID)
}

func (s *checkoutSessionStore) Get(c context.Context, sessionUID string, key string) (string, bool, error) {
	session, exists, err := s.store.Get(c, sessionUID)
	if err != nil {
		return "", false, myerrors.NewInternalError(fmt.Errorf("error fetching session %s: %s", sessionUID, err))
	}
	if !exists {
		return "", false, nil
	}

	field, err := sessionField(&session, key)
	if err != nil {
		return "", false, err
	}

	return *field, *field != "", nil
}

func (s *checkoutSessionStore) Set(c context.Context, sessionUID string, key string, value string) error {
	return s.modify(c, sessionUID, key, value)
}

func (s *checkoutSessionStore) Unset(c context.Context, sessionUID string, key string) error {
	return s.modify(c, sessionUID, key, "")
}

func (s *checkoutSessionStore) modify(c context.Context, sessionUID string, key string, value string) error {
	return s.store.RunInTransaction(c, func(c context.Context) error {
		session, exists, err := s.store.Get(c, sessionUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching session %s: %s", sessionUID, err))
		}
		if !exists {
			return myerrors.NewNotFoundError(fmt.Errorf("session %s not found", sessionUID))
		}

		field, err := sessionField(&session, key)
		if err != nil {
			return err
		}
		if *field == value {
			return nil
		}
		*field = value

		now := s.nower.Now()
		session.LastModified = &now

		err = s.store.Put(c, sessionUID, session)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing session %s: %s", sessionUID, err))
		}
		return nil
	})
}

func sessionField(session *checkoutapi.CheckoutContext, key string) (*string, error) {
	switch key {
	case SessionKeyOrderID:
		return &session.OrderID, nil
	case SessionKeyUpdateMD5:
		return &session.UpdateMD5, nil
	case SessionKeyOrderNotes:
		return &session.OrderNotes, nil
	case SessionKeyProviderOrderID:
		return &session.ProviderOrderID, nil
	default:
		return nil, myerrors.NewInternalError(fmt.Errorf("unknown session key %q", key))
	}
}
