package shop

import (
	"context"
	"fmt"

	"github.com/MarcGrol/klarnacheckout/lib/myerrors"
	"github.com/MarcGrol/klarnacheckout/lib/mylog"
	"github.com/MarcGrol/klarnacheckout/services/checkoutevents"
	"github.com/MarcGrol/klarnacheckout/services/shop/shopevents"
)

const eventPath = "/basket/event"

func (s *service) subscribe(c context.Context) error {
	err := s.publisher.CreateTopic(c, shopevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", shopevents.TopicName, err)
	}

	err = s.pubsub.CreateTopic(c, checkoutevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", checkoutevents.TopicName, err)
	}

	err = s.pubsub.Subscribe(c, checkoutevents.TopicName, s.publicURL+eventPath)
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", checkoutevents.TopicName, err)
	}

	return nil
}

func (s *service) OnCheckoutStarted(c context.Context, topic string, event checkoutevents.CheckoutStarted) error {
	s.logger.Log(c, event.CheckoutUID, mylog.SeverityInfo, "Event: checkout session %s started for basket %s", event.SessionUID, event.CheckoutUID)

	now := s.nower.Now()

	return s.basketStore.RunInTransaction(c, func(c context.Context) error {
		basket, found, err := s.basketStore.Get(c, event.CheckoutUID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			// Redelivery will not make it appear
			s.logger.Log(c, event.CheckoutUID, mylog.SeverityWarn, "Ignore checkout of unknown basket %s", event.CheckoutUID)
			return nil
		}
		if basket.CheckoutSessionUID == event.SessionUID {
			return nil
		}

		basket.CheckoutSessionUID = event.SessionUID
		basket.LastModified = &now

		err = s.basketStore.Put(c, basket.UID, basket)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		return nil
	})
}

func (s *service) OnCheckoutCompleted(c context.Context, topic string, event checkoutevents.CheckoutCompleted) error {
	s.logger.Log(c, event.CheckoutUID, mylog.SeverityInfo, "Event: checkout of basket %s completed with order %s -> %s", event.CheckoutUID, event.ProviderOrderID, event.CheckoutStatus)

	now := s.nower.Now()

	return s.basketStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent
		basket, found, err := s.basketStore.Get(c, event.CheckoutUID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			s.logger.Log(c, event.CheckoutUID, mylog.SeverityWarn, "Ignore completion of unknown basket %s", event.CheckoutUID)
			return nil
		}
		if basket.Done {
			return nil
		}

		basket.CheckoutSessionUID = event.SessionUID
		basket.ProviderOrderID = event.ProviderOrderID
		basket.CheckoutStatus = event.CheckoutStatus
		basket.CheckoutStatusDetails = event.CheckoutStatusDetails
		basket.Done = event.CheckoutStatus == checkoutevents.CheckoutStatusSuccess
		basket.LastModified = &now

		err = s.basketStore.Put(c, basket.UID, basket)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		if basket.Done {
			err = s.publisher.Publish(c, shopevents.TopicName, shopevents.BasketPaymentCompleted{
				BasketUID:       basket.UID,
				ProviderOrderID: basket.ProviderOrderID,
			})
			if err != nil {
				return myerrors.NewInternalError(err)
			}
		}

		return nil
	})
}
