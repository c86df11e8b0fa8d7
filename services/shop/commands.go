package shop

import (
	"context"
	"fmt"
	"sort"

	"github.com/MarcGrol/klarnacheckout/lib/myerrors"
	"github.com/MarcGrol/klarnacheckout/lib/mylog"
	"github.com/MarcGrol/klarnacheckout/services/shop/shopevents"
)

func (s *service) listBaskets(c context.Context) ([]Basket, error) {
	s.logger.Log(c, "", mylog.SeverityInfo, "Fetch all baskets")

	baskets, err := s.basketStore.List(c)
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}

	sort.Slice(baskets, func(i, j int) bool {
		return baskets[i].CreatedAt.After(baskets[j].CreatedAt)
	})
	return baskets, nil
}

func (s *service) createNewBasket(c context.Context) (Basket, error) {
	basketUID := s.uuider.Create()
	basket := createBasket(basketUID, s.nower.Now())

	s.logger.Log(c, basketUID, mylog.SeverityInfo, "Creating new basket with uid %s", basketUID)

	err := s.basketStore.RunInTransaction(c, func(c context.Context) error {
		err := s.basketStore.Put(c, basketUID, basket)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, shopevents.TopicName, shopevents.BasketCreated{
			BasketUID: basketUID,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		return Basket{}, err
	}

	return basket, nil
}

func (s *service) getBasket(c context.Context, basketUID string) (Basket, error) {
	s.logger.Log(c, basketUID, mylog.SeverityInfo, "Fetch details of basket uid %s", basketUID)

	basket, found, err := s.basketStore.Get(c, basketUID)
	if err != nil {
		return Basket{}, myerrors.NewInternalError(err)
	}
	if !found {
		return Basket{}, myerrors.NewNotFoundError(fmt.Errorf("basket with uid %s not found", basketUID))
	}

	return basket, nil
}

// getBasketPage prepares the form that hands the basket over to the checkout.
// Once a checkout session exists, the form updates the cart of that session.
func (s *service) getBasketPage(c context.Context, basketUID string) (BasketDetailPageInfo, error) {
	basket, err := s.getBasket(c, basketUID)
	if err != nil {
		return BasketDetailPageInfo{}, err
	}

	values, err := basket.ToCheckout().ToForm()
	if err != nil {
		return BasketDetailPageInfo{}, myerrors.NewInternalError(err)
	}

	checkoutURL := fmt.Sprintf("/klarna/checkout/%s", basket.UID)
	if basket.CheckoutSessionUID != "" {
		checkoutURL = fmt.Sprintf("/klarna/session/%s/cart", basket.CheckoutSessionUID)
	}

	return BasketDetailPageInfo{
		Basket:      basket,
		CheckoutURL: checkoutURL,
		FormValues:  values,
	}, nil
}

// changeQuantity sets the quantity of a catalog product in the basket. A quantity of zero removes the product.
func (s *service) changeQuantity(c context.Context, basketUID string, productUID string, quantity int) (Basket, error) {
	s.logger.Log(c, basketUID, mylog.SeverityInfo, "Change quantity of %s in basket %s to %d", productUID, basketUID, quantity)

	if quantity < 0 {
		return Basket{}, myerrors.NewInvalidInputErrorf("invalid quantity %d", quantity)
	}
	product, found := findProduct(productUID)
	if !found {
		return Basket{}, myerrors.NewNotFoundError(fmt.Errorf("product with uid %s not found", productUID))
	}

	now := s.nower.Now()

	var basket Basket
	err := s.basketStore.RunInTransaction(c, func(c context.Context) error {
		var err error
		basket, err = s.getBasket(c, basketUID)
		if err != nil {
			return err
		}
		if basket.Done {
			return myerrors.NewInvalidInputErrorf("basket %s has already been paid", basketUID)
		}

		selected := []SelectedProduct{}
		present := false
		for _, p := range basket.SelectedProducts {
			if p.UID == productUID {
				present = true
				p.Quantity = quantity
			}
			if p.Quantity > 0 {
				selected = append(selected, p)
			}
		}
		if !present && quantity > 0 {
			product.Quantity = quantity
			selected = append(selected, product)
		}
		if len(selected) == 0 {
			return myerrors.NewInvalidInputErrorf("basket %s cannot become empty", basketUID)
		}

		basket.SelectedProducts = selected
		basket.LastModified = &now

		err = s.basketStore.Put(c, basketUID, basket)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return Basket{}, err
	}

	return basket, nil
}
