package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/pricing"
	"github.com/google/uuid"
)

var ErrEmptyCart = errors.New("cart must contain at least one item")

// CheckoutService turns a cart into an order and a payment redirect. No
// payment API is called here.
type CheckoutService struct {
	carts       *cart.Controller
	coupons     CouponValidator
	paymentBase *url.URL
	currency    string
	now         func() time.Time
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(carts *cart.Controller, coupons CouponValidator, paymentLinkBase, currency string) (*CheckoutService, error) {
	base, err := url.Parse(paymentLinkBase)
	if err != nil {
		return nil, fmt.Errorf("invalid payment link base: %w", err)
	}

	return &CheckoutService{
		carts:       carts,
		coupons:     coupons,
		paymentBase: base,
		currency:    currency,
		now:         time.Now,
	}, nil
}

// Checkout prices the session cart, builds the order and clears the cart.
// The applied coupon is re-validated; if it was deactivated or removed since
// it was applied, checkout fails and the cart is left as is.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string) (*models.Order, error) {
	var order *models.Order

	_, err := s.carts.Update(ctx, sessionID, func(c models.Cart) (models.Cart, error) {
		if len(c.Items) == 0 {
			return c, ErrEmptyCart
		}

		if c.Coupon != nil {
			res := s.coupons.Validate(c.Coupon.Code)
			if err := res.Err(); err != nil {
				return c, err
			}
			c = cart.WithCoupon(c, *res.Coupon)
		}

		order = s.buildOrder(c)
		return cart.Clear(c), nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *CheckoutService) buildOrder(c models.Cart) *models.Order {
	q := pricing.PriceCart(c)

	order := &models.Order{
		ID:        generateOrderID(),
		Items:     c.Items,
		Subtotal:  pricing.Format(q.Subtotal, s.currency),
		Discount:  pricing.Format(q.Discount, s.currency),
		Total:     pricing.Format(q.Total, s.currency),
		CreatedAt: s.now().UTC(),
	}
	if c.Coupon != nil {
		order.CouponCode = c.Coupon.Code
	}

	link := *s.paymentBase
	query := link.Query()
	query.Set("order", order.ID)
	query.Set("amount", q.Total.StringFixed(2))
	if order.CouponCode != "" {
		query.Set("coupon", order.CouponCode)
	}
	link.RawQuery = query.Encode()
	order.PaymentURL = link.String()

	return order
}

// generateOrderID generates a unique order ID using UUID
func generateOrderID() string {
	return uuid.New().String()
}
