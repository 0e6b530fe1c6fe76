package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/coupon"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/pricing"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/repository"
)

var ErrInvalidProduct = errors.New("invalid product")

// CouponValidator looks coupon codes up.
type CouponValidator interface {
	Validate(code string) coupon.Result
}

// CartView is a cart snapshot with its pricing.
type CartView struct {
	Items     []models.LineItem `json:"items"`
	Coupon    *models.Coupon    `json:"coupon,omitempty"`
	ItemCount int               `json:"itemCount"`
	Quote     models.Quote      `json:"quote"`
	Display   DisplayTotals     `json:"display"`
}

// DisplayTotals are the rounded, currency-prefixed amounts.
type DisplayTotals struct {
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
}

// CartService applies user actions to the session cart
type CartService struct {
	carts    *cart.Controller
	products repository.ProductRepository
	coupons  CouponValidator
	currency string
}

// NewCartService creates a new cart service
func NewCartService(carts *cart.Controller, products repository.ProductRepository, coupons CouponValidator, currency string) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		coupons:  coupons,
		currency: currency,
	}
}

// GetCart returns the session's cart.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (CartView, error) {
	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	return s.view(c), nil
}

// AddItem adds quantity units of a product, priced at its current unit price.
func (s *CartService) AddItem(ctx context.Context, sessionID string, productID int64, quantity int) (CartView, error) {
	if quantity < 1 {
		return CartView{}, cart.ErrInvalidQuantity
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return CartView{}, ErrInvalidProduct
		}
		return CartView{}, err
	}

	unit, err := pricing.UnitPrice(*product)
	if err != nil {
		return CartView{}, fmt.Errorf("product %d: %w", productID, err)
	}

	item := models.LineItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: unit,
		Quantity:  quantity,
	}
	return s.update(ctx, sessionID, func(c models.Cart) (models.Cart, error) {
		return cart.AddItem(c, item)
	})
}

// UpdateQuantity sets a line's quantity; zero removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (CartView, error) {
	if quantity < 0 {
		return CartView{}, cart.ErrInvalidQuantity
	}
	return s.update(ctx, sessionID, func(c models.Cart) (models.Cart, error) {
		return cart.SetQuantity(c, productID, quantity)
	})
}

// Decrement removes one unit of a product.
func (s *CartService) Decrement(ctx context.Context, sessionID string, productID int64) (CartView, error) {
	return s.update(ctx, sessionID, func(c models.Cart) (models.Cart, error) {
		return cart.Decrement(c, productID)
	})
}

// RemoveItem drops a product from the cart.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID int64) (CartView, error) {
	return s.update(ctx, sessionID, func(c models.Cart) (models.Cart, error) {
		return cart.RemoveItem(c, productID)
	})
}

// ApplyCoupon validates code and attaches the coupon, replacing any other.
// Unknown or inactive codes leave the cart untouched.
func (s *CartService) ApplyCoupon(ctx context.Context, sessionID, code string) (CartView, error) {
	res := s.coupons.Validate(code)
	if err := res.Err(); err != nil {
		return CartView{}, err
	}

	return s.update(ctx, sessionID, func(c models.Cart) (models.Cart, error) {
		return cart.WithCoupon(c, *res.Coupon), nil
	})
}

// RemoveCoupon detaches the coupon.
func (s *CartService) RemoveCoupon(ctx context.Context, sessionID string) (CartView, error) {
	return s.update(ctx, sessionID, func(c models.Cart) (models.Cart, error) {
		return cart.WithoutCoupon(c), nil
	})
}

func (s *CartService) update(ctx context.Context, sessionID string, fn func(models.Cart) (models.Cart, error)) (CartView, error) {
	c, err := s.carts.Update(ctx, sessionID, fn)
	if err != nil {
		return CartView{}, err
	}
	return s.view(c), nil
}

func (s *CartService) view(c models.Cart) CartView {
	q := pricing.PriceCart(c)
	return CartView{
		Items:     c.Items,
		Coupon:    c.Coupon,
		ItemCount: cart.ItemCount(c),
		Quote:     q,
		Display: DisplayTotals{
			Subtotal: pricing.Format(q.Subtotal, s.currency),
			Discount: pricing.Format(q.Discount, s.currency),
			Total:    pricing.Format(q.Total, s.currency),
		},
	}
}
