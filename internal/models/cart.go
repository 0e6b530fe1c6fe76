package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CouponType selects how a coupon's value is applied.
type CouponType string

const (
	CouponFixed   CouponType = "fixed"
	CouponPercent CouponType = "percent"
)

// Coupon is a discount rule identified by a case-insensitive code.
type Coupon struct {
	Code     string          `json:"code"`
	Type     CouponType      `json:"type"`
	Value    decimal.Decimal `json:"value"`
	IsActive bool            `json:"isActive"`
}

// LineItem is one product entry in a cart. Quantity is always >= 1.
type LineItem struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Cart is an immutable snapshot of a shopping cart. Items keep insertion order.
// Mutations produce a new snapshot, see package cart.
type Cart struct {
	Items  []LineItem `json:"items"`
	Coupon *Coupon    `json:"coupon,omitempty"`
}

// Quote is the priced view of a cart.
type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Order is the result of checkout. Nothing is charged here; PaymentURL is the
// external payment redirect the client opens.
type Order struct {
	ID         string     `json:"id"`
	Items      []LineItem `json:"items"`
	Subtotal   string     `json:"subtotal"`
	Discount   string     `json:"discount"`
	Total      string     `json:"total"`
	CouponCode string     `json:"couponCode,omitempty"`
	PaymentURL string     `json:"paymentUrl"`
	CreatedAt  time.Time  `json:"createdAt"`
}
