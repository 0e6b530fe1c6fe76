// Package pricing computes cart subtotals and coupon discounts.
//
// All arithmetic is exact decimal arithmetic; rounding happens only in Format,
// when an amount is about to be shown or handed to the payment redirect.
package pricing

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// ErrParse is matched by every price parsing failure.
var ErrParse = errors.New("malformed price")

// ParseError describes a price string that does not conform to the
// currency-prefixed decimal format.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse price %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ParsePrice parses a display price such as "₹1,299.50", "$10" or "Rs 500".
// The currency prefix is everything before the first digit or minus sign.
// Digit grouping commas are ignored. Negative amounts are rejected.
func ParsePrice(s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return decimal.Zero, &ParseError{Input: s, Reason: "empty price"}
	}

	start := strings.IndexFunc(raw, func(r rune) bool {
		return unicode.IsDigit(r) || r == '-'
	})
	if start < 0 {
		return decimal.Zero, &ParseError{Input: s, Reason: "missing amount"}
	}

	amount := strings.ReplaceAll(strings.TrimSpace(raw[start:]), ",", "")
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, &ParseError{Input: s, Reason: "amount is not a decimal number"}
	}
	if d.IsNegative() {
		return decimal.Zero, &ParseError{Input: s, Reason: "negative amount"}
	}

	return d, nil
}

// UnitPrice returns the price a product is sold at: its sale price when set,
// otherwise its list price.
func UnitPrice(p models.Product) (decimal.Decimal, error) {
	if p.OnSale() {
		return ParsePrice(p.SalePrice)
	}
	return ParsePrice(p.Price)
}

// ComputeSubtotal sums unit price times quantity over all items.
func ComputeSubtotal(items []models.LineItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal
}

// ApplyCoupon discounts a subtotal. Fixed coupons are clamped to the
// subtotal; percent coupons take value% of the whole subtotal. The total is
// never negative.
func ApplyCoupon(subtotal decimal.Decimal, coupon *models.Coupon) models.Quote {
	discount := decimal.Zero

	if coupon != nil {
		switch coupon.Type {
		case models.CouponFixed:
			discount = decimal.Min(coupon.Value, subtotal)
		case models.CouponPercent:
			discount = subtotal.Mul(coupon.Value).Shift(-2)
		}
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	return models.Quote{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}
}

// PriceCart prices a cart snapshot with its attached coupon, if any.
func PriceCart(cart models.Cart) models.Quote {
	return ApplyCoupon(ComputeSubtotal(cart.Items), cart.Coupon)
}

// Format renders an amount for display, rounded to two decimal places.
func Format(amount decimal.Decimal, symbol string) string {
	return symbol + amount.StringFixed(2)
}
