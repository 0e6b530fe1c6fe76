// Package cart implements copy-on-write cart snapshots and their storage.
//
// Every operation takes a snapshot by value and returns a new one; the input's
// item slice is never written to, so a snapshot handed to a reader stays
// stable while the owner replaces it.
package cart

import (
	"errors"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrItemNotFound    = errors.New("item not in cart")
)

// Empty returns a new empty cart.
func Empty() models.Cart {
	return models.Cart{Items: []models.LineItem{}}
}

// Clone returns a deep copy of c.
func Clone(c models.Cart) models.Cart {
	items := make([]models.LineItem, len(c.Items))
	copy(items, c.Items)

	out := models.Cart{Items: items}
	if c.Coupon != nil {
		coupon := *c.Coupon
		out.Coupon = &coupon
	}
	return out
}

// AddItem appends item, or increases the quantity of the existing line for
// the same product. The existing line keeps its position.
func AddItem(c models.Cart, item models.LineItem) (models.Cart, error) {
	if item.Quantity < 1 {
		return c, ErrInvalidQuantity
	}

	out := Clone(c)
	if i := indexOf(out, item.ProductID); i >= 0 {
		out.Items[i].Quantity += item.Quantity
		return out, nil
	}

	out.Items = append(out.Items, item)
	return out, nil
}

// SetQuantity replaces the quantity of a line. A quantity of zero or less
// removes the line.
func SetQuantity(c models.Cart, productID int64, quantity int) (models.Cart, error) {
	i := indexOf(c, productID)
	if i < 0 {
		return c, ErrItemNotFound
	}
	if quantity < 1 {
		return RemoveItem(c, productID)
	}

	out := Clone(c)
	out.Items[i].Quantity = quantity
	return out, nil
}

// Decrement removes one unit; removing the last unit removes the line.
func Decrement(c models.Cart, productID int64) (models.Cart, error) {
	i := indexOf(c, productID)
	if i < 0 {
		return c, ErrItemNotFound
	}
	return SetQuantity(c, productID, c.Items[i].Quantity-1)
}

// RemoveItem drops the line for productID.
func RemoveItem(c models.Cart, productID int64) (models.Cart, error) {
	i := indexOf(c, productID)
	if i < 0 {
		return c, ErrItemNotFound
	}

	out := Clone(c)
	out.Items = append(out.Items[:i], out.Items[i+1:]...)
	return out, nil
}

// WithCoupon attaches coupon, replacing any coupon already applied.
func WithCoupon(c models.Cart, coupon models.Coupon) models.Cart {
	out := Clone(c)
	out.Coupon = &coupon
	return out
}

// WithoutCoupon detaches the applied coupon, if any.
func WithoutCoupon(c models.Cart) models.Cart {
	out := Clone(c)
	out.Coupon = nil
	return out
}

// Clear returns an empty cart with no coupon.
func Clear(models.Cart) models.Cart {
	return Empty()
}

// ItemCount returns the total number of units in the cart.
func ItemCount(c models.Cart) int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func indexOf(c models.Cart, productID int64) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
