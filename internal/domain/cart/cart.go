package cart

import (
	"errors"

	"github.com/example/shop-assistant/internal/domain/catalog"
	"github.com/example/shop-assistant/internal/domain/coupon"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrNotInCart       = errors.New("product is not in the cart")
)

// LineItem is one product line in a cart. Quantity is always >= 1; a
// line that would drop to zero is removed instead.
type LineItem struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Cart is the mutable per-session aggregate: line items keyed by
// product id plus at most one applied coupon.
type Cart struct {
	Items         map[int]LineItem `json:"items"`
	AppliedCoupon *coupon.Coupon   `json:"applied_coupon,omitempty"`
}

func New() *Cart {
	return &Cart{Items: make(map[int]LineItem)}
}

// AddItem adds quantity units of a product. Repeated adds of the same
// product accumulate.
func (c *Cart) AddItem(p catalog.Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if c.Items == nil {
		c.Items = make(map[int]LineItem)
	}
	if existing, ok := c.Items[p.ID]; ok {
		existing.Quantity += quantity
		c.Items[p.ID] = existing
		return nil
	}
	c.Items[p.ID] = LineItem{Product: p, Quantity: quantity}
	return nil
}

// SetQuantity overwrites a line's quantity. A quantity <= 0 removes the
// line and is not an error.
func (c *Cart) SetQuantity(productID, quantity int) error {
	if quantity <= 0 {
		delete(c.Items, productID)
		return nil
	}
	item, ok := c.Items[productID]
	if !ok {
		return ErrNotInCart
	}
	item.Quantity = quantity
	c.Items[productID] = item
	return nil
}

// RemoveItem drops a line. Removing an absent product is a no-op.
func (c *Cart) RemoveItem(productID int) {
	delete(c.Items, productID)
}

// Contains reports whether the product has a line in the cart.
func (c *Cart) Contains(productID int) bool {
	_, ok := c.Items[productID]
	return ok
}

// ApplyCoupon sets the cart's coupon, replacing any previous one, and
// returns the replaced coupon if there was one.
func (c *Cart) ApplyCoupon(cp coupon.Coupon) *coupon.Coupon {
	previous := c.AppliedCoupon
	c.AppliedCoupon = &cp
	return previous
}

// Clear empties the cart and drops the applied coupon.
func (c *Cart) Clear() {
	c.Items = make(map[int]LineItem)
	c.AppliedCoupon = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
