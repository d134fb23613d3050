package pricing

import (
	"math"

	"github.com/example/shop-assistant/internal/domain/cart"
	"github.com/example/shop-assistant/internal/domain/coupon"
)

const (
	// Every complete group of three units of the same product gets one
	// unit at 25% off.
	lineGroupSize = 3
	lineGroupRate = 0.25

	// Whole-cart discount once the total after line discounts passes
	// the threshold. Hard cutoff, not graduated.
	cartDiscountThreshold = 100.0
	cartDiscountRate      = 0.10
)

// Summary is the full discount breakdown for a cart. It is derived on
// demand and stale as soon as the cart changes; always recompute, never
// patch individual fields.
type Summary struct {
	Subtotal       float64 `json:"subtotal"`
	LineDiscounts  float64 `json:"line_discounts"`
	CartDiscount   float64 `json:"cart_discount"`
	CouponDiscount float64 `json:"coupon_discount"`
	FinalTotal     float64 `json:"final_total"`
}

// ComputeTotals runs the discount pipeline over the cart contents. The
// stage order is load-bearing: line discounts apply to the raw
// subtotal, the cart discount to the post-line total, and the coupon to
// the post-cart total (including its min-total gate).
func ComputeTotals(c *cart.Cart) Summary {
	var subtotal float64
	for _, item := range c.Items {
		subtotal += item.Product.Price * float64(item.Quantity)
	}

	lineDiscounts := lineDiscount(c)
	afterLine := subtotal - lineDiscounts

	cartDiscount := cartDiscount(afterLine)
	afterCart := afterLine - cartDiscount

	couponDiscount := couponDiscount(afterCart, c.AppliedCoupon)

	return Summary{
		Subtotal:       subtotal,
		LineDiscounts:  lineDiscounts,
		CartDiscount:   cartDiscount,
		CouponDiscount: couponDiscount,
		FinalTotal:     math.Max(afterCart-couponDiscount, 0),
	}
}

func lineDiscount(c *cart.Cart) float64 {
	var total float64
	for _, item := range c.Items {
		groups := math.Floor(float64(item.Quantity) / lineGroupSize)
		total += groups * item.Product.Price * lineGroupRate
	}
	return total
}

func cartDiscount(afterLine float64) float64 {
	if afterLine > cartDiscountThreshold {
		return afterLine * cartDiscountRate
	}
	return 0
}

func couponDiscount(afterCart float64, cp *coupon.Coupon) float64 {
	if cp == nil {
		return 0
	}
	if afterCart < cp.MinTotal {
		return 0
	}
	switch cp.Kind {
	case coupon.KindPercent:
		return afterCart * cp.Value / 100
	case coupon.KindFixed:
		return math.Min(cp.Value, afterCart)
	}
	return 0
}
