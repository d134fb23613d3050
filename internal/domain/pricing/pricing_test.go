package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shop-assistant/internal/domain/cart"
	"github.com/example/shop-assistant/internal/domain/catalog"
	"github.com/example/shop-assistant/internal/domain/coupon"
)

const delta = 1e-9

func cartWith(t *testing.T, price float64, quantity int) *cart.Cart {
	t.Helper()
	c := cart.New()
	require.NoError(t, c.AddItem(catalog.Product{ID: 1, Name: "Producto", Price: price}, quantity))
	return c
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	s := ComputeTotals(cart.New())

	assert.Zero(t, s.Subtotal)
	assert.Zero(t, s.FinalTotal)
}

func TestComputeTotals_LineAndCartDiscounts(t *testing.T) {
	// 3 x 100: one unit of the group of three at 25% off, then the
	// whole-cart 10% over the remaining 275.
	s := ComputeTotals(cartWith(t, 100, 3))

	assert.InDelta(t, 300.0, s.Subtotal, delta)
	assert.InDelta(t, 25.0, s.LineDiscounts, delta)
	assert.InDelta(t, 27.5, s.CartDiscount, delta)
	assert.Zero(t, s.CouponDiscount)
	assert.InDelta(t, 247.5, s.FinalTotal, delta)
}

func TestComputeTotals_LineDiscountPerCompleteGroup(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		expected float64
	}{
		{"below a group", 2, 0},
		{"one group", 3, 2.5},
		{"incomplete second group", 5, 2.5},
		{"two groups", 6, 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ComputeTotals(cartWith(t, 10, tt.quantity))
			assert.InDelta(t, tt.expected, s.LineDiscounts, delta)
		})
	}
}

func TestComputeTotals_CartDiscountHardCutoff(t *testing.T) {
	// exactly 100 after line discounts does not qualify
	s := ComputeTotals(cartWith(t, 50, 2))
	assert.Zero(t, s.CartDiscount)
	assert.InDelta(t, 100.0, s.FinalTotal, delta)

	s = ComputeTotals(cartWith(t, 50.5, 2))
	assert.InDelta(t, 10.1, s.CartDiscount, delta)
}

func TestComputeTotals_PercentCouponAppliesAfterOtherDiscounts(t *testing.T) {
	// 3 x 50 = 150, line 12.5, cart 13.75, then 20% of 123.75.
	c := cartWith(t, 50, 3)
	c.ApplyCoupon(coupon.Coupon{Code: "VIP20", Kind: coupon.KindPercent, Value: 20})

	s := ComputeTotals(c)

	assert.InDelta(t, 12.5, s.LineDiscounts, delta)
	assert.InDelta(t, 13.75, s.CartDiscount, delta)
	assert.InDelta(t, 24.75, s.CouponDiscount, delta)
	assert.InDelta(t, 99.0, s.FinalTotal, delta)
}

func TestComputeTotals_FixedCouponCappedAtTotal(t *testing.T) {
	c := cartWith(t, 4, 1)
	c.ApplyCoupon(coupon.Coupon{Code: "SUPER10", Kind: coupon.KindFixed, Value: 10})

	s := ComputeTotals(c)

	assert.InDelta(t, 4.0, s.CouponDiscount, delta)
	assert.Zero(t, s.FinalTotal, "final total never goes negative")
}

func TestComputeTotals_CouponMinTotalUsesDiscountedValue(t *testing.T) {
	// Raw subtotal 150 passes the 130 minimum, but the post-discount
	// total 123.75 does not, so the coupon stays inert.
	c := cartWith(t, 50, 3)
	c.ApplyCoupon(coupon.Coupon{Code: "MIN130", Kind: coupon.KindPercent, Value: 20, MinTotal: 130})

	s := ComputeTotals(c)

	assert.Zero(t, s.CouponDiscount)
	assert.InDelta(t, 123.75, s.FinalTotal, delta)
}

func TestComputeTotals_CouponMinTotalBoundary(t *testing.T) {
	// an exactly-met minimum qualifies
	c := cartWith(t, 40, 1)
	c.ApplyCoupon(coupon.Coupon{Code: "ENVIO15", Kind: coupon.KindFixed, Value: 15, MinTotal: 40})

	s := ComputeTotals(c)

	assert.InDelta(t, 15.0, s.CouponDiscount, delta)
	assert.InDelta(t, 25.0, s.FinalTotal, delta)
}
