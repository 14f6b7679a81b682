// Package pricing derives the price breakdown shown on the cart page, the
// checkout page and persisted on the order. All three must agree, so this is
// the only place the math lives.
package pricing

import (
	"fmt"
	"math"

	"pickle-storefront/internal/models"
)

// Shipping is free at or above the threshold, otherwise a flat fee applies.
// Fixed for this version, not configurable.
const (
	FreeShippingThreshold = 1000.0
	FlatShippingFee       = 50.0
)

// Breakdown is the derived price summary for a cart with an optional coupon.
type Breakdown struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// Quote computes the breakdown for the given cart lines and optional applied
// coupon. Pure function: no rounding on intermediate values, the total is
// rounded half-up to 2 decimal places at the end.
func Quote(items []models.CartItem, coupon *models.Coupon) Breakdown {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Variant.Price * float64(item.Quantity)
	}

	var discount float64
	if coupon != nil {
		if coupon.Type == models.CouponPercentage {
			discount = subtotal * coupon.Discount / 100
		} else {
			discount = coupon.Discount
		}
	}

	shipping := FlatShippingFee
	if subtotal >= FreeShippingThreshold {
		shipping = 0
	}

	return Breakdown{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Total:    round2(subtotal - discount + shipping),
	}
}

// Display is the fixed 2-decimal amount string. The UPI QR payload uses this
// exact string, so it must match what the customer sees on screen.
func (b Breakdown) Display() string {
	return fmt.Sprintf("%.2f", b.Total)
}

// DisplayWhole is the rounded whole-unit amount, used for the COD
// "collect amount" label.
func (b Breakdown) DisplayWhole() int {
	return int(math.Round(b.Total))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
