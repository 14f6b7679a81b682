package pricing

import (
	"testing"

	"pickle-storefront/internal/models"
)

func item(price float64, qty int) models.CartItem {
	return models.CartItem{
		Product:  models.Product{ID: "p"},
		Variant:  models.ProductVariant{Weight: "250g", Price: price},
		Quantity: qty,
	}
}

func TestQuoteNoCoupon(t *testing.T) {
	// 149 x 2 = 298, below the free-shipping threshold.
	b := Quote([]models.CartItem{item(149, 2)}, nil)
	if b.Subtotal != 298 {
		t.Errorf("Subtotal = %v; want 298", b.Subtotal)
	}
	if b.Discount != 0 {
		t.Errorf("Discount = %v; want 0", b.Discount)
	}
	if b.Shipping != 50 {
		t.Errorf("Shipping = %v; want 50", b.Shipping)
	}
	if b.Total != 348 {
		t.Errorf("Total = %v; want 348", b.Total)
	}
	if b.Display() != "348.00" {
		t.Errorf("Display = %q; want 348.00", b.Display())
	}
}

func TestQuotePercentageCouponFreeShipping(t *testing.T) {
	// Subtotal 1200 with WELCOME10 (10%, min 500): discount 120, free shipping.
	coupon := &models.Coupon{Code: "WELCOME10", Discount: 10, Type: models.CouponPercentage, MinOrder: 500, Active: true}
	b := Quote([]models.CartItem{item(600, 2)}, coupon)
	if b.Subtotal != 1200 {
		t.Errorf("Subtotal = %v; want 1200", b.Subtotal)
	}
	if b.Discount != 120 {
		t.Errorf("Discount = %v; want 120", b.Discount)
	}
	if b.Shipping != 0 {
		t.Errorf("Shipping = %v; want 0", b.Shipping)
	}
	if b.Display() != "1080.00" {
		t.Errorf("Display = %q; want 1080.00", b.Display())
	}
}

func TestQuoteFixedCoupon(t *testing.T) {
	coupon := &models.Coupon{Code: "PICKLE50", Discount: 50, Type: models.CouponFixed, MinOrder: 400, Active: true}
	b := Quote([]models.CartItem{item(250, 2)}, coupon)
	if b.Discount != 50 {
		t.Errorf("Discount = %v; want 50", b.Discount)
	}
	if b.Total != 500 {
		t.Errorf("Total = %v; want 500 (500-50+50)", b.Total)
	}
}

func TestShippingBoundary(t *testing.T) {
	cases := []struct {
		subtotal float64
		shipping float64
	}{
		{999.99, 50},
		{1000, 0},
		{1000.01, 0},
	}
	for _, tc := range cases {
		b := Quote([]models.CartItem{item(tc.subtotal, 1)}, nil)
		if b.Shipping != tc.shipping {
			t.Errorf("subtotal %v: Shipping = %v; want %v", tc.subtotal, b.Shipping, tc.shipping)
		}
	}
}

func TestRoundingHalfUp(t *testing.T) {
	// 3 x 33.335 = 100.005 raw; half-up rounding lands on 100.01 and the
	// display string must carry both decimals.
	b := Quote([]models.CartItem{item(33.335, 3)}, &models.Coupon{Code: "X", Discount: 50, Type: models.CouponFixed})
	// 100.005 - 50 + 50 = 100.005 -> 100.01
	if b.Total != 100.01 {
		t.Errorf("Total = %v; want 100.01", b.Total)
	}
	if b.Display() != "100.01" {
		t.Errorf("Display = %q; want 100.01", b.Display())
	}
}

func TestDisplayWhole(t *testing.T) {
	b := Quote([]models.CartItem{item(149.75, 1)}, nil)
	// 149.75 + 50 = 199.75 -> 200 whole units.
	if b.DisplayWhole() != 200 {
		t.Errorf("DisplayWhole = %d; want 200", b.DisplayWhole())
	}
}

func TestEmptyCart(t *testing.T) {
	b := Quote(nil, nil)
	if b.Subtotal != 0 || b.Discount != 0 {
		t.Errorf("empty cart breakdown = %+v; want zero subtotal and discount", b)
	}
	// The flat fee still applies to a zero subtotal; callers guard against
	// quoting an empty cart at checkout.
	if b.Shipping != FlatShippingFee {
		t.Errorf("Shipping = %v; want %v", b.Shipping, FlatShippingFee)
	}
}
