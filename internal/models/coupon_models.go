package models

import "time"

// Coupon discount types.
const (
	CouponPercentage = "percentage"
	CouponFixed      = "fixed"
)

// Coupon is a named discount rule gated by a minimum order amount. Coupons are
// created and toggled by admins; they are never deleted, only deactivated.
type Coupon struct {
	Code      string    `json:"code"`
	Discount  float64   `json:"discount"`
	Type      string    `json:"type"`
	MinOrder  float64   `json:"min_order"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ApplyCouponRequest is the payload for applying a coupon to the cart.
type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

// CreateCouponRequest is the admin payload for creating a coupon.
type CreateCouponRequest struct {
	Code     string  `json:"code" validate:"required"`
	Discount float64 `json:"discount" validate:"required,gt=0"`
	Type     string  `json:"type" validate:"required,oneof=percentage fixed"`
	MinOrder float64 `json:"min_order" validate:"gte=0"`
}
