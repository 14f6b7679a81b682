package models

import "errors"

var ErrNotFound = errors.New("requested resource not found")
var ErrForbidden = errors.New("user does not have permission to access this resource")
var ErrConflict = errors.New("resource conflict, item already exists")
var ErrInvalidToken = errors.New("token not found or expired")
var ErrInvalidCredentials = errors.New("invalid credentials") // email or password provided does not match database record

// ErrEmptyCart indicates checkout was attempted with no cart lines.
var ErrEmptyCart = errors.New("cart is empty")

// ErrPaymentMethodDisabled indicates checkout named a payment method the
// store settings have toggled off.
var ErrPaymentMethodDisabled = errors.New("payment method is disabled")

// ErrVariantUnknown indicates a cart mutation referenced a weight label the
// product does not carry.
var ErrVariantUnknown = errors.New("product variant not found")

// ErrDriverDetailsMissing blocks the idle->tracking transition when the driver
// has not supplied both a name and a phone number.
var ErrDriverDetailsMissing = errors.New("driver name and phone number are required")

// ErrNoPositionFix blocks the idle->tracking transition until at least one
// successful geolocation fix has been reported.
var ErrNoPositionFix = errors.New("no position fix recorded yet")

// ErrTrackingNotActive is returned for stop/delivered actions on an order with
// no running tracking session.
var ErrTrackingNotActive = errors.New("no active tracking session for order")

// ErrReviewNotAllowed gates reviews to buyers with a delivered order
// containing the product.
var ErrReviewNotAllowed = errors.New("reviews are limited to customers with a delivered order for this product")
