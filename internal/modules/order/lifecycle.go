package order

import (
	"fmt"
	"time"

	"pickle-storefront/internal/models"
	"pickle-storefront/internal/pricing"
)

// Effect is a follow-up action a transition asks its caller to perform.
// Transitions are pure: they take the current order, return the next order
// and the effects, and never touch storage or the network themselves.
type Effect interface{ effect() }

// NotifyCustomer asks for a WhatsApp status-update message composed for the
// new status and handed to the messaging deep link. Emitted on every status
// change.
type NotifyCustomer struct{ Status string }

func (NotifyCustomer) effect() {}

// DeactivateTracking asks for the order's driver-location record to be marked
// inactive. Emitted when an order reaches delivered.
type DeactivateTracking struct{}

func (DeactivateTracking) effect() {}

// NewOrder builds the initial order from a checkout: a frozen snapshot of the
// customer, cart lines and address, priced through the same breakdown the
// cart page showed. Every order starts in payment_pending/awaiting_approval;
// COD orders carry the literal "COD" transaction reference.
func NewOrder(userID, email string, req models.CheckoutRequest, items []models.CartItem, coupon *models.Coupon, now time.Time) models.Order {
	b := pricing.Quote(items, coupon)

	o := models.Order{
		ID:            fmt.Sprintf("ORD-%d", now.UnixMilli()),
		UserID:        userID,
		UserName:      req.DeliveryName,
		UserEmail:     email,
		UserPhone:     req.DeliveryPhone,
		Items:         items,
		Total:         b.Subtotal,
		Discount:      b.Discount,
		FinalAmount:   b.Total,
		Address:       req.Address,
		Status:        models.StatusPaymentPending,
		PaymentStatus: models.PaymentAwaitingApproval,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if coupon != nil {
		o.CouponCode = coupon.Code
	}
	if req.PaymentMethod == "cod" {
		o.TransactionID = models.CODTransactionID
	}
	return o
}

// ApprovePayment marks the payment approved. The order status advances to
// payment_approved only when it is still payment_pending; an order that has
// already moved on keeps its status.
func ApprovePayment(o models.Order, now time.Time) (models.Order, []Effect) {
	o.PaymentStatus = models.PaymentApproved
	o.UpdatedAt = now

	var effects []Effect
	if o.Status == models.StatusPaymentPending {
		o.Status = models.StatusPaymentApproved
		effects = append(effects, NotifyCustomer{Status: o.Status})
	}
	return o, effects
}

// RejectPayment marks the payment rejected. The order status is untouched, so
// no notification is composed.
func RejectPayment(o models.Order, now time.Time) (models.Order, []Effect) {
	o.PaymentStatus = models.PaymentRejected
	o.UpdatedAt = now
	return o, nil
}

// AssignTracking attaches a carrier tracking reference and forces the order
// to shipped regardless of its prior status.
func AssignTracking(o models.Order, trackingID, carrier string, now time.Time) (models.Order, []Effect) {
	o.TrackingID = trackingID
	o.Carrier = carrier
	o.Status = models.StatusShipped
	o.UpdatedAt = now
	return o, []Effect{NotifyCustomer{Status: o.Status}}
}

// SetStatus is the unguarded admin override: any value from the status
// vocabulary is accepted, independent of payment status. Setting delivered
// also deactivates any live driver location.
func SetStatus(o models.Order, status string, now time.Time) (models.Order, []Effect) {
	if o.Status == status {
		return o, nil
	}
	o.Status = status
	o.UpdatedAt = now

	effects := []Effect{NotifyCustomer{Status: status}}
	if status == models.StatusDelivered {
		effects = append(effects, DeactivateTracking{})
	}
	return o, effects
}

// StartDelivery is the tracking-session side effect: the order moves to
// out_for_delivery and records the driver, unless it is already out.
func StartDelivery(o models.Order, driverID string, now time.Time) (models.Order, []Effect) {
	if o.DriverID == "" {
		o.DriverID = driverID
	}
	if o.Status == models.StatusOutForDelivery {
		return o, nil
	}
	o.Status = models.StatusOutForDelivery
	o.UpdatedAt = now
	return o, []Effect{NotifyCustomer{Status: o.Status}}
}

// MarkDelivered is the terminal driver action.
func MarkDelivered(o models.Order, now time.Time) (models.Order, []Effect) {
	o.Status = models.StatusDelivered
	o.UpdatedAt = now
	return o, []Effect{NotifyCustomer{Status: o.Status}, DeactivateTracking{}}
}
