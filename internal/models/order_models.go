package models

import "time"

// Order status vocabulary. Transitions are driven by admin or driver actions
// only; delivered and cancelled are terminal.
const (
	StatusPending         = "pending"
	StatusPaymentPending  = "payment_pending"
	StatusPaymentApproved = "payment_approved"
	StatusProcessing      = "processing"
	StatusShipped         = "shipped"
	StatusOutForDelivery  = "out_for_delivery"
	StatusDelivered       = "delivered"
	StatusCancelled       = "cancelled"
)

// Payment status vocabulary, orthogonal to order status.
const (
	PaymentPending          = "pending"
	PaymentAwaitingApproval = "awaiting_approval"
	PaymentApproved         = "approved"
	PaymentRejected         = "rejected"
)

// CODTransactionID is the literal transaction reference recorded for
// cash-on-delivery orders.
const CODTransactionID = "COD"

// CartItem is a (product, variant, quantity) tuple. The uniqueness key is
// (product id, variant weight label); quantity is always positive.
type CartItem struct {
	Product  Product        `json:"product"`
	Variant  ProductVariant `json:"variant"`
	Quantity int            `json:"quantity"`
}

// Order is a placed order with a frozen snapshot of the customer, the cart
// lines and the delivery address at order time.
type Order struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	UserName      string     `json:"user_name"`
	UserEmail     string     `json:"user_email"`
	UserPhone     string     `json:"user_phone"`
	Items         []CartItem `json:"items"`
	Total         float64    `json:"total"`
	Discount      float64    `json:"discount"`
	FinalAmount   float64    `json:"final_amount"`
	CouponCode    string     `json:"coupon_code,omitempty"`
	Address       Address    `json:"address"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	PaymentMethod string     `json:"payment_method"`
	TransactionID string     `json:"transaction_id,omitempty"`
	TrackingID    string     `json:"tracking_id,omitempty"`
	Carrier       string     `json:"carrier,omitempty"`
	DriverID      string     `json:"driver_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Invoice is a display projection of an order.
type Invoice struct {
	OrderID       string    `json:"order_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Date          time.Time `json:"date"`
	Order         *Order    `json:"order"`
}

// CheckoutRequest is the payload for placing an order from the current cart.
// TransactionID is required unless the payment method is cod.
type CheckoutRequest struct {
	DeliveryName  string  `json:"delivery_name" validate:"required"`
	DeliveryPhone string  `json:"delivery_phone" validate:"required"`
	Address       Address `json:"address" validate:"required"`
	PaymentMethod string  `json:"payment_method" validate:"required,oneof=upi cod bank_transfer"`
	TransactionID string  `json:"transaction_id,omitempty"`
}

// TrackingAssignmentRequest is the admin payload for attaching a carrier
// tracking reference to an order.
type TrackingAssignmentRequest struct {
	TrackingID string `json:"tracking_id" validate:"required"`
	Carrier    string `json:"carrier" validate:"required"`
}

// AdminStatusRequest is the admin status-selector override. Any value from the
// status vocabulary is accepted, independent of payment status.
type AdminStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending payment_pending payment_approved processing shipped out_for_delivery delivered cancelled"`
}
