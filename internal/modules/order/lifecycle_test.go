package order

import (
	"testing"
	"time"

	"pickle-storefront/internal/models"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func checkoutReq(method string) models.CheckoutRequest {
	return models.CheckoutRequest{
		DeliveryName:  "Asha",
		DeliveryPhone: "+91 98765 43210",
		Address:       models.Address{Street: "12 MG Road", City: "Hyderabad", State: "Telangana", Pincode: "500001"},
		PaymentMethod: method,
		TransactionID: "TXN123",
	}
}

func sampleItems() []models.CartItem {
	return []models.CartItem{{
		Product:  models.Product{ID: "p1", Name: "Mango Avakaya"},
		Variant:  models.ProductVariant{Weight: "500g", Price: 600},
		Quantity: 2,
	}}
}

func TestNewOrderDefaults(t *testing.T) {
	o := NewOrder("u1", "asha@example.com", checkoutReq("upi"), sampleItems(), nil, t0)

	if o.ID != "ORD-1740823200000" {
		t.Errorf("ID = %q; want ORD-<unix millis>", o.ID)
	}
	if o.Status != models.StatusPaymentPending {
		t.Errorf("Status = %q; want payment_pending", o.Status)
	}
	if o.PaymentStatus != models.PaymentAwaitingApproval {
		t.Errorf("PaymentStatus = %q; want awaiting_approval", o.PaymentStatus)
	}
	if o.TransactionID != "TXN123" {
		t.Errorf("TransactionID = %q; want the submitted reference", o.TransactionID)
	}
	// 1200 subtotal, free shipping.
	if o.FinalAmount != 1200 {
		t.Errorf("FinalAmount = %v; want 1200", o.FinalAmount)
	}
}

func TestNewOrderCODTransactionReference(t *testing.T) {
	o := NewOrder("u1", "asha@example.com", checkoutReq("cod"), sampleItems(), nil, t0)
	if o.TransactionID != models.CODTransactionID {
		t.Errorf("TransactionID = %q; want %q", o.TransactionID, models.CODTransactionID)
	}
}

func TestNewOrderSnapshotsCoupon(t *testing.T) {
	coupon := &models.Coupon{Code: "WELCOME10", Discount: 10, Type: models.CouponPercentage, MinOrder: 500, Active: true}
	o := NewOrder("u1", "asha@example.com", checkoutReq("upi"), sampleItems(), coupon, t0)

	if o.CouponCode != "WELCOME10" {
		t.Errorf("CouponCode = %q; want WELCOME10", o.CouponCode)
	}
	if o.Discount != 120 || o.FinalAmount != 1080 {
		t.Errorf("Discount/FinalAmount = %v/%v; want 120/1080", o.Discount, o.FinalAmount)
	}
}

func TestApprovePaymentAdvancesFromPaymentPending(t *testing.T) {
	o := NewOrder("u1", "asha@example.com", checkoutReq("upi"), sampleItems(), nil, t0)

	next, effects := ApprovePayment(o, t0.Add(time.Hour))

	if next.PaymentStatus != models.PaymentApproved {
		t.Errorf("PaymentStatus = %q; want approved", next.PaymentStatus)
	}
	if next.Status != models.StatusPaymentApproved {
		t.Errorf("Status = %q; want payment_approved", next.Status)
	}
	if len(effects) != 1 {
		t.Fatalf("effects = %v; want a single customer notification", effects)
	}
	if n, ok := effects[0].(NotifyCustomer); !ok || n.Status != models.StatusPaymentApproved {
		t.Errorf("effect = %#v; want NotifyCustomer{payment_approved}", effects[0])
	}
}

func TestApprovePaymentDoesNotRegressAdvancedOrder(t *testing.T) {
	o := NewOrder("u1", "asha@example.com", checkoutReq("upi"), sampleItems(), nil, t0)
	o.Status = models.StatusProcessing

	next, effects := ApprovePayment(o, t0.Add(time.Hour))

	if next.Status != models.StatusProcessing {
		t.Errorf("Status = %q; approving payment must not move an advanced order", next.Status)
	}
	if next.PaymentStatus != models.PaymentApproved {
		t.Errorf("PaymentStatus = %q; want approved", next.PaymentStatus)
	}
	if len(effects) != 0 {
		t.Errorf("effects = %v; no status change means no notification", effects)
	}
}

func TestRejectPaymentLeavesStatusAlone(t *testing.T) {
	o := NewOrder("u1", "asha@example.com", checkoutReq("upi"), sampleItems(), nil, t0)

	next, effects := RejectPayment(o, t0.Add(time.Hour))

	if next.PaymentStatus != models.PaymentRejected {
		t.Errorf("PaymentStatus = %q; want rejected", next.PaymentStatus)
	}
	if next.Status != models.StatusPaymentPending {
		t.Errorf("Status = %q; want unchanged payment_pending", next.Status)
	}
	if len(effects) != 0 {
		t.Errorf("effects = %v; want none", effects)
	}
}

func TestAssignTrackingForcesShipped(t *testing.T) {
	o := NewOrder("u1", "asha@example.com", checkoutReq("upi"), sampleItems(), nil, t0)
	// Tracking can be assigned from any prior status.
	o.Status = models.StatusPaymentPending

	next, effects := AssignTracking(o, "AWB-991", "delhivery", t0.Add(time.Hour))

	if next.Status != models.StatusShipped {
		t.Errorf("Status = %q; want shipped", next.Status)
	}
	if next.TrackingID != "AWB-991" || next.Carrier != "delhivery" {
		t.Errorf("tracking = %q/%q; want AWB-991/delhivery", next.TrackingID, next.Carrier)
	}
	if len(effects) != 1 {
		t.Errorf("effects = %v; want shipped notification", effects)
	}
}

func TestSetStatusSameValueIsNoop(t *testing.T) {
	o := NewOrder("u1", "asha@example.com", checkoutReq("upi"), sampleItems(), nil, t0)

	next, effects := SetStatus(o, models.StatusPaymentPending, t0.Add(time.Hour))

	if len(effects) != 0 {
		t.Errorf("effects = %v; want none for a same-status write", effects)
	}
	if !next.UpdatedAt.Equal(o.UpdatedAt) {
		t.Errorf("UpdatedAt moved on a no-op write")
	}
}

func TestSetStatusDeliveredDeactivatesTracking(t *testing.T) {
	o := NewOrder("u1", "asha@example.com", checkoutReq("upi"), sampleItems(), nil, t0)
	o.Status = models.StatusOutForDelivery

	_, effects := SetStatus(o, models.StatusDelivered, t0.Add(time.Hour))

	var sawNotify, sawDeactivate bool
	for _, e := range effects {
		switch e.(type) {
		case NotifyCustomer:
			sawNotify = true
		case DeactivateTracking:
			sawDeactivate = true
		}
	}
	if !sawNotify || !sawDeactivate {
		t.Errorf("effects = %v; want notification and tracking deactivation", effects)
	}
}

func TestStartDeliveryRecordsDriverOnce(t *testing.T) {
	o := NewOrder("u1", "asha@example.com", checkoutReq("upi"), sampleItems(), nil, t0)
	o.Status = models.StatusShipped

	next, effects := StartDelivery(o, "d1", t0.Add(time.Hour))
	if next.Status != models.StatusOutForDelivery || next.DriverID != "d1" {
		t.Errorf("order = %q/%q; want out_for_delivery by d1", next.Status, next.DriverID)
	}
	if len(effects) != 1 {
		t.Errorf("effects = %v; want one notification", effects)
	}

	// A second driver ping on an already-out order changes nothing.
	again, effects := StartDelivery(next, "d2", t0.Add(2*time.Hour))
	if again.DriverID != "d1" {
		t.Errorf("DriverID = %q; the first driver stays recorded", again.DriverID)
	}
	if len(effects) != 0 {
		t.Errorf("effects = %v; want none on a repeat", effects)
	}
}

func TestFullStatusSequence(t *testing.T) {
	o := NewOrder("u1", "asha@example.com", checkoutReq("upi"), sampleItems(), nil, t0)

	o, _ = ApprovePayment(o, t0.Add(time.Minute))
	o, _ = SetStatus(o, models.StatusProcessing, t0.Add(2*time.Minute))
	o, _ = AssignTracking(o, "AWB-1", "bluedart", t0.Add(3*time.Minute))
	o, _ = StartDelivery(o, "d1", t0.Add(4*time.Minute))
	o, effects := MarkDelivered(o, t0.Add(5*time.Minute))

	if o.Status != models.StatusDelivered {
		t.Errorf("Status = %q; want delivered", o.Status)
	}
	if len(effects) != 2 {
		t.Errorf("effects = %v; want notification plus tracking deactivation", effects)
	}
}
