// Package notify composes the outbound customer messages opened through
// wa.me deep links and the carrier tracking URLs shown on the orders page.
// Everything here is fire and forget: the caller opens the returned URL and
// no delivery confirmation exists.
package notify

import (
	"fmt"
	"net/url"
	"strings"

	"pickle-storefront/internal/models"
)

// Guidance lines appended to the status update message for the statuses that
// warrant extra context.
var statusGuidance = map[string]string{
	models.StatusShipped:         "📦 Your order is on the way! Expected delivery in 3-5 business days.",
	models.StatusDelivered:       "✅ Your order has been delivered. Thank you for shopping with us!",
	models.StatusPaymentApproved: "💰 Your payment has been verified. We are processing your order.",
}

// WhatsApp builds wa.me status-update links for a store.
type WhatsApp struct {
	storeName string
	orderURL  string
}

// NewWhatsApp returns a message composer for the given store display name and
// public order-tracking page URL.
func NewWhatsApp(storeName, orderURL string) *WhatsApp {
	return &WhatsApp{storeName: storeName, orderURL: orderURL}
}

// StatusUpdate composes the canned status-change message for an order and
// returns the wa.me deep link carrying it. The status argument is the new
// status, which may differ from order.Status when composing ahead of a write.
func (w *WhatsApp) StatusUpdate(order models.Order, status string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🥒 *%s - Order Update*\n\n", w.storeName)
	fmt.Fprintf(&b, "Dear %s,\n\n", order.UserName)
	fmt.Fprintf(&b, "Your order *%s* status has been updated to: *%s*\n", order.ID, status)
	if guidance, ok := statusGuidance[status]; ok {
		b.WriteString("\n" + guidance + "\n")
	}
	if status == models.StatusShipped && order.TrackingID != "" {
		fmt.Fprintf(&b, "\nTracking ID: %s\nTrack your shipment: %s\n", order.TrackingID, TrackingURL(order.Carrier, order.TrackingID))
	}
	fmt.Fprintf(&b, "\nTrack your order: %s\n\n", w.orderURL)
	fmt.Fprintf(&b, "Thank you for choosing %s!", w.storeName)

	return URL(order.UserPhone, b.String())
}

// URL builds a wa.me link for an arbitrary message. The phone number is
// reduced to its digits before templating.
func URL(phone, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits(phone), url.QueryEscape(message))
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
