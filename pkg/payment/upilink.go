// Package payment builds the UPI deep links and QR payload used at checkout.
// Payment confirmation stays manual: the customer pays through one of these
// links and submits the transaction reference for admin verification.
package payment

import (
	"fmt"
	"net/url"
)

// DeepLinks carries one link per supported payment app plus the generic
// upi:// URL, which doubles as the QR code payload and as the timed fallback
// when an app-specific scheme does not resolve on the device.
type DeepLinks struct {
	UPI     string `json:"upi"`
	GPay    string `json:"gpay"`
	PhonePe string `json:"phonepe"`
	Paytm   string `json:"paytm"`
	// Amount is the exact 2-decimal string embedded in every link. The
	// on-screen "amount to pay" must render this same string; any divergence
	// is a payment-reconciliation defect.
	Amount string `json:"amount"`
}

// Links builds the deep link set for an order. amount must already be the
// fixed 2-decimal display string from the pricing breakdown; it is embedded
// verbatim, never re-formatted.
func Links(upiID, merchantName, orderID, amount string) DeepLinks {
	note := url.QueryEscape("Order " + orderID)
	payee := url.QueryEscape(merchantName)

	params := fmt.Sprintf("pa=%s&pn=%s&am=%s&cu=INR&tn=%s", upiID, payee, amount, note)

	return DeepLinks{
		UPI:     fmt.Sprintf("upi://pay?%s&tr=%s", params, orderID),
		GPay:    "gpay://upi/pay?" + params,
		PhonePe: "phonepe://pay?" + params,
		Paytm:   "paytmmp://pay?" + params,
		Amount:  amount,
	}
}

// QRPayload returns the string to encode in the payment QR code. It is the
// generic upi:// link so any UPI app can scan it.
func (d DeepLinks) QRPayload() string {
	return d.UPI
}
