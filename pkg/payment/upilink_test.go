package payment

import (
	"net/url"
	"strings"
	"testing"
)

func TestLinksCarryExactAmount(t *testing.T) {
	d := Links("9885192948@ptyes", "VADDADI PICKLES", "ORD-1700000000000", "348.00")

	if d.Amount != "348.00" {
		t.Fatalf("Amount = %q; want it byte-identical to the input display string", d.Amount)
	}
	for name, link := range map[string]string{
		"upi": d.UPI, "gpay": d.GPay, "phonepe": d.PhonePe, "paytm": d.Paytm,
	} {
		if !strings.Contains(link, "am=348.00") {
			t.Errorf("%s link missing exact amount: %q", name, link)
		}
		if !strings.Contains(link, "cu=INR") {
			t.Errorf("%s link missing currency: %q", name, link)
		}
		if !strings.Contains(link, "pa=9885192948@ptyes") {
			t.Errorf("%s link missing payee id: %q", name, link)
		}
	}
}

func TestLinkSchemes(t *testing.T) {
	d := Links("id@bank", "Store", "ORD-1", "10.00")
	cases := map[string]string{
		d.UPI:     "upi://pay?",
		d.GPay:    "gpay://upi/pay?",
		d.PhonePe: "phonepe://pay?",
		d.Paytm:   "paytmmp://pay?",
	}
	for link, prefix := range cases {
		if !strings.HasPrefix(link, prefix) {
			t.Errorf("link %q should start with %q", link, prefix)
		}
	}
}

func TestTransactionRefOnlyOnGenericLink(t *testing.T) {
	d := Links("id@bank", "Store", "ORD-42", "10.00")
	if !strings.Contains(d.UPI, "tr=ORD-42") {
		t.Errorf("upi link should carry the transaction ref: %q", d.UPI)
	}
	for _, link := range []string{d.GPay, d.PhonePe, d.Paytm} {
		if strings.Contains(link, "tr=") {
			t.Errorf("app link should not carry tr param: %q", link)
		}
	}
}

func TestMerchantNameAndNoteEncoded(t *testing.T) {
	d := Links("id@bank", "VADDADI PICKLES", "ORD-7", "10.00")
	if strings.Contains(d.UPI, "pn=VADDADI PICKLES") {
		t.Errorf("merchant name must be percent-encoded: %q", d.UPI)
	}
	if !strings.Contains(d.UPI, "pn="+url.QueryEscape("VADDADI PICKLES")) {
		t.Errorf("encoded merchant name missing: %q", d.UPI)
	}
	if !strings.Contains(d.UPI, "tn="+url.QueryEscape("Order ORD-7")) {
		t.Errorf("encoded transaction note missing: %q", d.UPI)
	}
}

func TestQRPayloadMatchesGenericLink(t *testing.T) {
	d := Links("id@bank", "Store", "ORD-1", "10.00")
	if d.QRPayload() != d.UPI {
		t.Errorf("QRPayload = %q; want the generic upi link %q", d.QRPayload(), d.UPI)
	}
}
