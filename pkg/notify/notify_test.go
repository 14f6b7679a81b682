package notify

import (
	"net/url"
	"strings"
	"testing"

	"pickle-storefront/internal/models"
)

func TestStatusUpdateLink(t *testing.T) {
	w := NewWhatsApp("Vaddadi Pickles", "vaddadipickles.com/orders")
	order := models.Order{
		ID:        "ORD-1700000000000",
		UserName:  "Asha",
		UserPhone: "+91 98851-92948",
	}

	link := w.StatusUpdate(order, models.StatusShipped)

	if !strings.HasPrefix(link, "https://wa.me/919885192948?text=") {
		t.Fatalf("link = %q; want wa.me link with digits-only phone", link)
	}

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	msg := u.Query().Get("text")
	for _, want := range []string{"Asha", "ORD-1700000000000", "shipped", "on the way"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestStatusUpdateShippedIncludesTrackingLink(t *testing.T) {
	w := NewWhatsApp("Vaddadi Pickles", "vaddadipickles.com/orders")
	order := models.Order{
		ID:         "ORD-1700000000000",
		UserName:   "Asha",
		UserPhone:  "9885192948",
		TrackingID: "AWB123",
		Carrier:    "Delhivery",
	}

	u, _ := url.Parse(w.StatusUpdate(order, models.StatusShipped))
	msg := u.Query().Get("text")
	if !strings.Contains(msg, "AWB123") || !strings.Contains(msg, "delhivery.com/track/package/AWB123") {
		t.Errorf("shipped message missing tracking link:\n%s", msg)
	}
}

func TestStatusUpdateNoGuidanceForUnknownStatus(t *testing.T) {
	w := NewWhatsApp("Vaddadi Pickles", "vaddadipickles.com/orders")
	link := w.StatusUpdate(models.Order{ID: "o1", UserName: "A", UserPhone: "123"}, models.StatusProcessing)
	u, _ := url.Parse(link)
	msg := u.Query().Get("text")
	if strings.Contains(msg, "on the way") || strings.Contains(msg, "verified") {
		t.Errorf("processing message should carry no canned guidance:\n%s", msg)
	}
}

func TestTrackingURL(t *testing.T) {
	cases := []struct {
		carrier string
		id      string
		want    string
	}{
		{"Delhivery", "AWB123", "https://www.delhivery.com/track/package/AWB123"},
		{"delhivery", " AWB123 ", "https://www.delhivery.com/track/package/AWB123"},
		{"DTDC", "X9", "https://www.dtdc.in/tracking/shipment-tracking.asp?no=X9"},
		{"Trackon", "C77", "https://trackon.in/Tracking/Tracking?consignmentNo=C77"},
	}
	for _, tc := range cases {
		if got := TrackingURL(tc.carrier, tc.id); got != tc.want {
			t.Errorf("TrackingURL(%q, %q) = %q; want %q", tc.carrier, tc.id, got, tc.want)
		}
	}
}

func TestTrackingURLFallback(t *testing.T) {
	got := TrackingURL("Nimbus", "N1")
	if !strings.HasPrefix(got, "https://www.google.com/search?q=") {
		t.Errorf("unknown carrier should fall back to search, got %q", got)
	}
	if !strings.Contains(got, "Nimbus") || !strings.Contains(got, "N1") {
		t.Errorf("fallback should name carrier and id, got %q", got)
	}
}
