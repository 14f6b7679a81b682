package notify

import (
	"fmt"
	"net/url"
	"strings"
)

// Carriers supported by the admin tracking-assignment form.
var Carriers = []string{
	"Delhivery",
	"BlueDart",
	"DTDC",
	"India Post",
	"Professional Couriers",
	"Trackon",
	"Other",
}

// TrackingURL returns the public tracking page for a carrier and consignment
// id. Unknown carriers fall back to a search query.
func TrackingURL(carrier, trackingID string) string {
	id := strings.TrimSpace(trackingID)
	switch strings.ToLower(carrier) {
	case "delhivery":
		return "https://www.delhivery.com/track/package/" + id
	case "bluedart":
		return fmt.Sprintf("https://bluedart.com/trackdartresult?trackable_link=%s&mode=parcels", id)
	case "dtdc":
		return "https://www.dtdc.in/tracking/shipment-tracking.asp?no=" + id
	case "india post", "speed post":
		// No deep link available; this is the tracking landing page.
		return "https://www.indiapost.gov.in/_layouts/15/dop.portal.tracking/trackconsignment.aspx"
	case "professional couriers", "tpc":
		return "http://www.tpcindia.com/track-consignment-search-details.aspx?obj=" + id
	case "trackon":
		return "https://trackon.in/Tracking/Tracking?consignmentNo=" + id
	default:
		return "https://www.google.com/search?q=" + url.QueryEscape(carrier+" tracking "+id)
	}
}
