package models

import "time"

// DriverLocation is the live position record for an order, keyed by order id
// (at most one active record per order). It is upserted on each push tick and
// marked inactive when tracking stops or the order is delivered; the record is
// never deleted.
type DriverLocation struct {
	OrderID     string    `json:"order_id"`
	DriverID    string    `json:"driver_id"`
	DriverName  string    `json:"driver_name"`
	DriverPhone string    `json:"driver_phone"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Timestamp   time.Time `json:"timestamp"`
	IsActive    bool      `json:"is_active"`
}

// PositionReport is a single device geolocation fix from the driver client.
type PositionReport struct {
	Lat float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

// StartTrackingRequest begins a tracking session for an order.
type StartTrackingRequest struct {
	DriverID    string `json:"driver_id,omitempty"`
	DriverName  string `json:"driver_name"`
	DriverPhone string `json:"driver_phone"`
}
