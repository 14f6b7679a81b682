// Package metrics exposes the service's prometheus counters. Background
// best-effort failures (store sync, location pushes) are counted here so they
// surface somewhere beyond the log.
package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_created_total",
		Help: "Orders placed through checkout.",
	})

	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_status_transitions_total",
		Help: "Order status transitions by resulting status.",
	}, []string{"status"})

	LocationPushes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_driver_location_pushes_total",
		Help: "Driver location upserts pushed by tracking sessions.",
	})

	LocationPushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_driver_location_push_failures_total",
		Help: "Driver location pushes that failed and were swallowed.",
	})

	StoreSyncFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_store_sync_failures_total",
		Help: "Best-effort state store writes that failed without rollback.",
	})
)

// Handler serves the prometheus scrape endpoint.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
