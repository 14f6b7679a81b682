package tracking

import (
	"sync"

	"pickle-storefront/internal/models"
)

// Hub fans live location updates out to in-process subscribers, keyed by
// order id. Slow subscribers lose intermediate updates rather than blocking
// the publisher; only the latest position matters.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan models.DriverLocation]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan models.DriverLocation]struct{})}
}

// Publish delivers a location to every subscriber of its order.
func (h *Hub) Publish(loc models.DriverLocation) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[loc.OrderID] {
		select {
		case ch <- loc:
		default:
		}
	}
}

// Subscribe registers for an order's location updates. The returned cancel
// func unregisters and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(orderID string) (<-chan models.DriverLocation, func()) {
	ch := make(chan models.DriverLocation, 8)

	h.mu.Lock()
	if h.subs[orderID] == nil {
		h.subs[orderID] = make(map[chan models.DriverLocation]struct{})
	}
	h.subs[orderID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[orderID], ch)
			if len(h.subs[orderID]) == 0 {
				delete(h.subs, orderID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}
