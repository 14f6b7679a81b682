package tracking

import (
	"context"
	"sync"

	"pickle-storefront/internal/models"
)

// Observer maintains live subscriptions for the set of orders currently out
// for delivery and keeps the latest location per order for the admin map.
// Reconcile is idempotent: repeated calls with the same set change nothing,
// and orders that leave the set are unsubscribed without disturbing the rest.
type Observer struct {
	hub  *Hub
	repo RepositoryInterface

	mu     sync.Mutex
	subs   map[string]func()
	latest map[string]models.DriverLocation
}

func NewObserver(hub *Hub, repo RepositoryInterface) *Observer {
	return &Observer{
		hub:    hub,
		repo:   repo,
		subs:   make(map[string]func()),
		latest: make(map[string]models.DriverLocation),
	}
}

// Reconcile aligns subscriptions with the given order ids. New orders get a
// subscription plus a one-shot fetch of the stored location so the map is
// populated before the first live update arrives.
func (o *Observer) Reconcile(ctx context.Context, orderIDs []string) {
	want := make(map[string]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		want[id] = struct{}{}
	}

	o.mu.Lock()
	var added []string
	for id := range want {
		if _, ok := o.subs[id]; ok {
			continue
		}
		ch, cancel := o.hub.Subscribe(id)
		o.subs[id] = cancel
		added = append(added, id)
		go o.consume(ch)
	}
	for id, cancel := range o.subs {
		if _, ok := want[id]; ok {
			continue
		}
		cancel()
		delete(o.subs, id)
		delete(o.latest, id)
	}
	o.mu.Unlock()

	for _, id := range added {
		if loc, err := o.repo.FindByOrderID(ctx, id); err == nil {
			o.mu.Lock()
			// A live update may have landed first; it is at least as fresh.
			if _, ok := o.latest[id]; !ok {
				o.latest[id] = *loc
			}
			o.mu.Unlock()
		}
	}
}

func (o *Observer) consume(ch <-chan models.DriverLocation) {
	for loc := range ch {
		o.mu.Lock()
		// Ignore updates for orders already unsubscribed.
		if _, ok := o.subs[loc.OrderID]; ok {
			o.latest[loc.OrderID] = loc
		}
		o.mu.Unlock()
	}
}

// Snapshot returns the latest known location per watched order.
func (o *Observer) Snapshot() []models.DriverLocation {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.DriverLocation, 0, len(o.latest))
	for _, loc := range o.latest {
		out = append(out, loc)
	}
	return out
}

// Watched returns the ids currently subscribed. Test helper.
func (o *Observer) Watched() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.subs))
	for id := range o.subs {
		out = append(out, id)
	}
	return out
}

// Stop unsubscribes everything.
func (o *Observer) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for id, cancel := range o.subs {
		cancel()
		delete(o.subs, id)
		delete(o.latest, id)
	}
}
