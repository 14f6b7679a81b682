// Package store is the in-memory application state shared by the request
// handlers: per-user carts, per-user applied coupons and a settings cache.
// Mutators apply synchronously and return defensive copies; writes to the
// backing tables happen in the background with a best-effort contract — a
// failed write is logged and counted but never rolls the local state back.
package store

import (
	"context"
	"log"
	"sync"

	"pickle-storefront/internal/models"
	"pickle-storefront/pkg/metrics"
)

// Persistence is the best-effort mirror of cart state. Implementations must
// tolerate being called concurrently.
type Persistence interface {
	SaveCart(ctx context.Context, userID string, items []models.CartItem, couponCode string) error
}

// Store holds the mutable in-memory state. Construct with New and inject it
// from the composition root; it is not a package-level singleton.
type Store struct {
	mu       sync.RWMutex
	carts    map[string][]models.CartItem
	applied  map[string]*models.Coupon
	settings models.StoreSettings

	persist Persistence
	// wg lets tests wait for background syncs; production never waits.
	wg sync.WaitGroup
}

// New returns an empty store mirroring cart changes to persist. persist may
// be nil, which disables mirroring (used by tests and tooling).
func New(persist Persistence) *Store {
	return &Store{
		carts:   make(map[string][]models.CartItem),
		applied: make(map[string]*models.Coupon),
		persist: persist,
	}
}

// Cart returns a copy of the user's cart lines.
func (s *Store) Cart(userID string) []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyItems(s.carts[userID])
}

// RestoreCart seeds the user's cart from the persisted mirror, e.g. after a
// sign-in on a new device. It only applies when the in-memory cart is empty;
// an existing cart always wins. No background sync: the data came from the
// mirror. Reports whether the restore applied.
func (s *Store) RestoreCart(userID string, items []models.CartItem) bool {
	if len(items) == 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.carts[userID]) > 0 {
		return false
	}
	s.carts[userID] = copyItems(items)
	return true
}

// AddToCart merges quantity into the line keyed by (product id, variant
// weight). A resulting quantity of zero or below removes the line; the cart
// never holds a non-positive entry.
func (s *Store) AddToCart(userID string, product models.Product, variant models.ProductVariant, quantity int) []models.CartItem {
	s.mu.Lock()
	cart := s.carts[userID]
	idx := -1
	for i, item := range cart {
		if item.Product.ID == product.ID && item.Variant.Weight == variant.Weight {
			idx = i
			break
		}
	}
	switch {
	case idx >= 0:
		next := cart[idx].Quantity + quantity
		if next <= 0 {
			cart = append(cart[:idx], cart[idx+1:]...)
		} else {
			cart[idx].Quantity = next
		}
	case quantity > 0:
		cart = append(cart, models.CartItem{Product: product, Variant: variant, Quantity: quantity})
	}
	s.carts[userID] = cart
	snapshot := copyItems(cart)
	coupon := s.applied[userID]
	s.mu.Unlock()

	s.sync(userID, snapshot, coupon)
	return snapshot
}

// UpdateQuantity sets the absolute quantity for a line; zero or below removes
// it.
func (s *Store) UpdateQuantity(userID, productID, weight string, quantity int) []models.CartItem {
	s.mu.Lock()
	cart := s.carts[userID]
	out := cart[:0]
	for _, item := range cart {
		if item.Product.ID == productID && item.Variant.Weight == weight {
			if quantity <= 0 {
				continue
			}
			item.Quantity = quantity
		}
		out = append(out, item)
	}
	s.carts[userID] = out
	snapshot := copyItems(out)
	coupon := s.applied[userID]
	s.mu.Unlock()

	s.sync(userID, snapshot, coupon)
	return snapshot
}

// RemoveFromCart drops the line keyed by (product id, weight).
func (s *Store) RemoveFromCart(userID, productID, weight string) []models.CartItem {
	return s.UpdateQuantity(userID, productID, weight, 0)
}

// ClearCart empties the user's cart and removes any applied coupon.
func (s *Store) ClearCart(userID string) {
	s.mu.Lock()
	delete(s.carts, userID)
	delete(s.applied, userID)
	s.mu.Unlock()

	s.sync(userID, nil, nil)
}

// ApplyCoupon records the single applied coupon for the user, replacing any
// previous one.
func (s *Store) ApplyCoupon(userID string, coupon models.Coupon) {
	s.mu.Lock()
	c := coupon
	s.applied[userID] = &c
	snapshot := copyItems(s.carts[userID])
	s.mu.Unlock()

	s.sync(userID, snapshot, &c)
}

// RemoveCoupon clears the applied coupon, if any.
func (s *Store) RemoveCoupon(userID string) {
	s.mu.Lock()
	delete(s.applied, userID)
	snapshot := copyItems(s.carts[userID])
	s.mu.Unlock()

	s.sync(userID, snapshot, nil)
}

// AppliedCoupon returns a copy of the user's applied coupon, or nil.
func (s *Store) AppliedCoupon(userID string) *models.Coupon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c := s.applied[userID]; c != nil {
		cp := *c
		return &cp
	}
	return nil
}

// Settings returns the cached store settings.
func (s *Store) Settings() models.StoreSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetSettings replaces the cached store settings.
func (s *Store) SetSettings(settings models.StoreSettings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

// sync mirrors a cart snapshot to the backing table. The snapshot is captured
// by the caller before any further mutation can occur, so a slow write never
// observes later state.
func (s *Store) sync(userID string, snapshot []models.CartItem, coupon *models.Coupon) {
	if s.persist == nil {
		return
	}
	code := ""
	if coupon != nil {
		code = coupon.Code
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.persist.SaveCart(context.Background(), userID, snapshot, code); err != nil {
			log.Printf("store: cart sync failed for user %s: %v", userID, err)
			metrics.StoreSyncFailures.Inc()
		}
	}()
}

// Flush waits for in-flight background syncs. Test helper.
func (s *Store) Flush() {
	s.wg.Wait()
}

func copyItems(items []models.CartItem) []models.CartItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out
}
