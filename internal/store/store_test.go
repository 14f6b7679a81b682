package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pickle-storefront/internal/models"
)

type fakePersistence struct {
	mu    sync.Mutex
	saves [][]models.CartItem
	codes []string
	err   error
}

func (f *fakePersistence) SaveCart(ctx context.Context, userID string, items []models.CartItem, couponCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]models.CartItem, len(items))
	copy(cp, items)
	f.saves = append(f.saves, cp)
	f.codes = append(f.codes, couponCode)
	return f.err
}

func (f *fakePersistence) last() ([]models.CartItem, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saves) == 0 {
		return nil, ""
	}
	return f.saves[len(f.saves)-1], f.codes[len(f.codes)-1]
}

func testProduct() (models.Product, models.ProductVariant) {
	v := models.ProductVariant{Weight: "250g", Price: 149, Stock: 50}
	p := models.Product{ID: "p1", Name: "Mango Avakaya", Variants: []models.ProductVariant{v}}
	return p, v
}

func TestAddToCartMergesOnKey(t *testing.T) {
	s := New(nil)
	p, v := testProduct()

	s.AddToCart("u1", p, v, 1)
	cart := s.AddToCart("u1", p, v, 2)

	if len(cart) != 1 {
		t.Fatalf("cart lines = %d; want 1 merged line", len(cart))
	}
	if cart[0].Quantity != 3 {
		t.Errorf("quantity = %d; want 3", cart[0].Quantity)
	}
}

func TestAddToCartNonPositiveCollapsesToRemoval(t *testing.T) {
	s := New(nil)
	p, v := testProduct()

	s.AddToCart("u1", p, v, 2)
	cart := s.AddToCart("u1", p, v, -2)

	if len(cart) != 0 {
		t.Fatalf("cart = %v; want empty after quantity driven to 0", cart)
	}
	// A negative add on an absent line inserts nothing.
	if cart := s.AddToCart("u1", p, v, -1); len(cart) != 0 {
		t.Fatalf("cart = %v; want no line from negative insert", cart)
	}
}

func TestUpdateQuantityRemovesAtZero(t *testing.T) {
	s := New(nil)
	p, v := testProduct()
	s.AddToCart("u1", p, v, 2)

	if cart := s.UpdateQuantity("u1", p.ID, v.Weight, 5); cart[0].Quantity != 5 {
		t.Errorf("quantity = %d; want 5", cart[0].Quantity)
	}
	if cart := s.UpdateQuantity("u1", p.ID, v.Weight, 0); len(cart) != 0 {
		t.Errorf("cart = %v; want empty", cart)
	}
}

func TestClearCartDropsCoupon(t *testing.T) {
	s := New(nil)
	p, v := testProduct()
	s.AddToCart("u1", p, v, 1)
	s.ApplyCoupon("u1", models.Coupon{Code: "WELCOME10", Active: true})

	s.ClearCart("u1")

	if got := s.Cart("u1"); len(got) != 0 {
		t.Errorf("cart = %v; want empty", got)
	}
	if got := s.AppliedCoupon("u1"); got != nil {
		t.Errorf("applied coupon = %v; want nil after clear", got)
	}
}

func TestApplyCouponReplaces(t *testing.T) {
	s := New(nil)
	s.ApplyCoupon("u1", models.Coupon{Code: "WELCOME10"})
	s.ApplyCoupon("u1", models.Coupon{Code: "PICKLE50"})

	if got := s.AppliedCoupon("u1"); got == nil || got.Code != "PICKLE50" {
		t.Errorf("applied coupon = %v; want PICKLE50", got)
	}
}

func TestSyncSnapshotsAtMutationTime(t *testing.T) {
	fp := &fakePersistence{}
	s := New(fp)
	p, v := testProduct()

	cart := s.AddToCart("u1", p, v, 2)
	// Mutating the returned copy must not leak into the persisted payload.
	cart[0].Quantity = 99
	s.Flush()

	saved, _ := fp.last()
	if len(saved) != 1 || saved[0].Quantity != 2 {
		t.Errorf("persisted %v; want the quantity-2 snapshot", saved)
	}
}

func TestSyncFailureDoesNotRollBack(t *testing.T) {
	fp := &fakePersistence{err: errors.New("network down")}
	s := New(fp)
	p, v := testProduct()

	s.AddToCart("u1", p, v, 1)
	s.Flush()

	if cart := s.Cart("u1"); len(cart) != 1 {
		t.Errorf("cart = %v; want the local mutation kept despite sync failure", cart)
	}
}

func TestCartSyncCarriesCouponCode(t *testing.T) {
	fp := &fakePersistence{}
	s := New(fp)
	p, v := testProduct()
	s.AddToCart("u1", p, v, 1)
	s.ApplyCoupon("u1", models.Coupon{Code: "WELCOME10"})
	s.Flush()

	_, code := fp.last()
	if code != "WELCOME10" {
		t.Errorf("persisted coupon code = %q; want WELCOME10", code)
	}
}
