package cart

import (
	"context"
	"strings"
	"testing"
	"time"

	"pickle-storefront/internal/models"
	"pickle-storefront/internal/store"
)

// fakeRepo keeps coupons in memory and serves a canned cart mirror.
type fakeRepo struct {
	coupons []models.Coupon
	mirror  map[string][]models.CartItem
}

func (f *fakeRepo) SaveCart(ctx context.Context, userID string, items []models.CartItem, couponCode string) error {
	return nil
}

func (f *fakeRepo) LoadCart(ctx context.Context, userID string) ([]models.CartItem, string, error) {
	items, ok := f.mirror[userID]
	if !ok {
		return nil, "", models.ErrNotFound
	}
	return items, "", nil
}

func (f *fakeRepo) ListActiveCoupons(ctx context.Context) ([]models.Coupon, error) {
	out := []models.Coupon{}
	for _, c := range f.coupons {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	return append([]models.Coupon{}, f.coupons...), nil
}

func (f *fakeRepo) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	for _, existing := range f.coupons {
		if existing.Code == c.Code {
			return models.ErrConflict
		}
	}
	c.CreatedAt = time.Now()
	c.Active = true
	f.coupons = append(f.coupons, *c)
	return nil
}

func (f *fakeRepo) ToggleCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	for i := range f.coupons {
		if f.coupons[i].Code == strings.ToUpper(code) {
			f.coupons[i].Active = !f.coupons[i].Active
			cp := f.coupons[i]
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

type fakeProducts struct {
	products map[string]*models.Product
}

func (f *fakeProducts) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func newTestService(coupons ...models.Coupon) (ServiceInterface, *store.Store) {
	state := store.New(nil)
	repo := &fakeRepo{coupons: coupons}
	products := &fakeProducts{products: map[string]*models.Product{
		"p1": {
			ID:   "p1",
			Name: "Mango Avakaya",
			Variants: []models.ProductVariant{
				{Weight: "250g", Price: 149, Stock: 50},
				{Weight: "500g", Price: 299, Stock: 30},
			},
		},
		"p2": {
			ID:   "p2",
			Name: "Gongura Pickle",
			Variants: []models.ProductVariant{
				{Weight: "500g", Price: 600, Stock: 20},
			},
		},
	}}
	return NewService(state, repo, products), state
}

var welcome10 = models.Coupon{Code: "WELCOME10", Discount: 10, Type: models.CouponPercentage, MinOrder: 500, Active: true}
var pickle50 = models.Coupon{Code: "PICKLE50", Discount: 50, Type: models.CouponFixed, MinOrder: 400, Active: true}

func TestAddToCartUnknownVariant(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.AddToCart(context.Background(), "u1", "p1", "2kg", 1)
	if err != models.ErrVariantUnknown {
		t.Fatalf("err = %v; want ErrVariantUnknown", err)
	}
}

func TestAddToCartQuantityDrivenToZeroRemovesLine(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, "u1", "p1", "250g", 2); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	view, err := svc.AddToCart(ctx, "u1", "p1", "250g", -2)
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("items = %v; want empty cart", view.Items)
	}
}

func TestApplyCouponInvalidCode(t *testing.T) {
	svc, _ := newTestService(welcome10)
	res, err := svc.ApplyCoupon(context.Background(), "u1", "NOPE")
	if err != nil {
		t.Fatalf("ApplyCoupon: %v", err)
	}
	if res.Success || res.Message != "Invalid coupon code" {
		t.Errorf("result = %+v; want invalid-code failure", res)
	}
}

func TestApplyCouponInactiveCodeRejected(t *testing.T) {
	inactive := welcome10
	inactive.Active = false
	svc, _ := newTestService(inactive)
	res, _ := svc.ApplyCoupon(context.Background(), "u1", "WELCOME10")
	if res.Success {
		t.Errorf("inactive coupon applied: %+v", res)
	}
}

func TestApplyCouponBelowMinimumNamesThreshold(t *testing.T) {
	svc, _ := newTestService(pickle50)
	ctx := context.Background()

	// Subtotal 298 < min 400.
	if _, err := svc.AddToCart(ctx, "u1", "p1", "250g", 2); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	res, err := svc.ApplyCoupon(ctx, "u1", "pickle50")
	if err != nil {
		t.Fatalf("ApplyCoupon: %v", err)
	}
	if res.Success {
		t.Fatalf("coupon applied below minimum: %+v", res)
	}
	if !strings.Contains(res.Message, "400") {
		t.Errorf("message %q should name the exact minimum", res.Message)
	}

	// Total stays 298 + 50 shipping = 348.00 with no discount.
	view := svc.GetCart(ctx, "u1")
	if view.Breakdown.Display() != "348.00" {
		t.Errorf("Display = %q; want 348.00", view.Breakdown.Display())
	}

	// Growing the cart past the threshold makes the same code succeed.
	if _, err := svc.AddToCart(ctx, "u1", "p1", "500g", 1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	res, _ = svc.ApplyCoupon(ctx, "u1", "PICKLE50")
	if !res.Success {
		t.Errorf("coupon should apply once subtotal exceeds minimum: %+v", res)
	}
}

func TestApplyCouponCaseInsensitiveAndTrimmed(t *testing.T) {
	svc, _ := newTestService(welcome10)
	ctx := context.Background()
	if _, err := svc.AddToCart(ctx, "u1", "p2", "500g", 1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	res, _ := svc.ApplyCoupon(ctx, "u1", "  welcome10 ")
	if !res.Success {
		t.Errorf("normalized code should match: %+v", res)
	}
}

func TestApplyCouponIdempotentNotStacking(t *testing.T) {
	svc, _ := newTestService(welcome10)
	ctx := context.Background()
	if _, err := svc.AddToCart(ctx, "u1", "p2", "500g", 2); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	svc.ApplyCoupon(ctx, "u1", "WELCOME10")
	first := svc.GetCart(ctx, "u1").Breakdown.Discount
	svc.ApplyCoupon(ctx, "u1", "WELCOME10")
	second := svc.GetCart(ctx, "u1").Breakdown.Discount

	if first != second {
		t.Errorf("discount changed on reapply: %v -> %v", first, second)
	}
	// 10% of 1200.
	if first != 120 {
		t.Errorf("discount = %v; want 120", first)
	}
}

func TestApplyCouponReplacesPrevious(t *testing.T) {
	svc, state := newTestService(welcome10, pickle50)
	ctx := context.Background()
	if _, err := svc.AddToCart(ctx, "u1", "p2", "500g", 2); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	svc.ApplyCoupon(ctx, "u1", "WELCOME10")
	svc.ApplyCoupon(ctx, "u1", "PICKLE50")

	applied := state.AppliedCoupon("u1")
	if applied == nil || applied.Code != "PICKLE50" {
		t.Fatalf("applied = %v; want PICKLE50 to replace WELCOME10", applied)
	}
	if got := svc.GetCart(ctx, "u1").Breakdown.Discount; got != 50 {
		t.Errorf("discount = %v; want flat 50 from the replacing coupon", got)
	}
}

func TestClearCartRemovesCoupon(t *testing.T) {
	svc, state := newTestService(welcome10)
	ctx := context.Background()
	if _, err := svc.AddToCart(ctx, "u1", "p2", "500g", 1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	svc.ApplyCoupon(ctx, "u1", "WELCOME10")

	svc.ClearCart(ctx, "u1")

	if got := state.AppliedCoupon("u1"); got != nil {
		t.Errorf("coupon survived cart clear: %v", got)
	}
	if view := svc.GetCart(ctx, "u1"); len(view.Items) != 0 {
		t.Errorf("items = %v; want empty", view.Items)
	}
}

func TestGetCartRestoresMirrorIntoEmptyCart(t *testing.T) {
	state := store.New(nil)
	mirrored := []models.CartItem{{
		Product:  models.Product{ID: "p2", Name: "Gongura Pickle"},
		Variant:  models.ProductVariant{Weight: "500g", Price: 600},
		Quantity: 1,
	}}
	repo := &fakeRepo{mirror: map[string][]models.CartItem{"u1": mirrored}}
	svc := NewService(state, repo, &fakeProducts{})
	ctx := context.Background()

	view := svc.GetCart(ctx, "u1")
	if len(view.Items) != 1 || view.Items[0].Product.ID != "p2" {
		t.Fatalf("items = %v; want mirrored line restored", view.Items)
	}

	// A non-empty in-memory cart is never overwritten by the mirror.
	state.UpdateQuantity("u1", "p2", "500g", 3)
	if got := svc.GetCart(ctx, "u1").Items[0].Quantity; got != 3 {
		t.Errorf("quantity = %d; want local state to win over mirror", got)
	}
}

func TestScenarioWelcome10FreeShipping(t *testing.T) {
	svc, _ := newTestService(welcome10)
	ctx := context.Background()
	// 600 x 2 = 1200 subtotal.
	if _, err := svc.AddToCart(ctx, "u1", "p2", "500g", 2); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if res, _ := svc.ApplyCoupon(ctx, "u1", "WELCOME10"); !res.Success {
		t.Fatalf("apply failed: %+v", res)
	}
	b := svc.GetCart(ctx, "u1").Breakdown
	if b.Discount != 120 || b.Shipping != 0 || b.Display() != "1080.00" {
		t.Errorf("breakdown = %+v; want discount 120, shipping 0, total 1080.00", b)
	}
}
