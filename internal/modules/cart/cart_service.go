package cart

import (
	"context"
	"fmt"
	"strings"

	"pickle-storefront/internal/models"
	"pickle-storefront/internal/pricing"
	"pickle-storefront/internal/store"
)

// ProductFinder is what the cart needs from the catalog module.
type ProductFinder interface {
	FindProduct(ctx context.Context, productID string) (*models.Product, error)
}

// View is the cart page payload: lines, the derived price breakdown and the
// applied coupon, if any.
type View struct {
	Items     []models.CartItem `json:"items"`
	Breakdown pricing.Breakdown `json:"breakdown"`
	Coupon    *models.Coupon    `json:"coupon,omitempty"`
}

// ApplyResult is the outcome of a coupon application. Validation failures are
// results, not errors; the message is shown verbatim to the customer.
type ApplyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ServiceInterface defines the cart operations exposed to the handler.
type ServiceInterface interface {
	GetCart(ctx context.Context, userID string) View
	AddToCart(ctx context.Context, userID, productID, weight string, quantity int) (View, error)
	UpdateQuantity(ctx context.Context, userID, productID, weight string, quantity int) (View, error)
	RemoveFromCart(ctx context.Context, userID, productID, weight string) View
	ClearCart(ctx context.Context, userID string)
	ApplyCoupon(ctx context.Context, userID, code string) (ApplyResult, error)
	RemoveCoupon(ctx context.Context, userID string) View

	// Admin coupon management. Coupons are never deleted, only toggled.
	ListCoupons(ctx context.Context) ([]models.Coupon, error)
	CreateCoupon(ctx context.Context, req models.CreateCouponRequest) (*models.Coupon, error)
	ToggleCoupon(ctx context.Context, code string) (*models.Coupon, error)
}

type service struct {
	state    *store.Store
	repo     RepositoryInterface
	products ProductFinder
}

func NewService(state *store.Store, repo RepositoryInterface, products ProductFinder) ServiceInterface {
	return &service{state: state, repo: repo, products: products}
}

func (s *service) view(userID string) View {
	items := s.state.Cart(userID)
	coupon := s.state.AppliedCoupon(userID)
	return View{
		Items:     items,
		Breakdown: pricing.Quote(items, coupon),
		Coupon:    coupon,
	}
}

// GetCart returns the cart view. An empty in-memory cart is seeded once from
// the persisted mirror, so a sign-in on a new device picks up where the
// customer left off. The applied coupon is not restored; the customer
// re-applies it and revalidates against the current subtotal.
func (s *service) GetCart(ctx context.Context, userID string) View {
	if len(s.state.Cart(userID)) == 0 {
		if items, _, err := s.repo.LoadCart(ctx, userID); err == nil {
			s.state.RestoreCart(userID, items)
		}
	}
	return s.view(userID)
}

func (s *service) AddToCart(ctx context.Context, userID, productID, weight string, quantity int) (View, error) {
	product, err := s.products.FindProduct(ctx, productID)
	if err != nil {
		return View{}, fmt.Errorf("service.AddToCart: %w", err)
	}
	variant, ok := product.Variant(weight)
	if !ok {
		return View{}, models.ErrVariantUnknown
	}
	s.state.AddToCart(userID, *product, variant, quantity)
	return s.view(userID), nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID, productID, weight string, quantity int) (View, error) {
	s.state.UpdateQuantity(userID, productID, weight, quantity)
	return s.view(userID), nil
}

func (s *service) RemoveFromCart(ctx context.Context, userID, productID, weight string) View {
	s.state.RemoveFromCart(userID, productID, weight)
	return s.view(userID)
}

func (s *service) ClearCart(ctx context.Context, userID string) {
	s.state.ClearCart(userID)
}

// ApplyCoupon validates a code against the active coupon list and the current
// subtotal. On success the coupon replaces any previously applied one; there
// is no stacking.
func (s *service) ApplyCoupon(ctx context.Context, userID, code string) (ApplyResult, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	coupons, err := s.repo.ListActiveCoupons(ctx)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("service.ApplyCoupon: %w", err)
	}

	var match *models.Coupon
	for i := range coupons {
		if strings.ToUpper(coupons[i].Code) == normalized {
			match = &coupons[i]
			break
		}
	}
	if match == nil {
		return ApplyResult{Success: false, Message: "Invalid coupon code"}, nil
	}

	subtotal := pricing.Quote(s.state.Cart(userID), nil).Subtotal
	if subtotal < match.MinOrder {
		return ApplyResult{
			Success: false,
			Message: fmt.Sprintf("Minimum order amount is ₹%v", match.MinOrder),
		}, nil
	}

	s.state.ApplyCoupon(userID, *match)
	return ApplyResult{Success: true, Message: "Coupon applied successfully!"}, nil
}

func (s *service) RemoveCoupon(ctx context.Context, userID string) View {
	s.state.RemoveCoupon(userID)
	return s.view(userID)
}

func (s *service) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.repo.ListCoupons(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ListCoupons: %w", err)
	}
	return coupons, nil
}

func (s *service) CreateCoupon(ctx context.Context, req models.CreateCouponRequest) (*models.Coupon, error) {
	c := models.Coupon{
		Code:     strings.ToUpper(strings.TrimSpace(req.Code)),
		Discount: req.Discount,
		Type:     req.Type,
		MinOrder: req.MinOrder,
	}
	if err := s.repo.CreateCoupon(ctx, &c); err != nil {
		if err == models.ErrConflict {
			return nil, err
		}
		return nil, fmt.Errorf("service.CreateCoupon: %w", err)
	}
	return &c, nil
}

func (s *service) ToggleCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	c, err := s.repo.ToggleCoupon(ctx, code)
	if err != nil {
		if err == models.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("service.ToggleCoupon: %w", err)
	}
	return c, nil
}
