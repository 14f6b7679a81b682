package order

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"pickle-storefront/internal/models"
	"pickle-storefront/internal/store"
	"pickle-storefront/pkg/metrics"
	"pickle-storefront/pkg/payment"
)

// UserFinder is what the order module needs from the user module.
type UserFinder interface {
	FindUser(ctx context.Context, userID string) (*models.User, error)
}

// Notifier composes the customer message for a status change and returns the
// deep link the admin client opens.
type Notifier interface {
	StatusUpdate(order models.Order, status string) string
}

// LocationDeactivator is what the order module needs from driver tracking:
// marking an order's live location record inactive once the order is
// delivered.
type LocationDeactivator interface {
	DeactivateLocation(ctx context.Context, orderID string) error
}

// Transition is an order mutation result: the updated order plus the wa.me
// notification link for the admin to open, empty when the change produced no
// customer-facing status update.
type Transition struct {
	Order           *models.Order `json:"order"`
	NotificationURL string        `json:"notification_url,omitempty"`
}

type ServiceInterface interface {
	Checkout(ctx context.Context, userID string, req models.CheckoutRequest) (*models.Order, error)
	GetOrder(ctx context.Context, orderID, userID, role string) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID string, page, limit int) ([]models.Order, int, error)
	ListAllOrders(ctx context.Context, page, limit int) ([]models.Order, int, error)
	ListOutForDelivery(ctx context.Context) ([]models.Order, error)

	ApprovePayment(ctx context.Context, orderID string) (Transition, error)
	RejectPayment(ctx context.Context, orderID string) (Transition, error)
	AssignTracking(ctx context.Context, orderID string, req models.TrackingAssignmentRequest) (Transition, error)
	SetStatus(ctx context.Context, orderID, status string) (Transition, error)

	// StartDelivery and MarkDelivered are the driver-side transitions, invoked
	// by the tracking module rather than a handler.
	StartDelivery(ctx context.Context, orderID, driverID string) (*models.Order, error)
	MarkDelivered(ctx context.Context, orderID string) (Transition, error)

	PaymentLinks(ctx context.Context, orderID, userID string) (payment.DeepLinks, error)
	Invoice(ctx context.Context, orderID, userID, role string) (*models.Invoice, error)
	HasDeliveredOrderWithProduct(ctx context.Context, userID, productID string) (bool, error)
}

type service struct {
	repo     RepositoryInterface
	state    *store.Store
	users    UserFinder
	notifier Notifier
	tracking LocationDeactivator
}

func NewService(repo RepositoryInterface, state *store.Store, users UserFinder, notifier Notifier, tracking LocationDeactivator) ServiceInterface {
	return &service{repo: repo, state: state, users: users, notifier: notifier, tracking: tracking}
}

// Checkout freezes the current cart into an order. The order snapshots the
// customer, lines, address and price breakdown; later catalog or settings
// edits never touch it. The cart is cleared only after the order is stored.
func (s *service) Checkout(ctx context.Context, userID string, req models.CheckoutRequest) (*models.Order, error) {
	items := s.state.Cart(userID)
	if len(items) == 0 {
		return nil, models.ErrEmptyCart
	}

	settings := s.state.Settings()
	if req.PaymentMethod == "cod" && !settings.EnableCOD {
		return nil, models.ErrPaymentMethodDisabled
	}
	if req.PaymentMethod == "bank_transfer" && !settings.EnableBankTransfer {
		return nil, models.ErrPaymentMethodDisabled
	}

	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.Checkout: %w", err)
	}

	coupon := s.state.AppliedCoupon(userID)
	o := NewOrder(userID, user.Email, req, items, coupon, time.Now())
	if err := s.repo.CreateOrder(ctx, &o); err != nil {
		return nil, fmt.Errorf("service.Checkout: %w", err)
	}
	metrics.OrdersCreated.Inc()

	s.state.ClearCart(userID)
	return &o, nil
}

func (s *service) GetOrder(ctx context.Context, orderID, userID, role string) (*models.Order, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.GetOrder: %w", err)
	}
	if role != models.RoleAdmin && o.UserID != userID {
		return nil, models.ErrForbidden
	}
	return o, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID string, page, limit int) ([]models.Order, int, error) {
	orders, total, err := s.repo.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListUserOrders: %w", err)
	}
	return orders, total, nil
}

func (s *service) ListAllOrders(ctx context.Context, page, limit int) ([]models.Order, int, error) {
	orders, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListAllOrders: %w", err)
	}
	return orders, total, nil
}

func (s *service) ListOutForDelivery(ctx context.Context) ([]models.Order, error) {
	orders, err := s.repo.ListByStatus(ctx, models.StatusOutForDelivery)
	if err != nil {
		return nil, fmt.Errorf("service.ListOutForDelivery: %w", err)
	}
	return orders, nil
}

func (s *service) ApprovePayment(ctx context.Context, orderID string) (Transition, error) {
	return s.transition(ctx, orderID, func(o models.Order) (models.Order, []Effect) {
		return ApprovePayment(o, time.Now())
	})
}

func (s *service) RejectPayment(ctx context.Context, orderID string) (Transition, error) {
	return s.transition(ctx, orderID, func(o models.Order) (models.Order, []Effect) {
		return RejectPayment(o, time.Now())
	})
}

func (s *service) AssignTracking(ctx context.Context, orderID string, req models.TrackingAssignmentRequest) (Transition, error) {
	return s.transition(ctx, orderID, func(o models.Order) (models.Order, []Effect) {
		return AssignTracking(o, req.TrackingID, req.Carrier, time.Now())
	})
}

func (s *service) SetStatus(ctx context.Context, orderID, status string) (Transition, error) {
	return s.transition(ctx, orderID, func(o models.Order) (models.Order, []Effect) {
		return SetStatus(o, status, time.Now())
	})
}

func (s *service) StartDelivery(ctx context.Context, orderID, driverID string) (*models.Order, error) {
	t, err := s.transition(ctx, orderID, func(o models.Order) (models.Order, []Effect) {
		return StartDelivery(o, driverID, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return t.Order, nil
}

func (s *service) MarkDelivered(ctx context.Context, orderID string) (Transition, error) {
	return s.transition(ctx, orderID, func(o models.Order) (models.Order, []Effect) {
		return MarkDelivered(o, time.Now())
	})
}

// transition loads the order, applies a pure transition and persists the
// result before running its effects.
func (s *service) transition(ctx context.Context, orderID string, apply func(models.Order) (models.Order, []Effect)) (Transition, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return Transition{}, fmt.Errorf("service.transition: %w", err)
	}

	next, effects := apply(*o)
	if err := s.repo.Update(ctx, &next); err != nil {
		return Transition{}, fmt.Errorf("service.transition: %w", err)
	}

	t := Transition{Order: &next}
	for _, e := range effects {
		switch e := e.(type) {
		case NotifyCustomer:
			t.NotificationURL = s.notifier.StatusUpdate(next, e.Status)
			metrics.StatusTransitions.WithLabelValues(e.Status).Inc()
		case DeactivateTracking:
			if err := s.tracking.DeactivateLocation(ctx, next.ID); err != nil {
				log.Printf("order: deactivate tracking for %s: %v", next.ID, err)
			}
		}
	}
	return t, nil
}

// PaymentLinks builds the UPI deep link set for an order awaiting payment.
// The amount string is fixed to two decimals once and embedded verbatim in
// every link.
func (s *service) PaymentLinks(ctx context.Context, orderID, userID string) (payment.DeepLinks, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return payment.DeepLinks{}, fmt.Errorf("service.PaymentLinks: %w", err)
	}
	if o.UserID != userID {
		return payment.DeepLinks{}, models.ErrForbidden
	}

	settings := s.state.Settings()
	amount := fmt.Sprintf("%.2f", o.FinalAmount)
	return payment.Links(settings.UPIID, settings.BusinessAddress.Name, o.ID, amount), nil
}

func (s *service) Invoice(ctx context.Context, orderID, userID, role string) (*models.Invoice, error) {
	o, err := s.GetOrder(ctx, orderID, userID, role)
	if err != nil {
		return nil, err
	}
	return &models.Invoice{
		OrderID:       o.ID,
		InvoiceNumber: "INV-" + strings.TrimPrefix(o.ID, "ORD-"),
		Date:          o.CreatedAt,
		Order:         o,
	}, nil
}

func (s *service) HasDeliveredOrderWithProduct(ctx context.Context, userID, productID string) (bool, error) {
	ok, err := s.repo.HasDeliveredOrderWithProduct(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("service.HasDeliveredOrderWithProduct: %w", err)
	}
	return ok, nil
}
