package tracking

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"pickle-storefront/internal/models"
	"pickle-storefront/internal/modules/order"

	"github.com/google/uuid"
)

// OrderUpdater is what tracking needs from the order module. Bound after
// construction because the order module in turn deactivates locations through
// this service.
type OrderUpdater interface {
	StartDelivery(ctx context.Context, orderID, driverID string) (*models.Order, error)
	MarkDelivered(ctx context.Context, orderID string) (order.Transition, error)
	ListOutForDelivery(ctx context.Context) ([]models.Order, error)
}

// Delivery pairs an out-for-delivery order with its latest known location for
// the admin map.
type Delivery struct {
	Order    models.Order           `json:"order"`
	Location *models.DriverLocation `json:"location,omitempty"`
}

type ServiceInterface interface {
	// ReportPosition records a device fix for an order. Fixes are accepted
	// before the session starts; an active session also feeds the live stream.
	ReportPosition(ctx context.Context, orderID string, fix models.PositionReport) error
	// StartTracking begins the push loop for an order. It requires driver
	// name, phone and at least one recorded fix, and moves the order to
	// out_for_delivery.
	StartTracking(ctx context.Context, orderID string, req models.StartTrackingRequest) (*models.DriverLocation, error)
	// StopTracking ends the session without completing the order.
	StopTracking(ctx context.Context, orderID string) error
	// Delivered ends the session and marks the order delivered, returning the
	// customer notification link.
	Delivered(ctx context.Context, orderID string) (order.Transition, error)

	Location(ctx context.Context, orderID string) (*models.DriverLocation, error)
	Subscribe(orderID string) (<-chan models.DriverLocation, func())
	ActiveDeliveries(ctx context.Context) ([]Delivery, error)

	// DeactivateLocation serves the order lifecycle: an admin override to
	// delivered also lands here.
	DeactivateLocation(ctx context.Context, orderID string) error
}

type service struct {
	repo     RepositoryInterface
	hub      *Hub
	interval time.Duration
	orders   OrderUpdater

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService builds the tracking service. interval <= 0 selects the default
// push interval. Call BindOrders before serving requests.
func NewService(repo RepositoryInterface, hub *Hub, interval time.Duration) *Service {
	if interval <= 0 {
		interval = DefaultPushInterval
	}
	return &Service{service: service{
		repo:     repo,
		hub:      hub,
		interval: interval,
		sessions: make(map[string]*session),
	}}
}

// Service is the concrete tracking service. Exported so the composition root
// can bind the order module after both services exist.
type Service struct {
	service
}

func (s *Service) BindOrders(orders OrderUpdater) {
	s.orders = orders
}

func (s *service) session(orderID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[orderID]
	if !ok {
		sess = &session{orderID: orderID}
		s.sessions[orderID] = sess
	}
	return sess
}

func (s *service) activeSession(orderID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[orderID]
	if !ok {
		return nil
	}
	sess.mu.Lock()
	active := sess.active
	sess.mu.Unlock()
	if !active {
		return nil
	}
	return sess
}

func (s *service) ReportPosition(ctx context.Context, orderID string, fix models.PositionReport) error {
	sess := s.session(orderID)
	sess.recordFix(fix)

	// Live subscribers see every fix immediately; storage waits for the tick.
	if loc, ok := sess.location(time.Now()); ok {
		sess.mu.Lock()
		active := sess.active
		sess.mu.Unlock()
		if active {
			s.hub.Publish(loc)
		}
	}
	return nil
}

func (s *service) StartTracking(ctx context.Context, orderID string, req models.StartTrackingRequest) (*models.DriverLocation, error) {
	if strings.TrimSpace(req.DriverName) == "" || strings.TrimSpace(req.DriverPhone) == "" {
		return nil, models.ErrDriverDetailsMissing
	}

	sess := s.session(orderID)
	sess.mu.Lock()
	if sess.lastFix == nil {
		sess.mu.Unlock()
		return nil, models.ErrNoPositionFix
	}
	if sess.active {
		sess.mu.Unlock()
		loc, _ := sess.location(time.Now())
		return &loc, nil
	}
	driverID := req.DriverID
	if driverID == "" {
		driverID = uuid.NewString()
	}
	sess.driverID = driverID
	sess.driverName = strings.TrimSpace(req.DriverName)
	sess.driverPhone = strings.TrimSpace(req.DriverPhone)
	sess.active = true

	runCtx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel
	sess.done = make(chan struct{})
	sess.mu.Unlock()

	if _, err := s.orders.StartDelivery(ctx, orderID, driverID); err != nil {
		sess.mu.Lock()
		sess.active = false
		sess.cancel = nil
		sess.mu.Unlock()
		cancel()
		close(sess.done)
		return nil, fmt.Errorf("service.StartTracking: %w", err)
	}

	loc, _ := sess.location(time.Now())
	if err := s.repo.UpsertLocation(ctx, loc); err != nil {
		// Not fatal: the push loop writes again on the next tick.
		log.Printf("tracking: initial push for order %s: %v", orderID, err)
	}
	s.hub.Publish(loc)

	go sess.run(runCtx, s.interval, s.repo, s.hub)
	return &loc, nil
}

func (s *service) StopTracking(ctx context.Context, orderID string) error {
	sess := s.activeSession(orderID)
	if sess == nil {
		return models.ErrTrackingNotActive
	}
	return s.endSession(ctx, sess)
}

func (s *service) Delivered(ctx context.Context, orderID string) (order.Transition, error) {
	sess := s.activeSession(orderID)
	if sess == nil {
		return order.Transition{}, models.ErrTrackingNotActive
	}
	if err := s.endSession(ctx, sess); err != nil {
		return order.Transition{}, err
	}

	t, err := s.orders.MarkDelivered(ctx, orderID)
	if err != nil {
		return order.Transition{}, fmt.Errorf("service.Delivered: %w", err)
	}
	return t, nil
}

// endSession stops the push loop, marks the stored record inactive and tells
// live subscribers the feed ended.
func (s *service) endSession(ctx context.Context, sess *session) error {
	sess.stop()

	if err := s.repo.Deactivate(ctx, sess.orderID); err != nil {
		return fmt.Errorf("service.endSession: %w", err)
	}
	if loc, ok := sess.location(time.Now()); ok {
		loc.IsActive = false
		s.hub.Publish(loc)
	}
	return nil
}

func (s *service) Location(ctx context.Context, orderID string) (*models.DriverLocation, error) {
	loc, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.Location: %w", err)
	}
	return loc, nil
}

func (s *service) Subscribe(orderID string) (<-chan models.DriverLocation, func()) {
	return s.hub.Subscribe(orderID)
}

func (s *service) ActiveDeliveries(ctx context.Context) ([]Delivery, error) {
	orders, err := s.orders.ListOutForDelivery(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ActiveDeliveries: %w", err)
	}

	deliveries := make([]Delivery, 0, len(orders))
	for _, o := range orders {
		d := Delivery{Order: o}
		if loc, err := s.repo.FindByOrderID(ctx, o.ID); err == nil {
			d.Location = loc
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, nil
}

func (s *service) DeactivateLocation(ctx context.Context, orderID string) error {
	if sess := s.activeSession(orderID); sess != nil {
		sess.stop()
	}
	if err := s.repo.Deactivate(ctx, orderID); err != nil {
		return fmt.Errorf("service.DeactivateLocation: %w", err)
	}
	return nil
}
