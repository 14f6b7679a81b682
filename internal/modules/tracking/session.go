package tracking

import (
	"context"
	"log"
	"sync"
	"time"

	"pickle-storefront/internal/models"
	"pickle-storefront/pkg/metrics"
)

// DefaultPushInterval is how often an active session writes its latest fix to
// storage. Position reports between ticks only update the in-memory fix and
// the live feed.
const DefaultPushInterval = 10 * time.Second

// session is the server side of one driver's delivery run. It exists in an
// idle state as soon as the first position report arrives and becomes active
// on start; only an active session has a running push loop.
type session struct {
	orderID string

	mu          sync.Mutex
	driverID    string
	driverName  string
	driverPhone string
	lastFix     *models.PositionReport
	active      bool
	cancel      context.CancelFunc
	done        chan struct{}
}

func (s *session) recordFix(fix models.PositionReport) {
	s.mu.Lock()
	s.lastFix = &fix
	s.mu.Unlock()
}

// location builds the storable record from the current session state with a
// fresh timestamp. Caller must hold no lock.
func (s *session) location(now time.Time) (models.DriverLocation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastFix == nil {
		return models.DriverLocation{}, false
	}
	return models.DriverLocation{
		OrderID:     s.orderID,
		DriverID:    s.driverID,
		DriverName:  s.driverName,
		DriverPhone: s.driverPhone,
		Lat:         s.lastFix.Lat,
		Lng:         s.lastFix.Lng,
		Timestamp:   now,
		IsActive:    true,
	}, true
}

// run is the push loop: every tick the latest fix is upserted and published.
// A failed write is logged and counted, never retried; the next tick carries
// a fresher fix anyway.
func (s *session) run(ctx context.Context, interval time.Duration, repo RepositoryInterface, hub *Hub) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			loc, ok := s.location(time.Now())
			if !ok {
				continue
			}
			if err := repo.UpsertLocation(ctx, loc); err != nil {
				log.Printf("tracking: push for order %s: %v", s.orderID, err)
				metrics.LocationPushFailures.Inc()
				continue
			}
			metrics.LocationPushes.Inc()
			hub.Publish(loc)
		}
	}
}

// stop cancels the push loop and waits for it to exit. Safe on an idle
// session.
func (s *session) stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.active = false
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
