package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/marabinga/passport-dc/internal/portal/metrics"
	"github.com/marabinga/passport-dc/internal/portal/store"
)

// HousekeepingService periodically deletes expired sessions so the
// sessions table does not grow without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Interval time.Duration

	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
}

// NewHousekeepingService defaults a non-positive interval to one hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, m *metrics.Metrics, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Metrics:  m,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	s.started = true
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress sweep has finished. It is a no-op if
// Start was never called.
func (s *HousekeepingService) Stop() {
	if !s.started {
		return
	}
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep deletes expired sessions once and returns how many were removed.
func (s *HousekeepingService) Sweep(ctx context.Context) int64 {
	n, err := s.Store.Sessions().DeleteExpiredSessions(ctx)
	if err != nil {
		s.Logger.Error("failed to delete expired sessions", "err", err)
		return 0
	}
	s.Metrics.ObserveSessionsSwept(n)
	s.Logger.Debug("housekeeping sweep completed", "sessions_deleted", n)
	return n
}
