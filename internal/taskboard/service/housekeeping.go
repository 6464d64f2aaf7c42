package service

import (
	"context"
	"log/slog"
	"time"
)

// HousekeepingService periodically prunes revocation entries whose tokens
// have expired, so the revocation set does not grow without bound.
type HousekeepingService struct {
	Revocations RevocationStore
	Logger      *slog.Logger
	Interval    time.Duration
	Now         func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(revocations RevocationStore, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Revocations: revocations,
		Logger:      logger,
		Interval:    interval,
		Now:         time.Now,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background worker. Cleanup runs once right away and
// then every Interval until Stop is called.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts the worker down and waits for an in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup prunes expired revocations once and returns how many went.
func (s *HousekeepingService) Cleanup(ctx context.Context) int {
	n, err := s.Revocations.Prune(ctx, s.Now())
	if err != nil {
		s.Logger.Error("failed to prune revoked tokens", "error", err)
		return 0
	}
	s.Logger.Info("housekeeping cleanup completed", "pruned_revocations", n)
	return n
}
