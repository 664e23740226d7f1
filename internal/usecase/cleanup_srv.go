package usecase

import (
	"context"
	"time"

	"admin-2fa/internal/data/repository"

	"go.uber.org/zap"
)

// CleanupService periodically deletes expired login codes so the table does
// not grow without bound. It is hygiene only: validation re-checks expiry on
// every attempt, so correctness never depends on the sweep running.
type CleanupService struct {
	codes    repository.TwoFACodeRepository
	log      *zap.Logger
	interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewCleanupService(codes repository.TwoFACodeRepository, log *zap.Logger, interval time.Duration) *CleanupService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return &CleanupService{
		codes:    codes,
		log:      log,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background sweep. Non-blocking.
func (s *CleanupService) Start() {
	go s.run()
	s.log.Info("Code cleanup started", zap.Duration("interval", s.interval))
}

// Stop shuts the sweep down and waits for an in-progress pass to finish.
func (s *CleanupService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.log.Info("Code cleanup stopped")
}

func (s *CleanupService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *CleanupService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.codes.DeleteExpired(ctx, time.Now())
	if err != nil {
		s.log.Error("Failed to sweep expired login codes", zap.Error(err))
		return
	}

	if deleted > 0 {
		s.log.Info("Swept expired login codes", zap.Int64("deleted", deleted))
	}
}
