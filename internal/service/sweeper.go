package service

import (
	"context"
	"time"

	"github.com/dtroode/farmgate-identity/internal/logger"
	"github.com/dtroode/farmgate-identity/internal/model"
)

// StagingSweeper periodically deletes expired signup candidates. Reads already
// ignore them; the sweep only reclaims storage.
type StagingSweeper struct {
	staging  model.StagingStore
	interval time.Duration
	logger   *logger.Logger
	clock    func() time.Time
}

func NewStagingSweeper(staging model.StagingStore, interval time.Duration, logger *logger.Logger) *StagingSweeper {
	return &StagingSweeper{staging: staging, interval: interval, logger: logger, clock: time.Now}
}

// Run sweeps every interval until ctx is cancelled.
func (s *StagingSweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep deletes every candidate expired at the current time.
func (s *StagingSweeper) Sweep(ctx context.Context) int64 {
	n, err := s.staging.DeleteExpired(ctx, s.clock().UTC())
	if err != nil {
		s.logger.Error("Staging sweeper: failed to delete expired candidates",
			"error", err.Error())
		return 0
	}
	if n > 0 {
		s.logger.Info("Staging sweeper: expired candidates deleted",
			"count", n)
	}
	return n
}
