// Package sweeper triggers the expiry sweep on a fixed cadence. The sweep
// itself lives in the lifecycle service; this package only decides when it
// runs and makes sure replicas do not run it at the same time.
package sweeper

import (
	"context"
	"errors"
	"time"

	model "auction-engine/internal/models"
	"auction-engine/utils"
)

// LockKey is the lease every replica competes for before sweeping
const LockKey = "auction-engine:sweep"

// Sweeper ends expired auctions
type Sweeper interface {
	SweepExpired(ctx context.Context) ([]model.SweepResult, error)
}

// Scheduler runs a Sweeper every interval while holding the sweep lease
type Scheduler struct {
	sweeper  Sweeper
	locker   Locker
	interval time.Duration
}

// NewScheduler creates a new Scheduler instance
func NewScheduler(sweeper Sweeper, locker Locker, interval time.Duration) *Scheduler {
	return &Scheduler{sweeper: sweeper, locker: locker, interval: interval}
}

// Run sweeps every interval until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	utils.Info("sweeper: scheduler started", map[string]any{"interval": s.interval.String()})
	for {
		select {
		case <-ctx.Done():
			utils.Info("sweeper: scheduler stopped", nil)
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				utils.Error("sweeper: sweep failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

// RunOnce performs one sweep if the lease can be taken. It returns nil
// results when another holder owns the lease.
func (s *Scheduler) RunOnce(ctx context.Context) ([]model.SweepResult, error) {
	// the lease outlives a slow sweep by one interval at most
	acquired, err := s.locker.TryLock(ctx, LockKey, 2*s.interval)
	if err != nil {
		return nil, err
	}
	if !acquired {
		utils.Debug("sweeper: lease held elsewhere, skipping", nil)
		return nil, nil
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), LockKey); err != nil {
			utils.Warn("sweeper: failed to release lease", map[string]any{"error": err.Error()})
		}
	}()

	results, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		return results, err
	}

	failed := 0
	for _, r := range results {
		if r.Status == model.SweepStatusFailed {
			failed++
		}
	}
	if len(results) > 0 {
		utils.Info("sweeper: sweep completed", map[string]any{
			"processed": len(results),
			"failed":    failed,
		})
	}
	return results, nil
}
