// package tasks implements housekeeping jobs that run alongside the server.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rolodex/internal/shared"
)

// Sweeper deletes expired sessions and reports how many were removed.
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// SweepResult contains the outcome of one housekeeping pass.
type SweepResult struct {
	Removed  int64         // Sessions deleted
	Duration time.Duration // Time the pass took
	At       time.Time     // When the pass started
}

// Housekeeper removes expired sessions at server start and then periodically.
type Housekeeper struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *log.Logger
	now      func() time.Time
	passes   int
}

// NewHousekeeper creates a Housekeeper. An interval <= 0 runs a single pass.
func NewHousekeeper(sweeper Sweeper, interval time.Duration, logger *log.Logger) *Housekeeper {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Housekeeper{
		sweeper:  sweeper,
		interval: interval,
		logger:   shared.WithLogger(logger, "task", "housekeeping"),
		now:      time.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (h *Housekeeper) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Sweep runs one pass.
func (h *Housekeeper) Sweep(ctx context.Context, progress chan<- ProgressUpdate) (*SweepResult, error) {
	h.passes++
	step := h.passes
	h.sendProgress(progress, sweepStartedUpdate(step))

	start := h.now()
	removed, err := h.sweeper.DeleteExpired(ctx)
	if err != nil {
		h.sendProgress(progress, sweepFailedUpdate(step, err))
		return nil, fmt.Errorf("failed to sweep sessions: %w", err)
	}

	result := &SweepResult{Removed: removed, Duration: h.now().Sub(start), At: start}
	h.sendProgress(progress, sweepFinishedUpdate(step, result))
	return result, nil
}

// Run sweeps once immediately, then every interval until ctx is cancelled.
//
// Failed passes are logged and the loop keeps going. progress may be nil and
// is never closed by Run.
func (h *Housekeeper) Run(ctx context.Context, progress chan<- ProgressUpdate) {
	h.pass(ctx, progress)
	if h.interval <= 0 {
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.pass(ctx, progress)
		}
	}
}

func (h *Housekeeper) pass(ctx context.Context, progress chan<- ProgressUpdate) {
	result, err := h.Sweep(ctx, progress)
	if err != nil {
		if ctx.Err() == nil {
			h.logger.Error("session sweep failed", "error", err)
		}
		return
	}
	if result.Removed > 0 {
		h.logger.Info("expired sessions removed", "count", result.Removed, "duration", result.Duration)
		return
	}
	h.logger.Debug("no expired sessions")
}
