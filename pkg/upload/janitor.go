package upload

import (
	"context"
	"log/slog"
	"time"
)

// Janitor periodically removes staged files that were never submitted.
type Janitor struct {
	Store    Store
	Interval time.Duration
	MaxAge   time.Duration
	Logger   *slog.Logger
}

// Run sweeps once per Interval until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	interval := j.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Sweep runs one cleanup pass and returns the number of files removed.
func (j *Janitor) Sweep(ctx context.Context) int {
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	removed, err := j.Store.Cleanup(ctx, j.MaxAge)
	if err != nil && ctx.Err() == nil {
		logger.Warn("staged upload cleanup failed", "error", err, "removed", removed)
		return removed
	}
	if removed > 0 {
		logger.Info("removed expired staged uploads", "count", removed)
	}
	return removed
}
