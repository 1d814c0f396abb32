package audit

// retention.go runs the background job that deletes expired audit entries.
//
// The job is long-running and context-aware for graceful shutdown. It logs
// progress and errors but a failed purge never stops the service.

import (
	"context"
	"log/slog"
	"time"
)

// Purger deletes audit entries created before a cutoff.
type Purger interface {
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionConfig holds configuration for the retention job.
// Zero values fall back to the defaults.
type RetentionConfig struct {
	RetentionDays int           // Days to keep entries (default: 365)
	CheckInterval time.Duration // How often to run (default: 24h)
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.RetentionDays <= 0 {
		c.RetentionDays = 365
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// StartRetention purges expired entries immediately, then every
// CheckInterval, until ctx is cancelled. It blocks; run it in a goroutine.
func StartRetention(ctx context.Context, p Purger, cfg RetentionConfig) {
	cfg = cfg.withDefaults()
	slog.Info("audit retention started",
		"retention_days", cfg.RetentionDays,
		"check_interval", cfg.CheckInterval.String(),
	)

	runPurge(ctx, p, cfg, time.Now())

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("audit retention stopped")
			return
		case now := <-ticker.C:
			runPurge(ctx, p, cfg, now)
		}
	}
}

// runPurge performs one purge cycle.
func runPurge(ctx context.Context, p Purger, cfg RetentionConfig, now time.Time) {
	start := time.Now()
	cutoff := now.AddDate(0, 0, -cfg.RetentionDays)

	purged, err := p.Purge(ctx, cutoff)
	if err != nil {
		slog.Error("audit purge failed", "error", err)
		return
	}
	slog.Info("purged audit entries",
		"entries_purged", purged,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
