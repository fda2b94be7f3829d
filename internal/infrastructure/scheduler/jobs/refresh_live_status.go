// Package jobs contains implementations of scheduled jobs for the Office
// Presence Hub.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/presence-hub/office-presence-hub/internal/domain/session"
	"github.com/presence-hub/office-presence-hub/internal/domain/tracker"
	"github.com/presence-hub/office-presence-hub/internal/infrastructure/persistence/redis"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH LIVE STATUS JOB
// ══════════════════════════════════════════════════════════════════════════════

// RefreshLiveStatusJob mirrors the current presence state into Redis.
// The mirror is what the status surfaces read, so its freshness bounds how
// stale the reported live session length can get between presence signals.
type RefreshLiveStatusJob struct {
	tracker       *tracker.Tracker
	presenceCache *redis.PresenceCache
	logger        *slog.Logger
}

// NewRefreshLiveStatusJob creates the job.
func NewRefreshLiveStatusJob(t *tracker.Tracker, cache *redis.PresenceCache, logger *slog.Logger) *RefreshLiveStatusJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshLiveStatusJob{
		tracker:       t,
		presenceCache: cache,
		logger:        logger,
	}
}

// Name implements scheduler.Job.
func (j *RefreshLiveStatusJob) Name() string {
	return "refresh_live_status"
}

// Description implements scheduler.Job.
func (j *RefreshLiveStatusJob) Description() string {
	return "Mirrors live presence status into Redis"
}

// Run implements scheduler.Job.
func (j *RefreshLiveStatusJob) Run(ctx context.Context) error {
	now := time.Now()

	status := redis.LiveStatus{
		Inside:        j.tracker.Inside(),
		TrackingReady: j.tracker.TrackingReady(),
	}

	if elapsed, ok := j.tracker.LiveElapsed(now); ok {
		status.ElapsedMinutes = int(elapsed / time.Minute)
		if open, found := session.OpenEntry(j.tracker.Events()); found {
			status.Since = open.Timestamp
		}
	}

	if err := j.presenceCache.SetLiveStatus(ctx, status); err != nil {
		return err
	}

	j.logger.Debug("live status refreshed",
		"inside", status.Inside,
		"elapsed_minutes", status.ElapsedMinutes,
	)
	return nil
}
