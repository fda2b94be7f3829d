// Package redis implements Redis caching and pub/sub for the Office Presence Hub.
package redis

import (
	"context"
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRESENCE CACHE ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrStatusNotCached is returned when no live status has been mirrored yet.
	ErrStatusNotCached = errors.New("presence_cache: live status not cached")
)

// ══════════════════════════════════════════════════════════════════════════════
// LIVE STATUS STRUCTURE
// ══════════════════════════════════════════════════════════════════════════════

// LiveStatus is the read-optimized mirror of the current presence state.
// It is derived from the authoritative state and may lag it by one refresh.
type LiveStatus struct {
	// Inside reports whether the tracked person is currently in the office.
	Inside bool `json:"inside"`

	// Since is when the current state began (open entry time when inside).
	Since time.Time `json:"since,omitempty"`

	// ElapsedMinutes is the length of the open session, zero when outside.
	ElapsedMinutes int `json:"elapsed_minutes"`

	// TrackingReady reports whether the pipeline is processing signals.
	TrackingReady bool `json:"tracking_ready"`

	// UpdatedAt is when this mirror was last refreshed.
	UpdatedAt time.Time `json:"updated_at"`
}

// Stale reports whether the mirror is older than the given threshold.
func (s *LiveStatus) Stale(threshold time.Duration) bool {
	return time.Since(s.UpdatedAt) > threshold
}

// ══════════════════════════════════════════════════════════════════════════════
// PRESENCE CACHE
// ══════════════════════════════════════════════════════════════════════════════

// PresenceCache mirrors live presence status into Redis and fans out state
// changes over pub/sub so dashboards update without polling the hub.
type PresenceCache struct {
	cache *Cache
}

// NewPresenceCache creates a new PresenceCache.
func NewPresenceCache(cache *Cache) *PresenceCache {
	return &PresenceCache{cache: cache}
}

// PublishChannel is the pub/sub channel carrying live status updates.
func (p *PresenceCache) PublishChannel() string {
	return PubSubChannel("presence.live")
}

// SetLiveStatus refreshes the mirrored status and publishes the update.
// Publish failures are ignored: the mirror itself is what matters, and
// subscribers re-read it on reconnect.
func (p *PresenceCache) SetLiveStatus(ctx context.Context, status LiveStatus) error {
	status.UpdatedAt = time.Now().UTC()

	if err := p.cache.Set(ctx, LiveStatusKey(), status, TTLLiveStatus); err != nil {
		return err
	}

	_ = p.cache.Publish(ctx, p.PublishChannel(), status)
	return nil
}

// GetLiveStatus reads the mirrored status.
// Returns ErrStatusNotCached when nothing has been mirrored or the TTL lapsed.
func (p *PresenceCache) GetLiveStatus(ctx context.Context) (*LiveStatus, error) {
	var status LiveStatus
	err := p.cache.Get(ctx, LiveStatusKey(), &status)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrStatusNotCached
		}
		return nil, err
	}
	return &status, nil
}

// Invalidate drops the mirrored status, forcing readers back to the hub.
func (p *PresenceCache) Invalidate(ctx context.Context) error {
	return p.cache.Delete(ctx, LiveStatusKey())
}
