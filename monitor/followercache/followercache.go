// Package followercache bounds external follower-count lookups with a short
// TTL cache. Entries older than the TTL are treated as absent; lookup
// failures degrade to "signal unavailable" and never reach classification.
package followercache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/leufoulens/zora-trenches/social"
)

const DefaultTTL = 5 * time.Minute

type CacheStore interface {
	Get(ctx context.Context, platform, username string) (int64, bool, error)
	Set(ctx context.Context, platform, username string, count int64) error
	Clear(ctx context.Context) error
	Size(ctx context.Context) (int, error)
}

// FollowerCache combines a cache store with a live lookup client for one
// platform.
type FollowerCache struct {
	Platform string
	Store    CacheStore
	Client   social.Lookup
	Logger   *slog.Logger
}

// FollowerCount returns the follower count for a username, or ok=false when
// no signal is available. A fresh cached value short-circuits the live
// lookup; a not-found response is returned uncached so a transient miss can
// be retried next cycle.
func (fc *FollowerCache) FollowerCount(ctx context.Context, username string) (int64, bool) {
	logger := fc.Logger.With("platform", fc.Platform, "username", username)

	if count, ok, err := fc.Store.Get(ctx, fc.Platform, username); err != nil {
		logger.Warn("follower cache read failed", "err", err)
	} else if ok {
		return count, true
	}

	stats, err := fc.Client.UserStats(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, social.ErrNotFound):
			logger.Debug("user not found")
		case errors.Is(err, social.ErrRateLimited):
			logger.Warn("lookup rate limited")
		default:
			logger.Warn("follower lookup failed", "err", err)
		}
		return 0, false
	}

	if err := fc.Store.Set(ctx, fc.Platform, username, stats.Followers); err != nil {
		logger.Warn("follower cache write failed", "err", err)
	}
	return stats.Followers, true
}

// Clear discards all cached entries.
func (fc *FollowerCache) Clear(ctx context.Context) {
	if err := fc.Store.Clear(ctx); err != nil {
		fc.Logger.Warn("follower cache clear failed", "platform", fc.Platform, "err", err)
	}
}

// Size reports the cached entry count, for diagnostics only.
func (fc *FollowerCache) Size(ctx context.Context) int {
	n, err := fc.Store.Size(ctx)
	if err != nil {
		fc.Logger.Warn("follower cache size failed", "platform", fc.Platform, "err", err)
		return 0
	}
	return n
}
