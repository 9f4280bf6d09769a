// Package social implements follower-count lookups against external social
// platform APIs. Lookup failures are tagged at this boundary so callers never
// branch on raw status codes.
package social

import (
	"context"
	"errors"
	"net/http"
	"time"
)

var (
	// ErrNotFound means the platform reports no such user. Transient on some
	// platforms, so callers should not cache it.
	ErrNotFound = errors.New("user not found")
	// ErrRateLimited means the platform refused the lookup; the TTL cache is
	// the only backoff applied.
	ErrRateLimited = errors.New("rate limited")
)

type UserStats struct {
	Followers int64
	Following int64
}

type Lookup interface {
	UserStats(ctx context.Context, username string) (*UserStats, error)
}

// Lookups use a plain short-timeout client on purpose: a 429 must surface as
// ErrRateLimited rather than being retried away, and the follower cache
// already absorbs transient failures.
func lookupHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}
