// Package memberstore holds the durable set state behind the monitor: which
// addresses were already processed, the operator-curated alpha list, and the
// blacklist of suppressed handles.
//
// Keys are case-insensitive by convention: callers normalize with Normalize
// before every call, the store never double-normalizes.
package memberstore

import (
	"context"
	"strings"
	"time"
)

// Logical set names. The redis backend uses these verbatim as keys, so they
// are stable identifiers, not display strings.
const (
	SetProcessed = "zora:processed_addresses"
	SetAlpha     = "zora:alpha_list"
	SetBlacklist = "zora:twitter_blacklist"
)

type Entry struct {
	Name    string
	Note    string
	AddedAt time.Time
}

type Store interface {
	Contains(ctx context.Context, set, key string) (bool, error)
	// Add inserts keys, returning how many were actually new. Re-adding an
	// existing key is a no-op.
	Add(ctx context.Context, set string, keys ...string) (int, error)
	// AddWithNote upserts a key with a free-text note; an existing entry has
	// its note and timestamp overwritten.
	AddWithNote(ctx context.Context, set, key, note string) error
	Remove(ctx context.Context, set, key string) (bool, error)
	Count(ctx context.Context, set string) (int64, error)
	// List returns entries sorted lexicographically by name.
	List(ctx context.Context, set string) ([]Entry, error)
	Note(ctx context.Context, set, key string) (string, error)
}

// Normalize lower-cases and trims a key before it touches a store.
func Normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
