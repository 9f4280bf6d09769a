package memberstore

import (
	"context"
	"log/slog"
)

// Resilient wraps a Store so that backend I/O failures degrade to safe
// defaults (false / 0 / empty) instead of propagating. The poll loop must
// never abort because membership state was unreachable; the tradeoff is that
// a degraded "not processed" answer can cause duplicate processing.
type Resilient struct {
	Inner  Store
	Logger *slog.Logger
}

var _ Store = (*Resilient)(nil)

func NewResilient(inner Store, logger *slog.Logger) *Resilient {
	return &Resilient{Inner: inner, Logger: logger}
}

func (r *Resilient) Contains(ctx context.Context, set, key string) (bool, error) {
	ok, err := r.Inner.Contains(ctx, set, key)
	if err != nil {
		r.Logger.Error("membership check failed", "set", set, "key", key, "err", err)
		return false, nil
	}
	return ok, nil
}

func (r *Resilient) Add(ctx context.Context, set string, keys ...string) (int, error) {
	n, err := r.Inner.Add(ctx, set, keys...)
	if err != nil {
		r.Logger.Error("membership add failed", "set", set, "err", err)
		return n, nil
	}
	return n, nil
}

func (r *Resilient) AddWithNote(ctx context.Context, set, key, note string) error {
	if err := r.Inner.AddWithNote(ctx, set, key, note); err != nil {
		r.Logger.Error("membership upsert failed", "set", set, "key", key, "err", err)
	}
	return nil
}

func (r *Resilient) Remove(ctx context.Context, set, key string) (bool, error) {
	ok, err := r.Inner.Remove(ctx, set, key)
	if err != nil {
		r.Logger.Error("membership remove failed", "set", set, "key", key, "err", err)
		return false, nil
	}
	return ok, nil
}

func (r *Resilient) Count(ctx context.Context, set string) (int64, error) {
	n, err := r.Inner.Count(ctx, set)
	if err != nil {
		r.Logger.Error("membership count failed", "set", set, "err", err)
		return 0, nil
	}
	return n, nil
}

func (r *Resilient) List(ctx context.Context, set string) ([]Entry, error) {
	entries, err := r.Inner.List(ctx, set)
	if err != nil {
		r.Logger.Error("membership list failed", "set", set, "err", err)
		return []Entry{}, nil
	}
	return entries, nil
}

func (r *Resilient) Note(ctx context.Context, set, key string) (string, error) {
	note, err := r.Inner.Note(ctx, set, key)
	if err != nil {
		r.Logger.Error("membership note lookup failed", "set", set, "key", key, "err", err)
		return "", nil
	}
	return note, nil
}
