package memberstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("ufo", Normalize("UFO"))
	assert.Equal("ufo", Normalize("  ufo  "))
	assert.Equal("0xabc", Normalize("0xABC"))
	assert.Equal("", Normalize("   "))
}

func TestMemStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := NewMemStore()

	ok, err := s.Contains(ctx, SetProcessed, "0xabc")
	assert.NoError(err)
	assert.False(ok)

	n, err := s.Add(ctx, SetProcessed, "0xabc", "0xdef")
	assert.NoError(err)
	assert.Equal(2, n)

	// re-adding is a no-op
	n, err = s.Add(ctx, SetProcessed, "0xabc")
	assert.NoError(err)
	assert.Equal(0, n)

	ok, _ = s.Contains(ctx, SetProcessed, "0xabc")
	assert.True(ok)

	count, _ := s.Count(ctx, SetProcessed)
	assert.Equal(int64(2), count)

	removed, _ := s.Remove(ctx, SetProcessed, "0xdef")
	assert.True(removed)
	removed, _ = s.Remove(ctx, SetProcessed, "0xdef")
	assert.False(removed)

	count, _ = s.Count(ctx, SetProcessed)
	assert.Equal(int64(1), count)
}

func TestMemStoreCaseSensitivity(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := NewMemStore()

	// case-insensitivity is the caller's job via Normalize; the store itself
	// never double-normalizes
	_, err := s.Add(ctx, SetAlpha, Normalize("UFO"))
	assert.NoError(err)
	ok, _ := s.Contains(ctx, SetAlpha, Normalize("ufo"))
	assert.True(ok)
	ok, _ = s.Contains(ctx, SetAlpha, Normalize("UFO"))
	assert.True(ok)
}

func TestMemStoreListSorted(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := NewMemStore()

	_, err := s.Add(ctx, SetBlacklist, "zulu", "alpha", "mike")
	assert.NoError(err)

	entries, err := s.List(ctx, SetBlacklist)
	assert.NoError(err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	assert.Equal([]string{"alpha", "mike", "zulu"}, names)
}

func TestMemStoreNoteUpsert(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := NewMemStore()

	assert.NoError(s.AddWithNote(ctx, SetAlpha, "ufo", "early whale"))
	note, _ := s.Note(ctx, SetAlpha, "ufo")
	assert.Equal("early whale", note)

	// upsert overwrites the note without duplicating the entry
	assert.NoError(s.AddWithNote(ctx, SetAlpha, "ufo", "rotated wallet"))
	note, _ = s.Note(ctx, SetAlpha, "ufo")
	assert.Equal("rotated wallet", note)
	count, _ := s.Count(ctx, SetAlpha)
	assert.Equal(int64(1), count)
}

func TestFileStoreRoundTrip(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = s.Add(ctx, SetProcessed, "0xabc")
	assert.NoError(err)
	assert.NoError(s.AddWithNote(ctx, SetAlpha, "ufo", "early whale"))
	_, err = s.Add(ctx, SetBlacklist, "spammer")
	assert.NoError(err)

	// a fresh store over the same directory sees the persisted state
	reopened, err := NewFileStore(dir)
	require.NoError(t, err)

	ok, _ := reopened.Contains(ctx, SetProcessed, "0xabc")
	assert.True(ok)
	note, _ := reopened.Note(ctx, SetAlpha, "ufo")
	assert.Equal("early whale", note)
	ok, _ = reopened.Contains(ctx, SetBlacklist, "spammer")
	assert.True(ok)

	entries, _ := reopened.List(ctx, SetAlpha)
	if assert.Len(entries, 1) {
		assert.False(entries[0].AddedAt.IsZero())
	}
}

// failStore errors on every operation, standing in for an unreachable backend.
type failStore struct{}

var errDown = errors.New("backend unreachable")

func (failStore) Contains(ctx context.Context, set, key string) (bool, error) {
	return false, errDown
}
func (failStore) Add(ctx context.Context, set string, keys ...string) (int, error) {
	return 0, errDown
}
func (failStore) AddWithNote(ctx context.Context, set, key, note string) error { return errDown }
func (failStore) Remove(ctx context.Context, set, key string) (bool, error)   { return false, errDown }
func (failStore) Count(ctx context.Context, set string) (int64, error)        { return 0, errDown }
func (failStore) List(ctx context.Context, set string) ([]Entry, error)       { return nil, errDown }
func (failStore) Note(ctx context.Context, set, key string) (string, error)   { return "", errDown }

func TestResilientDegradesToSafeDefaults(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	r := NewResilient(failStore{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ok, err := r.Contains(ctx, SetProcessed, "0xabc")
	assert.NoError(err)
	assert.False(ok)

	n, err := r.Add(ctx, SetProcessed, "0xabc")
	assert.NoError(err)
	assert.Equal(0, n)

	assert.NoError(r.AddWithNote(ctx, SetAlpha, "ufo", "note"))

	removed, err := r.Remove(ctx, SetAlpha, "ufo")
	assert.NoError(err)
	assert.False(removed)

	count, err := r.Count(ctx, SetAlpha)
	assert.NoError(err)
	assert.Equal(int64(0), count)

	entries, err := r.List(ctx, SetAlpha)
	assert.NoError(err)
	assert.Empty(entries)

	note, err := r.Note(ctx, SetAlpha, "ufo")
	assert.NoError(err)
	assert.Equal("", note)
}
