package memberstore

import (
	"context"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each set as a redis SET, with a companion HASH per set for
// notes and insertion timestamps.
type RedisStore struct {
	Client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisStore{Client: rdb}, nil
}

func notesKey(set string) string { return set + ":notes" }
func addedKey(set string) string { return set + ":added" }

func (s *RedisStore) Contains(ctx context.Context, set, key string) (bool, error) {
	return s.Client.SIsMember(ctx, set, key).Result()
}

func (s *RedisStore) Add(ctx context.Context, set string, keys ...string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	// per-key SAdd so we know which members are new and only stamp those
	multi := s.Client.Pipeline()
	results := make([]*redis.IntCmd, len(keys))
	for i, key := range keys {
		results[i] = multi.SAdd(ctx, set, key)
	}
	if _, err := multi.Exec(ctx); err != nil {
		return 0, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	added := 0
	stamp := s.Client.Pipeline()
	for i, res := range results {
		if res.Val() > 0 {
			added++
			stamp.HSet(ctx, addedKey(set), keys[i], now)
		}
	}
	if added > 0 {
		if _, err := stamp.Exec(ctx); err != nil {
			return added, err
		}
	}
	return added, nil
}

func (s *RedisStore) AddWithNote(ctx context.Context, set, key, note string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	multi := s.Client.Pipeline()
	multi.SAdd(ctx, set, key)
	multi.HSet(ctx, addedKey(set), key, now)
	if note != "" {
		multi.HSet(ctx, notesKey(set), key, note)
	} else {
		multi.HDel(ctx, notesKey(set), key)
	}
	_, err := multi.Exec(ctx)
	return err
}

func (s *RedisStore) Remove(ctx context.Context, set, key string) (bool, error) {
	multi := s.Client.Pipeline()
	rem := multi.SRem(ctx, set, key)
	multi.HDel(ctx, notesKey(set), key)
	multi.HDel(ctx, addedKey(set), key)
	if _, err := multi.Exec(ctx); err != nil {
		return false, err
	}
	return rem.Val() > 0, nil
}

func (s *RedisStore) Count(ctx context.Context, set string) (int64, error) {
	return s.Client.SCard(ctx, set).Result()
}

func (s *RedisStore) List(ctx context.Context, set string) ([]Entry, error) {
	members, err := s.Client.SMembers(ctx, set).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(members)

	notes, err := s.Client.HGetAll(ctx, notesKey(set)).Result()
	if err != nil {
		return nil, err
	}
	added, err := s.Client.HGetAll(ctx, addedKey(set)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(members))
	for i, name := range members {
		e := Entry{Name: name, Note: notes[name]}
		if ts, ok := added[name]; ok {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				e.AddedAt = t
			}
		}
		entries[i] = e
	}
	return entries, nil
}

func (s *RedisStore) Note(ctx context.Context, set, key string) (string, error) {
	note, err := s.Client.HGet(ctx, notesKey(set), key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return note, nil
}
