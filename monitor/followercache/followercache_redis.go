package followercache

import (
	"context"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

type RedisCacheStore struct {
	Data *cache.Cache
	RDB  *redis.Client
	TTL  time.Duration
}

var _ CacheStore = (*RedisCacheStore)(nil)

func NewRedisCacheStore(redisURL string, ttl time.Duration) (*RedisCacheStore, error) {
	ctx := context.Background()
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	data := cache.New(&cache.Options{
		Redis:      rdb,
		LocalCache: cache.NewTinyLFU(10_000, ttl),
	})
	return &RedisCacheStore{
		Data: data,
		RDB:  rdb,
		TTL:  ttl,
	}, nil
}

func redisCacheKey(platform, username string) string {
	return "followers/" + platform + "/" + username
}

func (s *RedisCacheStore) Get(ctx context.Context, platform, username string) (int64, bool, error) {
	var count int64
	err := s.Data.Get(ctx, redisCacheKey(platform, username), &count)
	if err == cache.ErrCacheMiss {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

func (s *RedisCacheStore) Set(ctx context.Context, platform, username string, count int64) error {
	return s.Data.Set(&cache.Item{
		Ctx:   ctx,
		Key:   redisCacheKey(platform, username),
		Value: count,
		TTL:   s.TTL,
	})
}

func (s *RedisCacheStore) Clear(ctx context.Context) error {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.Data.Delete(ctx, key); err != nil && err != cache.ErrCacheMiss {
			return err
		}
	}
	return nil
}

// Size scans the keyspace; diagnostics only, not for hot paths.
func (s *RedisCacheStore) Size(ctx context.Context) (int, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *RedisCacheStore) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.RDB.Scan(ctx, 0, "followers/*", 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
