package followercache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type MemCacheStore struct {
	Data *expirable.LRU[string, int64]
}

var _ CacheStore = (*MemCacheStore)(nil)

func NewMemCacheStore(capacity int, ttl time.Duration) *MemCacheStore {
	return &MemCacheStore{
		Data: expirable.NewLRU[string, int64](capacity, nil, ttl),
	}
}

func memCacheKey(platform, username string) string {
	return platform + "/" + username
}

func (s *MemCacheStore) Get(ctx context.Context, platform, username string) (int64, bool, error) {
	v, ok := s.Data.Get(memCacheKey(platform, username))
	return v, ok, nil
}

func (s *MemCacheStore) Set(ctx context.Context, platform, username string, count int64) error {
	s.Data.Add(memCacheKey(platform, username), count)
	return nil
}

func (s *MemCacheStore) Clear(ctx context.Context) error {
	s.Data.Purge()
	return nil
}

func (s *MemCacheStore) Size(ctx context.Context) (int, error) {
	return s.Data.Len(), nil
}
