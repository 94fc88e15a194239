package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenStore remembers job URLs that ingestion has already processed so the
// same posting is not inserted twice.
type SeenStore interface {
	// MarkSeen records the URL and reports whether it was already present.
	MarkSeen(ctx context.Context, url string) (alreadySeen bool, err error)
}

// RedisSeenStore backs SeenStore with Redis. Entries expire so re-posted
// jobs eventually come back through.
type RedisSeenStore struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisSeenStore constructs a store with a 30 day retention window.
func NewRedisSeenStore(client *redis.Client) *RedisSeenStore {
	return &RedisSeenStore{Client: client, TTL: 30 * 24 * time.Hour}
}

func (s *RedisSeenStore) MarkSeen(ctx context.Context, url string) (bool, error) {
	set, err := s.Client.SetNX(ctx, "jobs:seen:"+url, "1", s.TTL).Result()
	if err != nil {
		return false, err
	}
	return !set, nil
}

// MemorySeenStore is an in-process SeenStore for dev mode and tests.
type MemorySeenStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewMemorySeenStore constructs an empty in-memory store.
func NewMemorySeenStore() *MemorySeenStore {
	return &MemorySeenStore{seen: make(map[string]bool)}
}

func (s *MemorySeenStore) MarkSeen(ctx context.Context, url string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[url] {
		return true, nil
	}
	s.seen[url] = true
	return false, nil
}

var _ SeenStore = (*RedisSeenStore)(nil)
var _ SeenStore = (*MemorySeenStore)(nil)
