package repositories

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/you/fintrack/domain"
)

// RedisCounterStore implements domain.CounterStore with INCR and EXPIRE
type RedisCounterStore struct {
	client *redis.Client
	prefix string
}

// NewCounterStore creates a new Redis backed counter store
func NewCounterStore(client *redis.Client, prefix string) domain.CounterStore {
	return &RedisCounterStore{
		client: client,
		prefix: prefix,
	}
}

// Hit implements domain.CounterStore. The window starts at the first hit.
func (s *RedisCounterStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := s.prefix + key

	count, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, k, window).Err(); err != nil {
			return 0, 0, err
		}
		return count, window, nil
	}

	ttl, err := s.client.PTTL(ctx, k).Result()
	if err != nil {
		return 0, 0, err
	}
	// a key without expiry would never reset
	if ttl < 0 {
		if err := s.client.Expire(ctx, k, window).Err(); err != nil {
			return 0, 0, err
		}
		ttl = window
	}
	return count, ttl, nil
}
