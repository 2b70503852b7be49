package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "tibrah:ratelimit:"

// RedisStore is a fixed-window limiter backed by a shared Redis counter,
// for deployments running more than one gateway instance. Same contract as
// MemoryStore; the window is enforced by key expiry set on the first
// attempt, so limited retries cannot extend it.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed limiter for the given address.
func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
	}
}

// Check implements Limiter.
func (s *RedisStore) Check(ctx context.Context, key string, maxAttempts int, window time.Duration) (bool, error) {
	redisKey := redisKeyPrefix + key

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("increment rate counter: %w", err)
	}

	if count == 1 {
		if err := s.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			return false, fmt.Errorf("set rate counter expiry: %w", err)
		}
	}

	return count > int64(maxAttempts), nil
}

// Ping verifies the Redis connection, for startup health checks.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
