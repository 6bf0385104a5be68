package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/facegate/internal/constants"
	"github.com/redis/go-redis/v9"
)

// RedisStore is the Redis-backed cache. Entry expiry is enforced by Redis.
type RedisStore struct {
	client *redis.Client
}

// Compile-time interface compliance check.
var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis using a connection URL
// (e.g. redis://localhost:6379/0).
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func entryKey(key string) string {
	return constants.CacheKeyPrefix + key
}

// Get returns the cached payload for a key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := s.client.Get(ctx, entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return payload, true, nil
}

// Set stores a payload with the given TTL.
func (s *RedisStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, entryKey(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// TrackUnmatched adds the key to the unmatched set.
func (s *RedisStore) TrackUnmatched(ctx context.Context, key string) error {
	if err := s.client.SAdd(ctx, constants.UnmatchedSetKey, key).Err(); err != nil {
		return fmt.Errorf("redis sadd: %w", err)
	}
	return nil
}

// InvalidateUnmatched deletes every tracked unmatched entry and the set itself.
func (s *RedisStore) InvalidateUnmatched(ctx context.Context) (int, error) {
	members, err := s.client.SMembers(ctx, constants.UnmatchedSetKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis smembers: %w", err)
	}

	if len(members) > 0 {
		keys := make([]string, len(members))
		for i, m := range members {
			keys[i] = entryKey(m)
		}
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return 0, fmt.Errorf("redis del entries: %w", err)
		}
	}

	if err := s.client.Del(ctx, constants.UnmatchedSetKey).Err(); err != nil {
		return len(members), fmt.Errorf("redis del set: %w", err)
	}
	return len(members), nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
