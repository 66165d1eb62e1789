package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/grocerypos/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces idempotency keys in a shared Redis
const DefaultKeyPrefix = "pos:idem:"

// RedisIdempotencyStore shares idempotency state between server instances.
// A reservation is a SETNX marker; a finished request adds a result key
// with the same lifetime.
type RedisIdempotencyStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisIdempotencyStore connects to addr and verifies the connection
func NewRedisIdempotencyStore(ctx context.Context, opts *redis.Options, keyPrefix string) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisIdempotencyStoreWithClient(client, keyPrefix), nil
}

// NewRedisIdempotencyStoreWithClient wraps an existing client
func NewRedisIdempotencyStoreWithClient(client redis.UniversalClient, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisIdempotencyStore) markerKey(key string) string { return s.keyPrefix + key }
func (s *RedisIdempotencyStore) resultKey(key string) string { return s.keyPrefix + key + ":result" }

// MarkProcessed reserves key atomically with SETNX
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.markerKey(key), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	return ok, nil
}

// IsProcessed reports whether key is reserved
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.markerKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	return n > 0, nil
}

// Forget deletes the reservation and any saved result
func (s *RedisIdempotencyStore) Forget(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.markerKey(key), s.resultKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to forget idempotency key: %w", err)
	}
	return nil
}

// SaveResult stores result and refreshes the reservation ttl in one round trip
func (s *RedisIdempotencyStore) SaveResult(ctx context.Context, key string, result []byte, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.markerKey(key), "1", ttl)
		pipe.Set(ctx, s.resultKey(key), result, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save idempotent result: %w", err)
	}
	return nil
}

// Result returns the saved result for key
func (s *RedisIdempotencyStore) Result(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.resultKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load idempotent result: %w", err)
	}
	return data, true, nil
}

// Close closes the Redis client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
