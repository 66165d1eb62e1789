package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys that were already handled
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already processed
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget drops a key so the request can be retried, used when the
	// guarded operation failed after the key was marked
	Forget(ctx context.Context, key string) error

	// SaveResult attaches the outcome of a processed key so a repeated
	// request can be answered without running the operation again
	SaveResult(ctx context.Context, key string, result []byte, ttl time.Duration) error

	// Result returns the saved outcome. ok is false when the key is unknown
	// or its operation has not finished yet
	Result(ctx context.Context, key string) (result []byte, ok bool, err error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a key is remembered
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
