// Package noncestore gives the Signer a tsx_ctr counter that survives a
// process restart, backed by Redis. The non-blocking-writer-goroutine shape
// the teacher used to keep its order-book feed off the Redis round trip
// (internal/adapter's book writer) doesn't apply here — tsx_ctr allocation
// sits directly on InitTransaction's hot path, so Store.Next talks to Redis
// synchronously and returns the allocated value to its caller instead of
// fire-and-forgetting an update.
package noncestore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisClient abstracts the single Redis operation Store needs, the same
// narrow-interface style the teacher used for its Redis writer so tests can
// substitute a mock instead of a miniredis instance.
type RedisClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// Store is a signer.NonceStore backed by a Redis INCR counter. Every call
// to Next atomically increments the counter key and returns the new value,
// so tsx_ctr is strictly increasing across the Signer's entire lifetime,
// including restarts, as long as the Redis key survives.
type Store struct {
	client RedisClient
	key    string
}

// New returns a Store that increments key on client. key should be stable
// across Signer restarts (e.g. "xmrsigner:tsx_ctr") and unique per wallet
// if a single Redis instance backs more than one Signer.
func New(client RedisClient, key string) *Store {
	return &Store{client: client, key: key}
}

// Next atomically allocates and returns the next tsx_ctr value.
func (s *Store) Next(ctx context.Context) (uint64, error) {
	n, err := s.client.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("noncestore: incr %s: %w", s.key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("noncestore: counter %s went non-positive: %d", s.key, n)
	}
	return uint64(n), nil
}
