package blocklist

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// revoked is the sentinel value stored under each revoked token id.
const revoked = "revoked"

// RedisStore implements Store on a Redis key per token id:
// "<prefix><jti>" -> "revoked" with TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	maxTTL time.Duration
}

// NewRedisStore creates a Redis-backed revocation store. Prefix may be
// empty. maxTTL bounds every entry's lifetime; entries for tokens that
// outlive it would already have expired on their own.
func NewRedisStore(client *redis.Client, prefix string, maxTTL time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "blocklist:jti:"
	}
	if maxTTL <= 0 {
		maxTTL = time.Hour
	}
	return &RedisStore{client: client, prefix: prefix, maxTTL: maxTTL}
}

func (s *RedisStore) key(jti string) string {
	return s.prefix + jti
}

func (s *RedisStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 || ttl > s.maxTTL {
		ttl = s.maxTTL
	}
	if err := s.client.Set(ctx, s.key(jti), revoked, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}
