// file: service/cache.go

package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheTimeout bounds every cache-store call. A slow Redis must not stall
// request workers; callers resolve timeouts via their fail-open policies.
const cacheTimeout = 2 * time.Second

// ICacheClient defines the contract for a cache client.
// This abstraction decouples the revocation and rate-limiter services from a
// concrete Redis implementation, enabling easier testing and future flexibility.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}
