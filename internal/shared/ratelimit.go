package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter implements a fixed-window counter shared across instances.
// Each key gets Limit requests per Window; the first hit arms the expiry.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRateLimiter constructs a limiter over the given Redis client.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, limit: int64(limit), window: window}
}

// Allow increments the counter for key and reports whether the request
// fits inside the current window. Fails open on Redis errors so a cache
// outage does not take the API down with it.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := "ratelimit:" + key
	count, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, fmt.Errorf("shared: rate limit incr: %w", err)
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			return true, fmt.Errorf("shared: rate limit expire: %w", err)
		}
	}
	return count <= rl.limit, nil
}

// Remaining reports how many requests are left in the window for key.
func (rl *RateLimiter) Remaining(ctx context.Context, key string) (int64, error) {
	count, err := rl.client.Get(ctx, "ratelimit:"+key).Int64()
	if err != nil {
		if err == redis.Nil {
			return rl.limit, nil
		}
		return 0, fmt.Errorf("shared: rate limit get: %w", err)
	}
	remaining := rl.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
