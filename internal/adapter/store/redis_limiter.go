package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter caps how many queries an actor may route per window. Each
// routed query costs several billed completions.
type RedisLimiter struct {
	client *redis.Client
	limit  int // Max queries per window
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func usageKey(actor string) string {
	return "usage:" + actor
}

func (r *RedisLimiter) CheckLimit(ctx context.Context, actor string) (bool, error) {
	if r.limit <= 0 {
		return true, nil
	}
	val, err := r.client.Get(ctx, usageKey(actor)).Result()
	if err == redis.Nil {
		return true, nil // No usage yet
	}
	if err != nil {
		return false, fmt.Errorf("redis limiter: %w", err)
	}
	usage, err := strconv.Atoi(val)
	if err != nil {
		return false, fmt.Errorf("redis limiter: corrupt counter for %s: %w", actor, err)
	}
	return usage < r.limit, nil
}

// Increment counts one query and starts the window on first use.
func (r *RedisLimiter) Increment(ctx context.Context, actor string) error {
	key := usageKey(actor)
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, key)
	if r.window > 0 {
		pipe.ExpireNX(ctx, key, r.window)
	}
	_, err := pipe.Exec(ctx)
	return err
}
