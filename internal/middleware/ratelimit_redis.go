package middleware

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:embed rate_limit.lua
var rateLimitScript string

// RedisRateLimiter shares counters between server instances through Redis.
type RedisRateLimiter struct {
	client *redis.Client
	script *redis.Script
	prefix string
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(client *redis.Client, name string, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		script: redis.NewScript(rateLimitScript),
		prefix: fmt.Sprintf("caredocs:rate_limit:%s:", name),
		limit:  limit,
		window: window,
	}
}

// Allow fails open: when Redis is unreachable the request is let through and
// the error is logged.
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	allowed, retryAfter, err := rl.check(ctx, key)
	if err != nil {
		slog.ErrorContext(ctx, "rate limit check failed", "key", key, "error", err)
		return true, 0
	}
	return allowed, retryAfter
}

func (rl *RedisRateLimiter) check(ctx context.Context, key string) (bool, time.Duration, error) {
	windowSec := max(1, int(rl.window.Seconds()))

	result, err := rl.script.Run(ctx, rl.client, []string{rl.prefix + key}, rl.limit, windowSec).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script: %w", err)
	}
	if len(result) != 3 {
		return false, 0, fmt.Errorf("unexpected script result %v", result)
	}

	allowed := result[0] == 1
	if allowed {
		return true, 0, nil
	}
	return false, time.Duration(result[2]) * time.Second, nil
}
