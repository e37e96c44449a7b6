// Package ratelimit throttles requests per key using Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// Limiter decides whether one more request for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// Result is the outcome of one check.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RedisLimiter applies a fixed per-minute limit with a GCRA limiter in Redis.
type RedisLimiter struct {
	limiter *redis_rate.Limiter
	limit   redis_rate.Limit
	prefix  string
}

// NewRedisLimiter allows perMinute requests per key per minute.
func NewRedisLimiter(rdb redis.UniversalClient, prefix string, perMinute int) *RedisLimiter {
	return &RedisLimiter{
		limiter: redis_rate.NewLimiter(rdb),
		limit:   redis_rate.PerMinute(perMinute),
		prefix:  prefix,
	}
}

// Allow checks and consumes one token for key.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	res, err := r.limiter.Allow(ctx, r.prefix+key, r.limit)
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	return toResult(res), nil
}

// toResult maps the limiter's answer; a negative RetryAfter means "not limited".
func toResult(res *redis_rate.Result) *Result {
	out := &Result{
		Allowed:    res.Allowed > 0,
		Remaining:  res.Remaining,
		RetryAfter: res.RetryAfter,
	}
	if out.RetryAfter < 0 {
		out.RetryAfter = 0
	}
	return out
}
