package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces every rate-limit zset so the cleaner can scan them
// without touching the session keys stored in the same database.
const keyPrefix = "fitcoin:ratelimit:"

// RedisLimiter tracks request timestamps per client in a Redis sorted set.
// Each call prunes entries older than the window and counts what remains,
// so the window slides instead of resetting on a fixed boundary.
type RedisLimiter struct {
	client *redis.Client
	log    *slog.Logger
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter builds the shared-state limiter used when Redis is
// reachable. Pass a nil logger to fall back to slog.Default.
func NewRedisLimiter(client *redis.Client, log *slog.Logger) Limiter {
	if log == nil {
		log = slog.Default()
	}

	return &RedisLimiter{
		client: client,
		log:    log,
	}
}

// Check records the request under key and reports whether it fits inside
// limit requests per window.
func (l *RedisLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	if l.client == nil {
		return nil, errors.New("redis client is not configured for rate limiting")
	}

	now := time.Now()
	if limit <= 0 {
		return &Result{Allowed: false, Remaining: 0, ResetAt: now.Add(window)}, nil
	}

	// Millisecond scores; uuid members keep same-millisecond requests
	// from collapsing into one zset entry.
	windowStart := now.Add(-window)
	zsetKey := keyPrefix + key
	oldest := fmt.Sprintf("(%f", msScore(windowStart))

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, zsetKey, "-inf", oldest)
	pipe.ZAdd(ctx, zsetKey, redis.Z{
		Score:  msScore(now),
		Member: uuid.NewString(),
	})
	countCmd := pipe.ZCard(ctx, zsetKey)
	pipe.Expire(ctx, zsetKey, window*2)

	if _, err := pipe.Exec(ctx); err != nil {
		l.log.Error("rate limit check failed", slog.String("key", key), slog.Any("error", err))
		return nil, err
	}

	used, err := countCmd.Result()
	if err != nil {
		l.log.Error("rate limit count unavailable", slog.String("key", key), slog.Any("error", err))
		return nil, err
	}

	remaining := limit - int(used)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   used <= int64(limit),
		Remaining: remaining,
		ResetAt:   now.Add(window),
	}, nil
}

func msScore(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Millisecond)
}
