package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter shared by every instance that
// points at the same Redis.
type RedisLimiter struct {
	client   redis.UniversalClient
	prefix   string
	limit    int64
	duration time.Duration
}

// NewRedis creates a limiter allowing limit actions per duration. Keys are
// stored under prefix.
func NewRedis(client redis.UniversalClient, prefix string, limit int, duration time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		prefix:   prefix,
		limit:    int64(limit),
		duration: duration,
	}
}

// Allow implements Throttle. The window starts on the first action.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + ":" + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.duration)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit: redis: %w", err)
	}
	return incr.Val() <= l.limit, nil
}

// Remaining implements Throttle.
func (l *RedisLimiter) Remaining(ctx context.Context, key string) (int, error) {
	n, err := l.client.Get(ctx, l.prefix+":"+key).Int64()
	if errors.Is(err, redis.Nil) {
		return int(l.limit), nil
	}
	if err != nil {
		return 0, fmt.Errorf("ratelimit: redis: %w", err)
	}
	if n >= l.limit {
		return 0, nil
	}
	return int(l.limit - n), nil
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
