package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/denisAlshanov/ytmp3/internal/utils"
)

const (
	redisKeyPrefix = "ytmp3:ratelimit"
	redisTimeout   = 200 * time.Millisecond
)

// RedisLimiter shares fixed window counters between replicas. Each window is a
// key of the form prefix:key:windowIndex incremented with INCR. When redis is
// unreachable the decision falls back to an in-process MemoryLimiter.
type RedisLimiter struct {
	client   *redis.Client
	limit    int
	period   time.Duration
	fallback *MemoryLimiter
	now      func() time.Time
}

func NewRedisLimiter(client *redis.Client, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		limit:    limit,
		period:   period,
		fallback: NewMemoryLimiter(limit, period),
		now:      time.Now,
	}
}

func (l *RedisLimiter) windowKey(key string) string {
	seconds := int64(l.period / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return fmt.Sprintf("%s:%s:%d", redisKeyPrefix, key, l.now().Unix()/seconds)
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	windowKey := l.windowKey(key)
	n, err := l.client.Incr(ctx, windowKey).Result()
	if err != nil {
		utils.LogWarn(ctx, "Redis rate limiter unavailable, using in-memory counter", utils.Fields{
			"error": err.Error(),
		})
		return l.fallback.allow(key), nil
	}

	if n == 1 {
		if err := l.client.Expire(ctx, windowKey, l.period+5*time.Second).Err(); err != nil {
			utils.LogWarn(ctx, "Failed to set rate limit window expiry", utils.Fields{
				"key":   windowKey,
				"error": err.Error(),
			})
		}
	}

	return n <= int64(l.limit), nil
}
