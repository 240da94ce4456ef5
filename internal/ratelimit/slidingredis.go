package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of registering one event against a window.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Window is a sliding-window counter backed by a Redis sorted set per key.
type Window struct {
	Client redis.UniversalClient
	Prefix string
	Max    int
	Period time.Duration
}

// Allow registers an event for key and reports whether it is within the window.
func (l Window) Allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	until := now.Add(l.Period)
	if l.Client == nil || l.Max <= 0 || l.Period <= 0 {
		return Decision{Allowed: true, Remaining: l.Max, ResetAt: until}, nil
	}

	redisKey := l.Prefix + key
	cutoff := strconv.FormatInt(now.Add(-l.Period).UnixNano(), 10)

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", "("+cutoff)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	count := pipe.ZCard(ctx, redisKey)
	pipe.PExpire(ctx, redisKey, l.Period)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{ResetAt: until}, fmt.Errorf("sliding window %s: %w", key, err)
	}

	current := int(count.Val())
	return Decision{
		Allowed:   current <= l.Max,
		Remaining: max(l.Max-current, 0),
		ResetAt:   until,
	}, nil
}

// Reset forgets every event recorded for key.
func (l Window) Reset(ctx context.Context, key string) error {
	if l.Client == nil {
		return nil
	}
	return l.Client.Del(ctx, l.Prefix+key).Err()
}
