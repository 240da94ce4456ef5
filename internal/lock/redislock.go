// Package lock serialises work across API replicas with a Redis key.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotConfigured is returned when the locker has no Redis client.
var ErrNotConfigured = errors.New("lock: redis client not configured")

var releaseScript = redis.NewScript(`if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0`)

// Locker provides a Redis-backed mutual exclusion lock.
type Locker struct {
	Client       redis.UniversalClient
	RetryBackoff time.Duration
}

// WithLock runs fn while holding key. The lock is released when fn returns,
// and expires after ttl if the holder dies. Waiting stops when ctx is done.
func (l Locker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	if l.Client == nil {
		return ErrNotConfigured
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	retry := l.RetryBackoff
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	owner := uuid.NewString()

	for {
		ok, err := l.Client.SetNX(ctx, key, owner, ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			defer releaseScript.Run(context.WithoutCancel(ctx), l.Client, []string{key}, owner)
			return fn(ctx)
		}
		timer := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
