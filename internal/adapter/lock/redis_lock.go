package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by another request is left alone.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

var ErrLockBusy = fmt.Errorf("%w: another booking for this property is in progress, retry shortly", domain.ErrConflict)

type RedisLocker struct {
	client     redis.Cmdable
	attempts   int
	retryDelay time.Duration
	newToken   func() string
}

func NewRedisLocker(client redis.Cmdable) *RedisLocker {
	return &RedisLocker{
		client:     client,
		attempts:   5,
		retryDelay: 100 * time.Millisecond,
		newToken:   uuid.NewString,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	token := l.newToken()

	for attempt := 1; ; attempt++ {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: acquire lock %s: %v", domain.ErrPersistence, key, err)
		}
		if ok {
			break
		}
		if attempt >= l.attempts {
			return nil, ErrLockBusy
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}

	release := func(ctx context.Context) error {
		err := l.client.Eval(ctx, releaseScript, []string{key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}

	return release, nil
}
