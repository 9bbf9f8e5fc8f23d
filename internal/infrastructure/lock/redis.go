package lock

import (
	"context"
	"errors"
	"fmt"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces this service's lock keys in a shared Redis
const KeyPrefix = "projledger:"

// RedisLocker takes distributed locks with SET NX PX semantics so that
// concurrent replicas serialize on the same key.
type RedisLocker struct {
	client *redislock.Client
	prefix string
	opts   Options
}

// NewRedisLocker creates a locker on top of an existing Redis client
func NewRedisLocker(client redis.UniversalClient, prefix string, opts Options) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(client),
		prefix: prefix,
		opts:   opts.withDefaults(),
	}
}

// Acquire retries with linear backoff until the wait budget is spent
func (l *RedisLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	waitCtx, cancel := context.WithTimeout(ctx, l.opts.Wait)
	defer cancel()

	fullKey := l.prefix + key
	held, err := l.client.Obtain(waitCtx, fullKey, l.opts.TTL, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.opts.Backoff),
	})
	if err != nil && ctx.Err() != nil {
		return nil, fmt.Errorf("lock: obtain %s: %w", fullKey, ctx.Err())
	}
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %s", ErrNotAcquired, fullKey)
	}
	if err != nil {
		return nil, fmt.Errorf("lock: obtain %s: %w", fullKey, err)
	}

	return func(ctx context.Context) error {
		err := held.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			// TTL elapsed before release; the key is already free.
			return nil
		}
		return err
	}, nil
}

var _ Locker = (*RedisLocker)(nil)
