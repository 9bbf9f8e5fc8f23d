// Package lock provides per-key mutual exclusion for project roll-ups,
// either in-process or across replicas through Redis.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired is returned when a lock could not be taken within the wait budget
var ErrNotAcquired = errors.New("lock: not acquired")

// ReleaseFunc releases a held lock
type ReleaseFunc func(ctx context.Context) error

// Locker acquires exclusive locks by key
type Locker interface {
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}

// Options bound how long a caller waits and how long a lock lives
type Options struct {
	TTL     time.Duration // lifetime of a distributed lock
	Wait    time.Duration // maximum time spent waiting to acquire
	Backoff time.Duration // delay between distributed acquire attempts
}

// DefaultOptions returns the defaults used when config leaves values unset
func DefaultOptions() Options {
	return Options{TTL: 10 * time.Second, Wait: 5 * time.Second, Backoff: 50 * time.Millisecond}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TTL <= 0 {
		o.TTL = d.TTL
	}
	if o.Wait <= 0 {
		o.Wait = d.Wait
	}
	if o.Backoff <= 0 {
		o.Backoff = d.Backoff
	}
	return o
}
