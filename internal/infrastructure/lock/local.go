package lock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// LocalLocker is an in-process keyed mutex. It serializes callers within one
// replica only; multi-replica deployments use RedisLocker.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
	wait  time.Duration
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker creates a LocalLocker honouring opts.Wait
func NewLocalLocker(opts Options) *LocalLocker {
	return &LocalLocker{
		slots: make(map[string]*slot),
		wait:  opts.withDefaults().Wait,
	}
}

// Acquire blocks until key is free or the wait budget runs out (ErrNotAcquired).
// A done ctx returns its error instead.
func (l *LocalLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	s := l.ref(key)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key)
		return nil, fmt.Errorf("lock: acquire %s: %w", key, ctx.Err())
	case <-timer.C:
		l.unref(key)
		return nil, fmt.Errorf("%w: %s: waited %s", ErrNotAcquired, key, l.wait)
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-s.ch
			l.unref(key)
		})
		return nil
	}, nil
}

func (l *LocalLocker) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *LocalLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.slots[key]; ok {
		s.refs--
		if s.refs == 0 {
			delete(l.slots, key)
		}
	}
}

var _ Locker = (*LocalLocker)(nil)
