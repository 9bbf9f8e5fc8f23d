package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_SerializesSameKey(t *testing.T) {
	l := NewLocalLocker(Options{Wait: time.Second})
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, "team:project")
			require.NoError(t, err)
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			require.NoError(t, release(ctx))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Empty(t, l.slots)
}

func TestLocalLocker_DifferentKeysDoNotBlock(t *testing.T) {
	l := NewLocalLocker(Options{Wait: 50 * time.Millisecond})
	ctx := context.Background()

	releaseA, err := l.Acquire(ctx, "a")
	require.NoError(t, err)
	releaseB, err := l.Acquire(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, releaseA(ctx))
	require.NoError(t, releaseB(ctx))
}

func TestLocalLocker_TimesOut(t *testing.T) {
	l := NewLocalLocker(Options{Wait: 20 * time.Millisecond})
	ctx := context.Background()

	release, err := l.Acquire(ctx, "busy")
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "busy")
	assert.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, release(ctx))
	release, err = l.Acquire(ctx, "busy")
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}

func TestLocalLocker_ContextCancelled(t *testing.T) {
	l := NewLocalLocker(Options{Wait: time.Second})
	release, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer release(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNotAcquired)
}

func TestLocalLocker_ReleaseIsIdempotent(t *testing.T) {
	l := NewLocalLocker(Options{})
	ctx := context.Background()

	release, err := l.Acquire(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, release(ctx))
	require.NoError(t, release(ctx))

	release, err = l.Acquire(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}
