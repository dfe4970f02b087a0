package locker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLocker(t *testing.T, ttl time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, ttl), mr
}

func TestRedisLocker_HoldsLeaseUntilUnlock(t *testing.T) {
	l, mr := newTestRedisLocker(t, 5*time.Second)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "user-1")
	require.NoError(t, err)

	require.True(t, mr.Exists(keyPrefix+"user-1"))
	assert.Equal(t, 5*time.Second, mr.TTL(keyPrefix+"user-1"))

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = l.Lock(waitCtx, "user-1")
	assert.ErrorIs(t, err, ErrNotAcquired)

	// other keys are independent
	other, err := l.Lock(ctx, "user-2")
	require.NoError(t, err)
	other()

	unlock()
	assert.False(t, mr.Exists(keyPrefix+"user-1"))

	again, err := l.Lock(ctx, "user-1")
	require.NoError(t, err)
	again()
}

func TestRedisLocker_WaiterAcquiresAfterRelease(t *testing.T) {
	l, _ := newTestRedisLocker(t, 5*time.Second)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "user-1")
	require.NoError(t, err)

	acquired := make(chan error, 1)
	go func() {
		next, err := l.Lock(ctx, "user-1")
		if err == nil {
			next()
		}
		acquired <- err
	}()

	select {
	case <-acquired:
		t.Fatal("second holder got the lease while the first still held it")
	case <-time.After(100 * time.Millisecond):
	}

	unlock()

	select {
	case err := <-acquired:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never acquired the released lease")
	}
}

func TestRedisLocker_ExpiredLeaseIsNotReleasedByOldHolder(t *testing.T) {
	l, mr := newTestRedisLocker(t, time.Second)
	ctx := context.Background()
	key := keyPrefix + "user-1"

	first, err := l.Lock(ctx, "user-1")
	require.NoError(t, err)
	firstToken, err := mr.Get(key)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists(key))

	second, err := l.Lock(ctx, "user-1")
	require.NoError(t, err)
	secondToken, err := mr.Get(key)
	require.NoError(t, err)
	require.NotEqual(t, firstToken, secondToken)

	first()
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, secondToken, got)

	// a repeated call is a no-op
	first()
	assert.True(t, mr.Exists(key))

	second()
	assert.False(t, mr.Exists(key))
}

func TestRedisLocker_CancelledContext(t *testing.T) {
	l, mr := newTestRedisLocker(t, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Lock(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.False(t, mr.Exists(keyPrefix+"user-1"))
}
