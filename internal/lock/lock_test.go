package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vse/abbc3-migrate/internal/conf"
	"github.com/vse/abbc3-migrate/internal/errors"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisLocker) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	locker := NewRedisLocker(client, "abbc3-migrate:lock", time.Minute)
	t.Cleanup(func() { _ = locker.Close() })
	return mr, locker
}

func TestRedisLockerAcquireRelease(t *testing.T) {
	ctx := context.Background()
	mr, locker := setupTestRedis(t)

	release, err := locker.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists("abbc3-migrate:lock"))
	assert.Equal(t, time.Minute, mr.TTL("abbc3-migrate:lock"))

	_, err = locker.Acquire(ctx)
	require.ErrorIs(t, err, ErrHeld)
	assert.True(t, errors.IsCategory(err, errors.CategoryLock))

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("abbc3-migrate:lock"))

	release, err = locker.Acquire(ctx)
	require.NoError(t, err, "lock can be taken again after release")
	require.NoError(t, release(ctx))
}

func TestRedisLockerReleaseAfterTakeover(t *testing.T) {
	ctx := context.Background()
	mr, locker := setupTestRedis(t)

	release, err := locker.Acquire(ctx)
	require.NoError(t, err)

	// The lock expires and another run takes it.
	mr.FastForward(2 * time.Minute)
	require.NoError(t, mr.Set("abbc3-migrate:lock", "someone-else"))

	err = release(ctx)
	require.ErrorIs(t, err, ErrLost)

	got, err := mr.Get("abbc3-migrate:lock")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got, "release never deletes a lock it does not own")
}

func TestRedisLockerServerDown(t *testing.T) {
	ctx := context.Background()
	mr, locker := setupTestRedis(t)
	mr.Close()

	_, err := locker.Acquire(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryLock))
	assert.NotErrorIs(t, err, ErrHeld)
}

func TestNew(t *testing.T) {
	assert.IsType(t, Noop{}, New(nil))
	assert.IsType(t, Noop{}, New(&conf.LockSettings{Enabled: false}))

	mr := miniredis.RunT(t)
	l := New(&conf.LockSettings{
		Enabled: true,
		TTL:     time.Minute,
		Redis:   conf.RedisSettings{Addr: mr.Addr(), Key: "k"},
	})
	defer func() { _ = l.Close() }()
	require.IsType(t, &RedisLocker{}, l)

	release, err := l.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, mr.Exists("k"))
	require.NoError(t, release(context.Background()))
}

func TestNoop(t *testing.T) {
	release, err := Noop{}.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, release(context.Background()))
	require.NoError(t, Noop{}.Close())
}
