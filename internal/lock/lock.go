// Package lock serialises migrate runs. Two concurrent runs would both read
// the same MAX(bbcode_id) and collide on the next id, so the migrate
// command holds an exclusive lock for the duration of the run.
package lock

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/vse/abbc3-migrate/internal/conf"
	"github.com/vse/abbc3-migrate/internal/errors"
)

var (
	// ErrHeld indicates another run holds the lock.
	ErrHeld = errors.NewStd("lock is held by another run")

	// ErrLost indicates the lock expired or was taken over before release.
	ErrLost = errors.NewStd("lock was lost before release")
)

// ReleaseFunc gives the lock back.
type ReleaseFunc func(ctx context.Context) error

// Locker acquires an exclusive run lock.
type Locker interface {
	Acquire(ctx context.Context) (ReleaseFunc, error)
	Close() error
}

// New returns a RedisLocker when cfg.Enabled is set, otherwise a Noop.
func New(cfg *conf.LockSettings) Locker {
	if cfg == nil || !cfg.Enabled {
		return Noop{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return NewRedisLocker(client, cfg.Redis.Key, cfg.TTL)
}

// Noop is a Locker that always succeeds.
type Noop struct{}

// Acquire returns a release func that does nothing.
func (Noop) Acquire(context.Context) (ReleaseFunc, error) {
	return func(context.Context) error { return nil }, nil
}

// Close does nothing.
func (Noop) Close() error { return nil }

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker holds a lock as a Redis key with a random token and a TTL.
type RedisLocker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisLocker creates a locker on key. The lock expires after ttl if the
// holder dies without releasing it.
func NewRedisLocker(client *redis.Client, key string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// Acquire takes the lock or fails with ErrHeld. It does not wait.
func (l *RedisLocker) Acquire(ctx context.Context) (ReleaseFunc, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, l.lockError(err, "acquire")
	}
	if !ok {
		return nil, l.lockError(ErrHeld, "acquire")
	}

	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Int()
		if err != nil {
			return l.lockError(err, "release")
		}
		if n == 0 {
			return l.lockError(ErrLost, "release")
		}
		return nil
	}, nil
}

// Close closes the Redis client.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

func (l *RedisLocker) lockError(err error, op string) error {
	return errors.New(err).
		Component("lock").
		Category(errors.CategoryLock).
		Context("operation", op).
		Context("key", l.key).
		Build()
}
