// Package lock serializes work per key across processes. Detection runs take
// a lock per company so two callers never write the same trip flags at once.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned by Acquire when another holder owns the key.
var ErrLocked = errors.New("lock: already held")

// ReleaseFunc gives the lock back. It is safe to call more than once.
type ReleaseFunc func(ctx context.Context) error

// Locker hands out short-lived exclusive locks.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}

// releaseScript deletes the key only if it still holds our token, so a lock
// that expired and was taken by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX on a shared Redis.
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisLocker returns a locker that namespaces keys under prefix.
func NewRedisLocker(client redis.UniversalClient, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("lock.RedisLocker.Acquire: %w", err)
	}
	full := l.prefix + key

	ok, err := l.client.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock.RedisLocker.Acquire: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{full}, token).Err(); err != nil {
			return fmt.Errorf("lock.RedisLocker.Release: %w", err)
		}
		return nil
	}, nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NopLocker always succeeds. It is used when no Redis is configured and
// the process is the only writer.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, string, time.Duration) (ReleaseFunc, error) {
	return func(context.Context) error { return nil }, nil
}
