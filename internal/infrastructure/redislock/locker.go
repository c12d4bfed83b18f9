// Package redislock implements lock.Locker on a single Redis node.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/match-hub/match-hub/internal/domain/lock"
)

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker grants leases with SET NX PX and polls while the key is taken.
type Locker struct {
	rdb redis.UniversalClient

	prefix        string
	retryInterval time.Duration
}

type Option func(*Locker)

// WithPrefix namespaces lock keys. Defaults to "lock".
func WithPrefix(prefix string) Option {
	return func(l *Locker) { l.prefix = strings.Trim(prefix, ":") }
}

// WithRetryInterval sets how often a waiting Acquire polls. Defaults to 50ms.
func WithRetryInterval(d time.Duration) Option {
	return func(l *Locker) {
		if d > 0 {
			l.retryInterval = d
		}
	}
}

func New(rdb redis.UniversalClient, opts ...Option) *Locker {
	l := &Locker{
		rdb:           rdb,
		prefix:        "lock",
		retryInterval: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Locker) Acquire(ctx context.Context, key string, wait, leaseFor time.Duration) (*lock.Lease, error) {
	token := uuid.NewString()
	redisKey := l.key(key)
	deadline := time.Now().Add(wait)

	for {
		// Expiry is measured from before the SET so the local view never
		// outlives the key in Redis.
		start := time.Now()
		ok, err := l.rdb.SetNX(ctx, redisKey, token, leaseFor).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			fence, err := l.rdb.Incr(ctx, redisKey+":fence").Result()
			if err != nil {
				l.release(context.WithoutCancel(ctx), redisKey, token)
				return nil, fmt.Errorf("failed to issue fence for %s: %w", key, err)
			}
			return &lock.Lease{Key: key, Token: token, Fence: fence, ExpiresAt: start.Add(leaseFor)}, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, lock.ErrNotAcquired
		}
		timer := time.NewTimer(min(l.retryInterval, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Locker) Release(ctx context.Context, lease *lock.Lease) error {
	if lease == nil {
		return nil
	}
	_, err := releaseScript.Run(ctx, l.rdb, []string{l.key(lease.Key)}, lease.Token).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release lock %s: %w", lease.Key, err)
	}
	return nil
}

func (l *Locker) release(ctx context.Context, redisKey, token string) {
	_ = releaseScript.Run(ctx, l.rdb, []string{redisKey}, token).Err()
}

func (l *Locker) key(key string) string {
	return l.prefix + ":" + key
}
