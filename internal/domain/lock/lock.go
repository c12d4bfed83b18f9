// Package lock defines the distributed mutual-exclusion port used to
// serialize decisions on a single match post.
package lock

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_locker.go -package=mocks . Locker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultWait  = 3 * time.Second
	DefaultLease = 5 * time.Second
)

var (
	// ErrNotAcquired is returned when the wait time elapses before the lock is free.
	ErrNotAcquired = errors.New("lock not acquired")
	// ErrLeaseExpired is reported when a holder outlives its lease.
	ErrLeaseExpired = errors.New("lock lease expired")
)

// Lease is a granted hold on a key. Token identifies the holder; only the
// holder of the matching token may release. Fence increases with every grant
// on the same key.
type Lease struct {
	Key       string
	Token     string
	Fence     int64
	ExpiresAt time.Time
}

// Expired reports whether the lease is past its expiry at now
func (l *Lease) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// Locker acquires and releases named leases
type Locker interface {
	// Acquire blocks up to wait for key and holds it for lease.
	// Returns ErrNotAcquired when wait elapses.
	Acquire(ctx context.Context, key string, wait, lease time.Duration) (*Lease, error)
	// Release frees the key if it is still held by l. Releasing an expired or
	// foreign lease is a no-op.
	Release(ctx context.Context, l *Lease) error
}

// Options configure a WithLock call
type Options struct {
	Wait  time.Duration
	Lease time.Duration
	// ReleaseTimeout bounds the release call made after fn returns.
	ReleaseTimeout time.Duration
	// OnReleaseError observes release failures. The outcome of fn is
	// returned unchanged; an unreleased lease lapses on its own.
	OnReleaseError func(key string, err error)
}

// DefaultOptions returns the wait/lease pair used for match decisions
func DefaultOptions() Options {
	return Options{Wait: DefaultWait, Lease: DefaultLease, ReleaseTimeout: time.Second}
}

func (o Options) withDefaults() Options {
	if o.Wait <= 0 {
		o.Wait = DefaultWait
	}
	if o.Lease <= 0 {
		o.Lease = DefaultLease
	}
	if o.ReleaseTimeout <= 0 {
		o.ReleaseTimeout = time.Second
	}
	return o
}

// MatchPostKey is the lock key guarding decisions on a match post
func MatchPostKey(postID uuid.UUID) string {
	return "match:" + postID.String()
}

// WithLock runs fn while holding key. fn receives a context whose deadline is
// the lease expiry, so work still running when the lease lapses is cancelled.
// The lease is released when fn returns, even if ctx was cancelled.
func WithLock(ctx context.Context, locker Locker, key string, opts Options, fn func(ctx context.Context, l *Lease) error) error {
	opts = opts.withDefaults()

	l, err := locker.Acquire(ctx, key, opts.Wait, opts.Lease)
	if err != nil {
		return err
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opts.ReleaseTimeout)
		defer cancel()
		if relErr := locker.Release(releaseCtx, l); relErr != nil && opts.OnReleaseError != nil {
			opts.OnReleaseError(key, relErr)
		}
	}()

	leaseCtx, cancel := context.WithDeadline(ctx, l.ExpiresAt)
	defer cancel()

	err = fn(leaseCtx, l)
	if err != nil && errors.Is(leaseCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: %w", ErrLeaseExpired, err)
	}
	return err
}
