package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/match-hub/match-hub/internal/domain/lock"
)

type held struct {
	token     string
	expiresAt time.Time
	released  chan struct{}
}

// Locker is an in-process lock.Locker. Leases expire on their own, like the
// Redis implementation, so a crashed holder cannot block a key forever.
type Locker struct {
	mu     sync.Mutex
	keys   map[string]*held
	fences map[string]int64
	now    func() time.Time
}

// NewLocker creates an empty locker
func NewLocker() *Locker {
	return &Locker{
		keys:   make(map[string]*held),
		fences: make(map[string]int64),
		now:    time.Now,
	}
}

func (l *Locker) Acquire(ctx context.Context, key string, wait, lease time.Duration) (*lock.Lease, error) {
	deadline := l.now().Add(wait)
	for {
		l.mu.Lock()
		now := l.now()
		h := l.keys[key]
		if h == nil || !now.Before(h.expiresAt) {
			if h != nil {
				close(h.released)
			}
			l.fences[key]++
			granted := &lock.Lease{
				Key:       key,
				Token:     uuid.NewString(),
				Fence:     l.fences[key],
				ExpiresAt: now.Add(lease),
			}
			l.keys[key] = &held{token: granted.Token, expiresAt: granted.ExpiresAt, released: make(chan struct{})}
			l.mu.Unlock()
			return granted, nil
		}
		released := h.released
		expiresAt := h.expiresAt
		l.mu.Unlock()

		remaining := deadline.Sub(now)
		if remaining <= 0 {
			return nil, lock.ErrNotAcquired
		}
		if untilExpiry := expiresAt.Sub(now); untilExpiry < remaining {
			remaining = untilExpiry
		}

		timer := time.NewTimer(remaining)
		select {
		case <-released:
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
		timer.Stop()
	}
}

func (l *Locker) Release(ctx context.Context, lease *lock.Lease) error {
	if lease == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	h := l.keys[lease.Key]
	if h == nil || h.token != lease.Token {
		return nil
	}
	delete(l.keys, lease.Key)
	close(h.released)
	return nil
}
