package lock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/match-hub/match-hub/internal/domain/lock"
	lockMocks "github.com/match-hub/match-hub/internal/domain/lock/mocks"
)

func TestMatchPostKey(t *testing.T) {
	id := uuid.MustParse("2f6c1f0e-7d43-4a8e-9a51-0c1b8f0d2a11")
	assert.Equal(t, "match:2f6c1f0e-7d43-4a8e-9a51-0c1b8f0d2a11", lock.MatchPostKey(id))
}

func TestLease_Expired(t *testing.T) {
	now := time.Now()
	l := &lock.Lease{ExpiresAt: now.Add(time.Second)}
	assert.False(t, l.Expired(now))
	assert.True(t, l.Expired(now.Add(time.Second)))
}

func TestWithLock(t *testing.T) {
	t.Run("runs fn under lease deadline and releases", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		locker := lockMocks.NewMockLocker(ctrl)
		ctx := context.Background()
		lease := &lock.Lease{Key: "match:x", Token: "tok", Fence: 7, ExpiresAt: time.Now().Add(time.Minute)}

		locker.EXPECT().Acquire(ctx, "match:x", lock.DefaultWait, lock.DefaultLease).Return(lease, nil)
		locker.EXPECT().Release(gomock.Any(), lease).Return(nil)

		called := false
		err := lock.WithLock(ctx, locker, "match:x", lock.Options{}, func(ctx context.Context, l *lock.Lease) error {
			called = true
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			assert.Equal(t, lease.ExpiresAt, deadline)
			assert.Equal(t, int64(7), l.Fence)
			return nil
		})

		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("releases when fn fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		locker := lockMocks.NewMockLocker(ctrl)
		lease := &lock.Lease{Key: "k", Token: "tok", ExpiresAt: time.Now().Add(time.Minute)}
		boom := errors.New("validation failed")

		locker.EXPECT().Acquire(gomock.Any(), "k", time.Second, 2*time.Second).Return(lease, nil)
		locker.EXPECT().Release(gomock.Any(), lease).Return(nil)

		err := lock.WithLock(context.Background(), locker, "k", lock.Options{Wait: time.Second, Lease: 2 * time.Second}, func(context.Context, *lock.Lease) error {
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, lock.ErrLeaseExpired)
	})

	t.Run("does not run fn when acquisition fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		locker := lockMocks.NewMockLocker(ctrl)
		locker.EXPECT().Acquire(gomock.Any(), "k", gomock.Any(), gomock.Any()).Return(nil, lock.ErrNotAcquired)

		err := lock.WithLock(context.Background(), locker, "k", lock.DefaultOptions(), func(context.Context, *lock.Lease) error {
			t.Fatal("fn must not run without the lock")
			return nil
		})

		assert.ErrorIs(t, err, lock.ErrNotAcquired)
	})

	t.Run("release uses a live context after caller cancellation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		locker := lockMocks.NewMockLocker(ctrl)
		lease := &lock.Lease{Key: "k", Token: "tok", ExpiresAt: time.Now().Add(time.Minute)}
		ctx, cancel := context.WithCancel(context.Background())

		locker.EXPECT().Acquire(gomock.Any(), "k", gomock.Any(), gomock.Any()).Return(lease, nil)
		locker.EXPECT().Release(gomock.Any(), lease).DoAndReturn(func(ctx context.Context, _ *lock.Lease) error {
			assert.NoError(t, ctx.Err())
			return nil
		})

		err := lock.WithLock(ctx, locker, "k", lock.DefaultOptions(), func(ctx context.Context, _ *lock.Lease) error {
			cancel()
			return ctx.Err()
		})

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("lease expiry cancels fn", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		locker := lockMocks.NewMockLocker(ctrl)
		lease := &lock.Lease{Key: "k", Token: "tok", ExpiresAt: time.Now().Add(20 * time.Millisecond)}

		locker.EXPECT().Acquire(gomock.Any(), "k", gomock.Any(), gomock.Any()).Return(lease, nil)
		locker.EXPECT().Release(gomock.Any(), lease).Return(nil)

		err := lock.WithLock(context.Background(), locker, "k", lock.DefaultOptions(), func(ctx context.Context, _ *lock.Lease) error {
			<-ctx.Done()
			return ctx.Err()
		})

		assert.ErrorIs(t, err, lock.ErrLeaseExpired)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("release failure is reported but not returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		locker := lockMocks.NewMockLocker(ctrl)
		lease := &lock.Lease{Key: "k", Token: "tok", ExpiresAt: time.Now().Add(time.Minute)}
		relErr := errors.New("redis down")

		locker.EXPECT().Acquire(gomock.Any(), "k", gomock.Any(), gomock.Any()).Return(lease, nil)
		locker.EXPECT().Release(gomock.Any(), lease).Return(relErr)

		var observed error
		opts := lock.DefaultOptions()
		opts.OnReleaseError = func(key string, err error) { observed = err }

		err := lock.WithLock(context.Background(), locker, "k", opts, func(context.Context, *lock.Lease) error {
			return nil
		})

		require.NoError(t, err)
		assert.ErrorIs(t, observed, relErr)
	})
}
