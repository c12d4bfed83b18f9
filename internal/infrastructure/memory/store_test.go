package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/match-hub/match-hub/internal/domain/match"
)

func seedPost(t *testing.T, s *Store) *match.Post {
	t.Helper()
	post := match.NewPost(uuid.New(), "t", "c", time.Now().Add(time.Hour), "a", nil, 0, 0)
	require.NoError(t, s.CreatePost(context.Background(), post))
	return post
}

func seedApplication(t *testing.T, s *Store, postID uuid.UUID) *match.Application {
	t.Helper()
	app := match.NewApplication(postID, uuid.New(), "")
	require.NoError(t, s.CreateApplication(context.Background(), app))
	return app
}

func TestStore_PostRoundTrip(t *testing.T) {
	s := NewStore()
	post := seedPost(t, s)

	got, err := s.GetPost(context.Background(), post.PostID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, post.PostID, got.PostID)

	got.Title = "mutated"
	again, _ := s.GetPost(context.Background(), post.PostID)
	assert.Equal(t, "t", again.Title)

	missing, err := s.GetPost(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_UpdatePostVersion(t *testing.T) {
	s := NewStore()
	post := seedPost(t, s)
	ctx := context.Background()

	stale, _ := s.GetPost(ctx, post.PostID)

	require.NoError(t, post.Close(uuid.New(), time.Now()))
	require.NoError(t, s.UpdatePost(ctx, post, 1))
	assert.Equal(t, int64(2), post.Version)

	require.NoError(t, stale.SoftDelete(time.Now()))
	err := s.UpdatePost(ctx, stale, stale.Version)
	assert.ErrorIs(t, err, match.ErrStaleWrite)

	stored, _ := s.GetPost(ctx, post.PostID)
	assert.Equal(t, match.PostStatusClosed, stored.Status)
	assert.False(t, stored.IsDeleted)
}

func TestStore_CreateApplicationUnique(t *testing.T) {
	s := NewStore()
	post := seedPost(t, s)
	app := seedApplication(t, s, post.PostID)

	dup := match.NewApplication(post.PostID, app.ApplicantTeamID, "again")
	err := s.CreateApplication(context.Background(), dup)

	assert.ErrorIs(t, err, match.ErrDuplicateApplication)
}

func TestStore_TransitionApplication(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	post := seedPost(t, s)
	a1 := seedApplication(t, s, post.PostID)
	a2 := seedApplication(t, s, post.PostID)

	require.NoError(t, s.TransitionApplication(ctx, a1.ApplicationID, match.ApplicationStatusPending, match.ApplicationStatusAccepted, time.Now()))

	err := s.TransitionApplication(ctx, a1.ApplicationID, match.ApplicationStatusPending, match.ApplicationStatusRejected, time.Now())
	assert.ErrorIs(t, err, match.ErrStaleWrite)

	err = s.TransitionApplication(ctx, a2.ApplicationID, match.ApplicationStatusPending, match.ApplicationStatusAccepted, time.Now())
	assert.ErrorIs(t, err, match.ErrStaleWrite, "second accepted application on the same post")
}

func TestStore_RejectPendingApplications(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	post := seedPost(t, s)
	keep := seedApplication(t, s, post.PostID)
	other := seedApplication(t, s, post.PostID)
	cancelled := seedApplication(t, s, post.PostID)
	require.NoError(t, s.TransitionApplication(ctx, cancelled.ApplicationID, match.ApplicationStatusPending, match.ApplicationStatusCancelled, time.Now()))

	rejected, err := s.RejectPendingApplications(ctx, post.PostID, keep.ApplicationID, time.Now())

	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, other.ApplicationID, rejected[0].ApplicationID)
	assert.Equal(t, match.ApplicationStatusRejected, rejected[0].Status)

	stillCancelled, _ := s.GetApplication(ctx, cancelled.ApplicationID)
	assert.Equal(t, match.ApplicationStatusCancelled, stillCancelled.Status)
	stillPending, _ := s.GetApplication(ctx, keep.ApplicationID)
	assert.Equal(t, match.ApplicationStatusPending, stillPending.Status)

	again, err := s.RejectPendingApplications(ctx, post.PostID, keep.ApplicationID, time.Now())
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestStore_WithinTx(t *testing.T) {
	t.Run("rollback on error", func(t *testing.T) {
		s := NewStore()
		post := seedPost(t, s)
		app := seedApplication(t, s, post.PostID)
		boom := errors.New("boom")

		err := s.WithinTx(context.Background(), func(ctx context.Context) error {
			require.NoError(t, s.TransitionApplication(ctx, app.ApplicationID, match.ApplicationStatusPending, match.ApplicationStatusAccepted, time.Now()))
			require.NoError(t, post.Close(app.ApplicationID, time.Now()))
			require.NoError(t, s.UpdatePost(ctx, post, 1))
			require.NoError(t, s.CreateApplication(ctx, match.NewApplication(post.PostID, uuid.New(), "")))
			return boom
		})

		assert.ErrorIs(t, err, boom)
		stored, _ := s.GetPost(context.Background(), post.PostID)
		assert.Equal(t, match.PostStatusOpen, stored.Status)
		assert.Equal(t, int64(1), stored.Version)
		storedApp, _ := s.GetApplication(context.Background(), app.ApplicationID)
		assert.Equal(t, match.ApplicationStatusPending, storedApp.Status)
		apps, _ := s.ListApplications(context.Background(), post.PostID)
		assert.Len(t, apps, 1)
	})

	t.Run("rollback when context ends before commit", func(t *testing.T) {
		s := NewStore()
		post := seedPost(t, s)
		ctx, cancel := context.WithCancel(context.Background())

		err := s.WithinTx(ctx, func(ctx context.Context) error {
			require.NoError(t, post.SoftDelete(time.Now()))
			require.NoError(t, s.UpdatePost(ctx, post, 1))
			cancel()
			return nil
		})

		assert.ErrorIs(t, err, context.Canceled)
		stored, _ := s.GetPost(context.Background(), post.PostID)
		assert.False(t, stored.IsDeleted)
	})

	t.Run("transactions are serialized", func(t *testing.T) {
		s := NewStore()
		post := seedPost(t, s)
		entered := make(chan struct{})
		release := make(chan struct{})
		done := make(chan error, 1)

		go func() {
			done <- s.WithinTx(context.Background(), func(ctx context.Context) error {
				close(entered)
				<-release
				return s.CreateApplication(ctx, match.NewApplication(post.PostID, uuid.New(), ""))
			})
		}()
		<-entered

		deleted := make(chan error, 1)
		go func() {
			deleted <- s.WithinTx(context.Background(), func(ctx context.Context) error {
				has, err := s.HasApplicationWithStatus(ctx, post.PostID, match.ApplicationStatusPending)
				if err != nil {
					return err
				}
				if has {
					return errors.New("pending applications")
				}
				stored, _ := s.GetPost(ctx, post.PostID)
				_ = stored.SoftDelete(time.Now())
				return s.UpdatePost(ctx, stored, stored.Version)
			})
		}()

		select {
		case <-deleted:
			t.Fatal("second transaction ran while the first was open")
		case <-time.After(30 * time.Millisecond):
		}

		close(release)
		require.NoError(t, <-done)
		assert.EqualError(t, <-deleted, "pending applications")
		stored, _ := s.GetPost(context.Background(), post.PostID)
		assert.False(t, stored.IsDeleted)
	})

	t.Run("nested joins outer", func(t *testing.T) {
		s := NewStore()
		post := seedPost(t, s)

		err := s.WithinTx(context.Background(), func(ctx context.Context) error {
			return s.WithinTx(ctx, func(ctx context.Context) error {
				return s.CreateApplication(ctx, match.NewApplication(post.PostID, uuid.New(), ""))
			})
		})

		require.NoError(t, err)
		has, _ := s.HasApplicationWithStatus(context.Background(), post.PostID, match.ApplicationStatusPending)
		assert.True(t, has)
	})
}

func TestStore_ListPosts(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Now()
	teamID := uuid.New()

	later := match.NewPost(teamID, "later", "c", now.Add(48*time.Hour), "a", nil, 0, 0)
	sooner := match.NewPost(teamID, "sooner", "c", now.Add(24*time.Hour), "a", nil, 0, 0)
	past := match.NewPost(teamID, "past", "c", now.Add(-time.Hour), "a", nil, 0, 0)
	other := match.NewPost(uuid.New(), "other", "c", now.Add(time.Hour), "a", nil, 0, 0)
	deleted := match.NewPost(teamID, "deleted", "c", now.Add(time.Hour), "a", nil, 0, 0)
	_ = deleted.SoftDelete(now)
	for _, p := range []*match.Post{later, sooner, past, other, deleted} {
		require.NoError(t, s.CreatePost(ctx, p))
	}

	open := match.PostStatusOpen
	posts, err := s.ListPosts(ctx, match.PostFilter{TeamID: &teamID, Status: &open, MatchAfter: &now}, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "sooner", posts[0].Title)
	assert.Equal(t, "later", posts[1].Title)

	paged, err := s.ListPosts(ctx, match.PostFilter{TeamID: &teamID, Status: &open, MatchAfter: &now}, 1, 1)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "later", paged[0].Title)

	empty, err := s.ListPosts(ctx, match.PostFilter{}, 10, 50)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
